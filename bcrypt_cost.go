//go:build !race

package account

func passwordHashCost() int {
	return 12
}
