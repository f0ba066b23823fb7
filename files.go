package account

import (
	"embed"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the versioned schema migrations, one directory
// per dialect: data/sql/migrations/{sqlite,postgres}
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
