package account

import (
	"fmt"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
)

// PasswordPolicy describes the strength rules for new passwords
type PasswordPolicy struct {
	MinLength                int
	RequiredCharacterClasses int
}

// PasswordPolicyFromConfig reads the policy from the configuration
func PasswordPolicyFromConfig(cfg Config) PasswordPolicy {
	return PasswordPolicy{
		MinLength:                cfg.GetMinPasswordLength(),
		RequiredCharacterClasses: cfg.GetRequiredCharacterClasses(),
	}
}

// Validate returns a WEAK_PASSWORD error describing the first rule the
// password breaks
func (p PasswordPolicy) Validate(password string) error {
	rules := []validation.Rule{
		validation.Required.Error(`"password" is required. Enter and try again.`),
	}

	if p.MinLength > 0 {
		rules = append(rules, validation.Length(p.MinLength, 0).Error(
			fmt.Sprintf("The password needs at least %d characters. Create a new password and try again.", p.MinLength),
		))
	}

	if p.RequiredCharacterClasses > 0 {
		rules = append(rules, validation.By(p.checkClasses))
	}

	if err := validation.Validate(password, rules...); err != nil {
		return NewWeakPasswordError(err.Error())
	}

	return nil
}

func (p PasswordPolicy) checkClasses(value any) error {
	s, _ := value.(string)
	if CharacterClasses(s) >= p.RequiredCharacterClasses {
		return nil
	}
	return fmt.Errorf(
		"Minimum of different classes of characters in password is %d. Classes of characters: Lower Case, Upper Case, Digits, Special Characters.",
		p.RequiredCharacterClasses,
	)
}

// CharacterClasses counts lower case, upper case, digit and special
// character classes present in s
func CharacterClasses(s string) int {
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	n := 0
	for _, ok := range []bool{lower, upper, digit, special} {
		if ok {
			n++
		}
	}
	return n
}
