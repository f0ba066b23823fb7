package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// ActivationState is the customer's confirmation state
type ActivationState = string

const (
	// StateActive is a confirmed account
	StateActive ActivationState = "active"
	// StatePendingConfirmation is an account waiting for its confirmation key
	StatePendingConfirmation ActivationState = "pending_confirmation"
)

// ShareScope controls how email uniqueness is partitioned
type ShareScope = string

const (
	// ShareScopeWebsite partitions customers per website
	ShareScopeWebsite ShareScope = "website"
	// ShareScopeGlobal shares customers across all websites
	ShareScopeGlobal ShareScope = "global"
)

// AnyWebsite disables website filtering on email lookups
const AnyWebsite int64 = -1

// Customer is the customer model
type Customer struct {
	bun.BaseModel       `bun:"table:customers,alias:cst"`
	ID                  uuid.UUID       `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	WebsiteID           int64           `bun:"website_id,notnull" json:"website_id"`
	Email               string          `bun:"email,notnull" json:"email,omitempty"`
	FirstName           string          `bun:"first_name" json:"first_name,omitempty"`
	LastName            string          `bun:"last_name" json:"last_name,omitempty"`
	PasswordHash        string          `bun:"password_hash" json:"-"`
	State               ActivationState `bun:"activation_state,notnull" json:"activation_state,omitempty"`
	ConfirmationKey     string          `bun:"confirmation,nullzero" json:"-"`
	ResetToken          string          `bun:"rp_token,nullzero" json:"-"`
	ResetTokenCreatedAt *time.Time      `bun:"rp_token_created_at,nullzero" json:"rp_token_created_at,omitempty"`
	LoginAttempts       int             `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt      *time.Time      `bun:"login_attempt_at,nullzero" json:"login_attempt_at,omitempty"`
	LoggedInAt          *time.Time      `bun:"loggedin_at,nullzero" json:"loggedin_at,omitempty"`
	CreatedAt           *time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt           *time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsureState fills in the activation state from the confirmation key
// for records persisted without one.
func (c *Customer) EnsureState() {
	if c == nil || c.State != "" {
		return
	}
	if c.ConfirmationKey != "" {
		c.State = StatePendingConfirmation
		return
	}
	c.State = StateActive
}

// IsActive reports whether the account is confirmed
func (c *Customer) IsActive() bool {
	c.EnsureState()
	return c.State == StateActive
}

// HasResetToken reports whether a reset token is pending
func (c *Customer) HasResetToken() bool {
	return c != nil && c.ResetToken != "" && c.ResetTokenCreatedAt != nil
}

// SetResetToken stores the token together with its issue time
func (c *Customer) SetResetToken(token string, issuedAt time.Time) *Customer {
	c.ResetToken = token
	c.ResetTokenCreatedAt = &issuedAt
	return c
}

// ClearResetToken drops both halves of the reset token pair
func (c *Customer) ClearResetToken() *Customer {
	c.ResetToken = ""
	c.ResetTokenCreatedAt = nil
	return c
}

// Name returns the display name
func (c *Customer) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Address is a customer address
type Address struct {
	bun.BaseModel     `bun:"table:customer_addresses,alias:cad"`
	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	CustomerID        uuid.UUID  `bun:"customer_id,notnull,type:uuid" json:"customer_id,omitempty"`
	FirstName         string     `bun:"first_name" json:"firstname,omitempty"`
	LastName          string     `bun:"last_name" json:"lastname,omitempty"`
	Company           string     `bun:"company" json:"company,omitempty"`
	Street            []string   `bun:"street" json:"street,omitempty"`
	City              string     `bun:"city" json:"city,omitempty"`
	Region            string     `bun:"region" json:"region,omitempty"`
	RegionCode        string     `bun:"region_code" json:"region_code,omitempty"`
	RegionID          int64      `bun:"region_id" json:"region_id,omitempty"`
	Postcode          string     `bun:"postcode" json:"postcode,omitempty"`
	CountryID         string     `bun:"country_id" json:"country_id,omitempty"`
	Telephone         string     `bun:"telephone" json:"telephone,omitempty"`
	IsDefaultBilling  bool       `bun:"is_default_billing" json:"default_billing,omitempty"`
	IsDefaultShipping bool       `bun:"is_default_shipping" json:"default_shipping,omitempty"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// E164Telephone formats the telephone using the address country,
// falling back to the raw value when it cannot be parsed.
func (a *Address) E164Telephone() string {
	if a == nil || a.Telephone == "" {
		return ""
	}

	num, err := phonenumbers.Parse(a.Telephone, strings.ToUpper(a.CountryID))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return a.Telephone
	}

	return phonenumbers.Format(num, phonenumbers.E164)
}

// StreetLine joins the street lines into a single line
func (a *Address) StreetLine() string {
	if a == nil {
		return ""
	}
	return strings.Join(a.Street, ", ")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
