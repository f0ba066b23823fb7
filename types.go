package account

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Logger is the logging interface used across the package
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds account management options
type Config interface {
	GetResetTokenExpiration() string
	GetDefaultWebsiteID() int64
	GetAccountShareScope() ShareScope
	GetConfirmationRequired() bool
	GetMaxLoginAttempts() int
	GetLoginCoolDownPeriod() string
	GetMinPasswordLength() int
	GetRequiredCharacterClasses() int
	GetPasswordHashCost() int
}

// PasswordAuthenticator hashes and verifies passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// SessionStore owns session identity. The manager commands it to rotate
// and drop sessions when credentials change.
type SessionStore interface {
	Create(ctx context.Context, customerID uuid.UUID) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Regenerate(ctx context.Context, id string) (*Session, error)
	Destroy(ctx context.Context, id string) error
	InvalidateCustomer(ctx context.Context, customerID uuid.UUID, keep ...string) error
}

// NotificationKind identifies the message a notifier should send
type NotificationKind = string

const (
	NotifyConfirmation NotificationKind = "confirmation"
	NotifyWelcome      NotificationKind = "welcome"
	NotifyResetLink    NotificationKind = "reset_link"
)

// Notification is handed to a Notifier
type Notification struct {
	Kind       NotificationKind `json:"kind"`
	CustomerID string           `json:"customer_id"`
	Email      string           `json:"email"`
	Name       string           `json:"name,omitempty"`
	WebsiteID  int64            `json:"website_id"`
	Template   string           `json:"template,omitempty"`
	Token      string           `json:"token,omitempty"`
	SentAt     time.Time        `json:"sent_at"`
}

// Notifier delivers customer notifications
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(ctx context.Context, n Notification) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	if f == nil {
		return nil
	}
	return f(ctx, n)
}

type defLogger struct{}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNT "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNT "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNT "+newline(format), args...)
}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNT "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger discards everything
func NoopLogger() Logger {
	return noopLogger{}
}
