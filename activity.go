package account

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventLoginSuccess         ActivityEventType = "customer.login.success"
	ActivityEventLoginFailure         ActivityEventType = "customer.login.failure"
	ActivityEventPasswordChanged      ActivityEventType = "customer.password.changed"
	ActivityEventPasswordResetRequest ActivityEventType = "customer.password.reset_requested"
	ActivityEventPasswordResetSuccess ActivityEventType = "customer.password.reset"
	ActivityEventAccountActivated     ActivityEventType = "customer.account.activated"
	ActivityEventConfirmationResent   ActivityEventType = "customer.confirmation.resent"
	ActivityEventAccountCreated       ActivityEventType = "customer.account.created"
	ActivityEventCustomerStateChanged ActivityEventType = "customer.state.changed"
)

// ActorRef identifies who/what triggered an action.
type ActorRef struct {
	ID   string
	Type string
}

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	Actor      ActorRef
	CustomerID string
	WebsiteID  int64
	FromState  ActivationState
	ToState    ActivationState
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// MultiActivitySink fans events out to every sink. The first error is
// returned after all sinks ran.
type MultiActivitySink []ActivitySink

// Record implements ActivitySink.
func (m MultiActivitySink) Record(ctx context.Context, event ActivityEvent) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

func customerActor(c *Customer) ActorRef {
	if c == nil {
		return ActorRef{Type: "system"}
	}
	return ActorRef{ID: c.ID.String(), Type: "customer"}
}
