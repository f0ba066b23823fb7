// Package activitymap flattens account activity events into a record
// shape that audit logs and feeds can store without knowing the account
// types.
package activitymap

import (
	"context"
	"strings"
	"time"

	account "github.com/goliatone/go-customer-account"
)

const (
	MetadataKeyActorType = "actor_type"
	MetadataKeyWebsiteID = "website_id"
	MetadataKeyFromState = "from_state"
	MetadataKeyToState   = "to_state"
)

// Record is the flattened event
type Record struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Option func(*mapper)

type mapper struct {
	channel    string
	objectType string
	fallback   string
	now        func() time.Time
}

// WithChannel overrides the "account" channel
func WithChannel(channel string) Option {
	return func(m *mapper) {
		m.channel = strings.TrimSpace(channel)
	}
}

// WithObjectType overrides the "customer" object type
func WithObjectType(objectType string) Option {
	return func(m *mapper) {
		m.objectType = strings.TrimSpace(objectType)
	}
}

// WithActorFallback sets the actor id used for events with no actor
// and no customer
func WithActorFallback(actorID string) Option {
	return func(m *mapper) {
		m.fallback = strings.TrimSpace(actorID)
	}
}

// WithClock stamps events that carry no occurrence time
func WithClock(now func() time.Time) Option {
	return func(m *mapper) {
		if now != nil {
			m.now = now
		}
	}
}

// Map flattens a single event
func Map(event account.ActivityEvent, opts ...Option) Record {
	m := &mapper{
		channel:    "account",
		objectType: "customer",
		fallback:   "system",
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = m.now().UTC()
	}

	return Record{
		ActorID:    firstNonEmpty(event.Actor.ID, event.CustomerID, m.fallback),
		Verb:       string(event.EventType),
		ObjectType: m.objectType,
		ObjectID:   strings.TrimSpace(event.CustomerID),
		Channel:    m.channel,
		Metadata:   metadata(event),
		OccurredAt: occurredAt,
	}
}

// Sink maps every event before handing it to fn. It can be combined
// with other sinks through account.MultiActivitySink.
func Sink(fn func(ctx context.Context, record Record) error, opts ...Option) account.ActivitySink {
	return account.ActivitySinkFunc(func(ctx context.Context, event account.ActivityEvent) error {
		if fn == nil {
			return nil
		}
		return fn(ctx, Map(event, opts...))
	})
}

func metadata(event account.ActivityEvent) map[string]any {
	out := make(map[string]any, len(event.Metadata)+4)
	for k, v := range event.Metadata {
		out[k] = v
	}

	if actorType := strings.TrimSpace(event.Actor.Type); actorType != "" {
		if _, ok := out[MetadataKeyActorType]; !ok {
			out[MetadataKeyActorType] = actorType
		}
	}
	if event.WebsiteID != 0 {
		out[MetadataKeyWebsiteID] = event.WebsiteID
	}
	if event.FromState != "" {
		out[MetadataKeyFromState] = event.FromState
	}
	if event.ToState != "" {
		out[MetadataKeyToState] = event.ToState
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
