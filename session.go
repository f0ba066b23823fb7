package account

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is a per-client identity bag. Rotation replaces the id and
// drops the data stored under the previous one.
type Session struct {
	ID         string         `json:"id"`
	CustomerID uuid.UUID      `json:"customer_id"`
	Data       map[string]any `json:"data,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Set stores a value in the session data
func (s *Session) Set(key string, value any) {
	if s.Data == nil {
		s.Data = map[string]any{}
	}
	s.Data[key] = value
}

// Get reads a value from the session data
func (s *Session) Get(key string) (any, bool) {
	if s == nil || s.Data == nil {
		return nil, false
	}
	v, ok := s.Data[key]
	return v, ok
}

func newSessionID() string {
	return uuid.NewString()
}

func newSessionNotFound(id string) error {
	return NewNoSuchEntityError("sessionId", id)
}

type sessionCtxKey struct{}

// WithSession stores the session in the context
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, session)
}

// SessionFromContext returns the session stored with WithSession
func SessionFromContext(ctx context.Context) (*Session, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(sessionCtxKey{}).(*Session)
	return s, ok && s != nil
}

// MemorySessionStore keeps sessions in process memory
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore returns an empty in memory store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: map[string]*Session{},
		now:      time.Now,
	}
}

func (m *MemorySessionStore) Create(_ context.Context, customerID uuid.UUID) (*Session, error) {
	s := &Session{
		ID:         newSessionID(),
		CustomerID: customerID,
		Data:       map[string]any{},
		CreatedAt:  m.now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return cloneSession(s), nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, newSessionNotFound(id)
	}
	return cloneSession(s), nil
}

func (m *MemorySessionStore) Save(_ context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[session.ID]; !ok {
		return newSessionNotFound(session.ID)
	}
	m.sessions[session.ID] = cloneSession(session)
	return nil
}

func (m *MemorySessionStore) Regenerate(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.sessions[id]
	if !ok {
		return nil, newSessionNotFound(id)
	}
	delete(m.sessions, id)

	s := &Session{
		ID:         newSessionID(),
		CustomerID: old.CustomerID,
		Data:       map[string]any{},
		CreatedAt:  m.now(),
	}
	m.sessions[s.ID] = s

	return cloneSession(s), nil
}

func (m *MemorySessionStore) Destroy(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) InvalidateCustomer(_ context.Context, customerID uuid.UUID, keep ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		if s.CustomerID != customerID || contains(keep, id) {
			continue
		}
		delete(m.sessions, id)
	}
	return nil
}

// Len returns the number of live sessions
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func cloneSession(s *Session) *Session {
	out := *s
	out.Data = make(map[string]any, len(s.Data))
	for k, v := range s.Data {
		out.Data[k] = v
	}
	return &out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
