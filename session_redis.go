package account

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps sessions in redis. Each customer has a set
// indexing its live session ids so all of them can be dropped at once.
type RedisSessionStore struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

var _ SessionStore = (*RedisSessionStore)(nil)

// RedisSessionOption customizes the redis store
type RedisSessionOption func(*RedisSessionStore)

// WithRedisKeyPrefix sets the key namespace, "account:session" by default
func WithRedisKeyPrefix(prefix string) RedisSessionOption {
	return func(r *RedisSessionStore) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithRedisSessionTTL expires idle sessions, zero keeps them forever
func WithRedisSessionTTL(ttl time.Duration) RedisSessionOption {
	return func(r *RedisSessionStore) {
		r.ttl = ttl
	}
}

// NewRedisSessionStore wraps a connected client
func NewRedisSessionStore(rc *redis.Client, opts ...RedisSessionOption) *RedisSessionStore {
	r := &RedisSessionStore{
		rc:     rc,
		prefix: "account:session",
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// NewRedisClient parses the url and pings the server
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, err
	}
	return rc, nil
}

func (r *RedisSessionStore) sessionKey(id string) string {
	return r.prefix + ":" + id
}

func (r *RedisSessionStore) customerKey(customerID uuid.UUID) string {
	return r.prefix + ":customer:" + customerID.String()
}

func (r *RedisSessionStore) Create(ctx context.Context, customerID uuid.UUID) (*Session, error) {
	s := &Session{
		ID:         newSessionID(),
		CustomerID: customerID,
		Data:       map[string]any{},
		CreatedAt:  r.now(),
	}
	if err := r.write(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	bs, err := r.rc.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, newSessionNotFound(id)
		}
		return nil, err
	}

	s := &Session{}
	if err := json.Unmarshal(bs, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	n, err := r.rc.Exists(ctx, r.sessionKey(session.ID)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return newSessionNotFound(session.ID)
	}
	return r.write(ctx, session)
}

func (r *RedisSessionStore) Regenerate(ctx context.Context, id string) (*Session, error) {
	old, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.Destroy(ctx, id); err != nil {
		return nil, err
	}

	return r.Create(ctx, old.CustomerID)
}

// Destroy removes the session. An expired session can no longer be
// traced back to its customer, its index entry is dropped by the next
// InvalidateCustomer for that customer.
func (r *RedisSessionStore) Destroy(ctx context.Context, id string) error {
	s, err := r.Get(ctx, id)
	if err != nil {
		if IsNoSuchEntity(err) {
			return nil
		}
		return err
	}

	_, err = r.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.sessionKey(id))
		pipe.SRem(ctx, r.customerKey(s.CustomerID), id)
		return nil
	})
	return err
}

// InvalidateCustomer drops every session of the customer except keep.
// Index entries pointing at expired sessions are removed as well.
func (r *RedisSessionStore) InvalidateCustomer(ctx context.Context, customerID uuid.UUID, keep ...string) error {
	index := r.customerKey(customerID)
	ids, err := r.rc.SMembers(ctx, index).Result()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	var stale []string
	for _, id := range ids {
		if !contains(keep, id) {
			continue
		}
		n, err := r.rc.Exists(ctx, r.sessionKey(id)).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			stale = append(stale, id)
		}
	}

	_, err = r.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			if contains(keep, id) && !contains(stale, id) {
				continue
			}
			pipe.Del(ctx, r.sessionKey(id))
			pipe.SRem(ctx, index, id)
		}
		return nil
	})
	return err
}

func (r *RedisSessionStore) write(ctx context.Context, s *Session) error {
	bs, err := json.Marshal(s)
	if err != nil {
		return err
	}

	_, err = r.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.sessionKey(s.ID), bs, r.ttl)
		pipe.SAdd(ctx, r.customerKey(s.CustomerID), s.ID)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.customerKey(s.CustomerID), r.ttl)
		}
		return nil
	})
	return err
}
