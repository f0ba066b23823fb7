package account_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	account "github.com/goliatone/go-customer-account"
	"github.com/goliatone/go-customer-account/repository"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Password123!"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []account.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n account.Notification) error {
	r.mu.Lock()
	r.sent = append(r.sent, n)
	r.mu.Unlock()
	return nil
}

func (r *recordingNotifier) Last() (account.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return account.Notification{}, false
	}
	return r.sent[len(r.sent)-1], true
}

func (r *recordingNotifier) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Kind)
	}
	return out
}

type recordingSink struct {
	mu     sync.Mutex
	events []account.ActivityEvent
}

func (r *recordingSink) Record(_ context.Context, e account.ActivityEvent) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *recordingSink) Types() []account.ActivityEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]account.ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

func sequenceTokens(prefix string) account.TokenGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func testOptions() account.Options {
	opts := account.DefaultOptions()
	opts.PasswordHashCost = bcrypt.MinCost
	return opts
}

type fixture struct {
	ctx      context.Context
	repo     account.RepositoryManager
	manager  *account.AccountManager
	clock    *testClock
	notifier *recordingNotifier
	sink     *recordingSink
	sessions *account.MemorySessionStore
}

func setupRepo(t *testing.T) account.RepositoryManager {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, repo, err := repository.Bootstrap(context.Background(), repository.DriverSQLite, dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return repo
}

func newFixture(t *testing.T, cfg account.Options, opts ...account.ManagerOption) *fixture {
	t.Helper()

	f := &fixture{
		ctx:      context.Background(),
		repo:     setupRepo(t),
		clock:    newTestClock(),
		notifier: &recordingNotifier{},
		sink:     &recordingSink{},
		sessions: account.NewMemorySessionStore(),
	}

	base := []account.ManagerOption{
		account.WithClock(f.clock.Now),
		account.WithNotifier(f.notifier),
		account.WithActivitySink(f.sink),
		account.WithSessionStore(f.sessions),
		account.WithLogger(account.NoopLogger()),
		account.WithPasswordAuthenticator(account.BcryptHasher{Cost: bcrypt.MinCost}),
	}

	f.manager = account.NewAccountManager(f.repo, cfg, append(base, opts...)...)
	return f
}

func (f *fixture) createCustomer(t *testing.T, email string, websiteID int64) *account.Customer {
	t.Helper()

	c, err := f.manager.CreateAccount(f.ctx, &account.Customer{
		Email:     email,
		FirstName: "John",
		LastName:  "Smith",
		WebsiteID: websiteID,
	}, testPassword)
	require.NoError(t, err)
	return c
}

func richError(t *testing.T, err error) *goerrors.Error {
	t.Helper()
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr), "expected a rich error, got %T: %v", err, err)
	return richErr
}
