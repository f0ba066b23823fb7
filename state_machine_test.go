package account_test

import (
	"context"
	"errors"
	"testing"
	"time"

	account "github.com/goliatone/go-customer-account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerPending(t *testing.T, repo account.RepositoryManager, email string) *account.Customer {
	t.Helper()
	c, err := repo.Customers().Register(context.Background(), &account.Customer{
		Email:           email,
		WebsiteID:       1,
		PasswordHash:    "hash",
		State:           account.StatePendingConfirmation,
		ConfirmationKey: "key",
	})
	require.NoError(t, err)
	return c
}

func TestActivationStateMachineTransition(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	sink := &recordingSink{}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	sm := account.NewActivationStateMachine(repo.Customers(),
		account.WithStateMachineActivitySink(sink),
		account.WithStateMachineClock(func() time.Time { return now }),
		account.WithStateMachineLogger(account.NoopLogger()),
	)

	customer := registerPending(t, repo, "sm@example.com")

	var before, after bool
	got, err := sm.Transition(ctx, account.ActorRef{ID: "admin", Type: "user"}, customer, account.StateActive,
		account.WithTransitionReason("manual"),
		account.WithTransitionMetadata(map[string]any{"ticket": "T-1"}),
		account.WithBeforeTransitionHook(func(ctx context.Context, tc account.TransitionContext) error {
			before = true
			assert.Equal(t, account.StatePendingConfirmation, tc.From)
			return nil
		}),
		account.WithAfterTransitionHook(func(ctx context.Context, tc account.TransitionContext) error {
			after = true
			return nil
		}),
	)
	require.NoError(t, err)
	assert.True(t, before)
	assert.True(t, after)
	assert.Equal(t, account.StateActive, got.State)
	assert.Empty(t, got.ConfirmationKey)

	stored, err := repo.Customers().FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StateActive, stored.State)
	assert.Empty(t, stored.ConfirmationKey)

	require.Len(t, sink.events, 1)
	event := sink.events[0]
	assert.Equal(t, account.ActivityEventCustomerStateChanged, event.EventType)
	assert.Equal(t, account.StatePendingConfirmation, event.FromState)
	assert.Equal(t, account.StateActive, event.ToState)
	assert.Equal(t, now, event.OccurredAt)
	assert.Equal(t, "manual", event.Metadata["reason"])
	assert.Equal(t, "T-1", event.Metadata["ticket"])

	_, err = sm.Transition(ctx, account.ActorRef{}, stored, account.StateActive)
	assert.True(t, account.IsInvalidTransition(err))

	_, err = sm.Transition(ctx, account.ActorRef{}, stored, account.StatePendingConfirmation)
	assert.True(t, account.IsInvalidTransition(err))

	_, err = sm.Transition(ctx, account.ActorRef{}, nil, account.StateActive)
	assert.True(t, account.IsInvalidTransition(err))
}

func TestActivationStateMachineStaleRecord(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	sm := account.NewActivationStateMachine(repo.Customers(), account.WithStateMachineLogger(account.NoopLogger()))

	customer := registerPending(t, repo, "stale@example.com")
	stale := *customer

	_, err := sm.Transition(ctx, account.ActorRef{}, customer, account.StateActive)
	require.NoError(t, err)

	_, err = sm.Transition(ctx, account.ActorRef{}, &stale, account.StateActive)
	assert.True(t, account.IsInvalidTransition(err), "the conditional update rejects a second activation")
}

func TestActivationStateMachineHookError(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	var handled bool
	sm := account.NewActivationStateMachine(repo.Customers(),
		account.WithStateMachineHookErrorHandler(func(ctx context.Context, phase account.TransitionHookPhase, err error, tc account.TransitionContext) error {
			handled = true
			assert.Equal(t, account.HookPhaseBefore, phase)
			return err
		}),
	)

	customer := registerPending(t, repo, "hook@example.com")
	hookErr := errors.New("blocked")

	_, err := sm.Transition(ctx, account.ActorRef{}, customer, account.StateActive,
		account.WithBeforeTransitionHook(func(context.Context, account.TransitionContext) error { return hookErr }),
	)
	assert.ErrorIs(t, err, hookErr)
	assert.True(t, handled)

	stored, err := repo.Customers().FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatePendingConfirmation, stored.State)
	assert.True(t, sm.CanTransition(account.StatePendingConfirmation, account.StateActive))
	assert.False(t, sm.CanTransition(account.StateActive, account.StatePendingConfirmation))
}
