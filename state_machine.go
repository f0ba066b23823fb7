package account

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// TransitionMetadata captures extra context for a transition.
type TransitionMetadata struct {
	Reason   string
	Metadata map[string]any
}

// TransitionContext is passed into hooks for additional processing.
type TransitionContext struct {
	Actor    ActorRef
	Customer *Customer
	From     ActivationState
	To       ActivationState
	Meta     TransitionMetadata
}

// TransitionHook is executed before or after a transition.
type TransitionHook func(ctx context.Context, tc TransitionContext) error

// TransitionHookPhase identifies whether a hook ran before or after persistence.
type TransitionHookPhase string

const (
	HookPhaseBefore TransitionHookPhase = "before_transition"
	HookPhaseAfter  TransitionHookPhase = "after_transition"
)

// TransitionOption customizes a single transition.
type TransitionOption func(*transitionOptions)

// ActivationStateMachine guards the activation lifecycle of customers.
type ActivationStateMachine interface {
	Transition(ctx context.Context, actor ActorRef, customer *Customer, target ActivationState, opts ...TransitionOption) (*Customer, error)
	CurrentState(customer *Customer) ActivationState
	CanTransition(from, to ActivationState) bool
}

// HookErrorHandler handles errors surfaced by transition hooks.
type HookErrorHandler func(ctx context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*activationStateMachine)

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *activationStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateMachineActivitySink sets the ActivitySink used to publish lifecycle events.
func WithStateMachineActivitySink(sink ActivitySink) StateMachineOption {
	return func(sm *activationStateMachine) {
		sm.activitySink = normalizeActivitySink(sink)
	}
}

// WithStateMachineHookErrorHandler overrides how hook failures are propagated.
func WithStateMachineHookErrorHandler(handler HookErrorHandler) StateMachineOption {
	return func(sm *activationStateMachine) {
		if handler != nil {
			sm.hookErrorHandler = handler
		}
	}
}

// WithStateMachineLogger overrides the logger used for sink failures.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *activationStateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithTransitionTx runs the state update on the given transaction.
func WithTransitionTx(tx bun.IDB) TransitionOption {
	return func(opts *transitionOptions) {
		opts.tx = tx
	}
}

// WithTransitionReason sets the human-readable reason for the transition.
func WithTransitionReason(reason string) TransitionOption {
	return func(opts *transitionOptions) {
		opts.metadata.Reason = reason
	}
}

// WithTransitionMetadata merges metadata into the transition context.
func WithTransitionMetadata(metadata map[string]any) TransitionOption {
	return func(opts *transitionOptions) {
		if len(metadata) == 0 {
			return
		}
		if opts.metadata.Metadata == nil {
			opts.metadata.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			opts.metadata.Metadata[k] = v
		}
	}
}

// WithBeforeTransitionHook adds a hook executed before the state update.
func WithBeforeTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.beforeHooks = append(opts.beforeHooks, h)
		}
	}
}

// WithAfterTransitionHook adds a hook executed after the state update succeeds.
func WithAfterTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.afterHooks = append(opts.afterHooks, h)
		}
	}
}

// NewActivationStateMachine returns the default implementation backed by
// the customer directory.
func NewActivationStateMachine(customers Customers, opts ...StateMachineOption) ActivationStateMachine {
	sm := &activationStateMachine{
		customers: customers,
		transitions: map[ActivationState]map[ActivationState]struct{}{
			StatePendingConfirmation: {
				StateActive: {},
			},
		},
		now:          time.Now,
		activitySink: noopActivitySink{},
		logger:       defLogger{},
		hookErrorHandler: func(_ context.Context, _ TransitionHookPhase, err error, _ TransitionContext) error {
			return err
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

type activationStateMachine struct {
	customers        Customers
	transitions      map[ActivationState]map[ActivationState]struct{}
	now              func() time.Time
	activitySink     ActivitySink
	logger           Logger
	hookErrorHandler HookErrorHandler
}

type transitionOptions struct {
	tx          bun.IDB
	metadata    TransitionMetadata
	beforeHooks []TransitionHook
	afterHooks  []TransitionHook
}

func (sm *activationStateMachine) Transition(ctx context.Context, actor ActorRef, customer *Customer, target ActivationState, opts ...TransitionOption) (*Customer, error) {
	if customer == nil {
		return nil, NewInvalidTransitionError("customer is required for a state transition", "", target)
	}

	from := sm.CurrentState(customer)
	if !sm.CanTransition(from, target) {
		return nil, sm.transitionError(from, target)
	}

	options := &transitionOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	tc := TransitionContext{
		Actor:    actor,
		Customer: customer,
		From:     from,
		To:       target,
		Meta:     options.metadata,
	}

	if err := sm.runHooks(ctx, options.beforeHooks, tc, HookPhaseBefore); err != nil {
		return nil, err
	}

	var (
		ok  bool
		err error
	)
	if options.tx != nil {
		ok, err = sm.customers.UpdateActivationStateTx(ctx, options.tx, customer.ID, from, target)
	} else {
		ok, err = sm.customers.UpdateActivationState(ctx, customer.ID, from, target)
	}
	if err != nil {
		return nil, err
	}

	// another request moved the customer first
	if !ok {
		return nil, sm.transitionError(target, target)
	}

	customer.State = target
	if target == StateActive {
		customer.ConfirmationKey = ""
	}

	if err := sm.runHooks(ctx, options.afterHooks, tc, HookPhaseAfter); err != nil {
		return nil, err
	}

	sm.recordActivity(ctx, ActivityEvent{
		EventType:  ActivityEventCustomerStateChanged,
		Actor:      actor,
		CustomerID: customer.ID.String(),
		WebsiteID:  customer.WebsiteID,
		FromState:  from,
		ToState:    target,
		Metadata:   transitionMetadata(options.metadata),
	})

	return customer, nil
}

func (sm *activationStateMachine) CurrentState(customer *Customer) ActivationState {
	if customer == nil {
		return ""
	}
	customer.EnsureState()
	return customer.State
}

func (sm *activationStateMachine) CanTransition(from, to ActivationState) bool {
	if allowed, ok := sm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

func (sm *activationStateMachine) transitionError(from, to ActivationState) error {
	if from == StateActive && to == StateActive {
		return NewInvalidTransitionError(MessageAlreadyActive, from, to)
	}
	return NewInvalidTransitionError("invalid activation state transition", from, to)
}

func (sm *activationStateMachine) runHooks(ctx context.Context, hooks []TransitionHook, data TransitionContext, phase TransitionHookPhase) error {
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, data); err != nil {
			if sm.hookErrorHandler == nil {
				return err
			}
			return sm.hookErrorHandler(ctx, phase, err, data)
		}
	}
	return nil
}

func (sm *activationStateMachine) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "system"}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = sm.now()
	}

	sink := normalizeActivitySink(sm.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		sm.logger.Warn("state machine activity sink error: %v", err)
	}
}

func transitionMetadata(meta TransitionMetadata) map[string]any {
	if meta.Reason == "" && len(meta.Metadata) == 0 {
		return nil
	}

	out := make(map[string]any, len(meta.Metadata)+1)
	for k, v := range meta.Metadata {
		out[k] = v
	}
	if meta.Reason != "" {
		out["reason"] = meta.Reason
	}
	return out
}
