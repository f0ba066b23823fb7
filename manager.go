package account

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// TemplateEmailReset is the reset link sent on a customer request
	TemplateEmailReset = "email_reset"
	// TemplateEmailReminder is the reset link sent as a password reminder
	TemplateEmailReminder = "email_reminder"
)

// DefaultOperationTimeout bounds every manager operation
var DefaultOperationTimeout = time.Second * 10

// AccountManager handles customer credentials, activation and password
// reset tokens.
type AccountManager struct {
	repo     RepositoryManager
	cfg      Config
	hasher   PasswordAuthenticator
	sessions SessionStore
	notifier Notifier
	activity ActivitySink
	logger   Logger
	tokens   TokenGenerator
	now      func() time.Time
	timeout  time.Duration
	states   ActivationStateMachine
}

// ManagerOption customizes the account manager
type ManagerOption func(*AccountManager)

// WithLogger overrides the logger
func WithLogger(logger Logger) ManagerOption {
	return func(m *AccountManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithActivitySink sets the sink used to emit account events
func WithActivitySink(sink ActivitySink) ManagerOption {
	return func(m *AccountManager) {
		m.activity = normalizeActivitySink(sink)
	}
}

// WithClock injects a custom clock (useful for tests)
func WithClock(clock func() time.Time) ManagerOption {
	return func(m *AccountManager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithSessionStore sets the store commanded on credential changes
func WithSessionStore(store SessionStore) ManagerOption {
	return func(m *AccountManager) {
		if store != nil {
			m.sessions = store
		}
	}
}

// WithNotifier sets the notification sender
func WithNotifier(n Notifier) ManagerOption {
	return func(m *AccountManager) {
		m.notifier = normalizeNotifier(n)
	}
}

// WithTokenGenerator overrides how reset tokens and confirmation keys
// are generated
func WithTokenGenerator(gen TokenGenerator) ManagerOption {
	return func(m *AccountManager) {
		if gen != nil {
			m.tokens = gen
		}
	}
}

// WithPasswordAuthenticator overrides password hashing
func WithPasswordAuthenticator(pa PasswordAuthenticator) ManagerOption {
	return func(m *AccountManager) {
		if pa != nil {
			m.hasher = pa
		}
	}
}

// WithOperationTimeout overrides DefaultOperationTimeout
func WithOperationTimeout(d time.Duration) ManagerOption {
	return func(m *AccountManager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// NewAccountManager creates a manager with sane defaults
func NewAccountManager(repo RepositoryManager, cfg Config, opts ...ManagerOption) *AccountManager {
	if cfg == nil {
		cfg = DefaultOptions()
	}

	m := &AccountManager{
		repo:     repo,
		cfg:      cfg,
		hasher:   NewBcryptHasher(cfg.GetPasswordHashCost()),
		sessions: NewMemorySessionStore(),
		notifier: noopNotifier{},
		activity: noopActivitySink{},
		logger:   defLogger{},
		tokens:   DefaultTokenGenerator,
		now:      time.Now,
		timeout:  DefaultOperationTimeout,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	m.states = NewActivationStateMachine(
		repo.Customers(),
		WithStateMachineClock(m.now),
		WithStateMachineActivitySink(m.activity),
		WithStateMachineLogger(m.logger),
	)

	return m
}

// Sessions returns the session store commanded by the manager
func (m *AccountManager) Sessions() SessionStore {
	return m.sessions
}

// Authenticate returns the customer when email and password match.
// Every failure is reported as invalid credentials.
func (m *AccountManager) Authenticate(ctx context.Context, email, password string, websiteID ...int64) (*Customer, error) {
	website := m.websiteID(websiteID)

	var customer *Customer
	var authErr error

	err := m.run(ctx, "authenticate customer", func(ctx context.Context, tx bun.Tx) error {
		c, err := m.repo.Customers().FindByEmailTx(ctx, tx, email, m.lookupScope(website))
		if err != nil {
			if repository.IsRecordNotFound(err) {
				authErr = NewInvalidCredentialsError(MessageInvalidCredentials)
				return nil
			}
			return err
		}

		if err := m.checkLoginAttempts(c); err != nil {
			authErr = err
			return nil
		}

		if err := m.hasher.ComparePasswordAndHash(password, c.PasswordHash); err != nil {
			if m.cfg.GetMaxLoginAttempts() > 0 {
				if err := m.repo.Customers().TrackAttemptedLoginTx(ctx, tx, c, m.now()); err != nil {
					return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to track login attempt")
				}
			}
			customer = c
			authErr = NewInvalidCredentialsError(MessageInvalidCredentials)
			return nil
		}

		if m.cfg.GetConfirmationRequired() && m.states.CurrentState(c) != StateActive {
			customer = c
			authErr = NewEmailNotConfirmedError()
			return nil
		}

		if m.cfg.GetMaxLoginAttempts() > 0 {
			if err := m.repo.Customers().TrackSuccessfulLoginTx(ctx, tx, c, m.now()); err != nil {
				m.logger.Warn("failed to track successful login: %v", err)
			}
		}

		customer = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if authErr != nil {
		m.record(ctx, ActivityEventLoginFailure, customer, map[string]any{
			"email":  normalizeEmail(email),
			"reason": authErrorReason(authErr),
		})
		return nil, authErr
	}

	m.record(ctx, ActivityEventLoginSuccess, customer, nil)

	return customer, nil
}

// Login authenticates the customer and opens a new session
func (m *AccountManager) Login(ctx context.Context, email, password string, websiteID ...int64) (*Customer, *Session, error) {
	customer, err := m.Authenticate(ctx, email, password, websiteID...)
	if err != nil {
		return nil, nil, err
	}

	session, err := m.sessions.Create(ctx, customer.ID)
	if err != nil {
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create customer session")
	}

	return customer, session, nil
}

// ChangePassword replaces the password after checking the current one.
// The caller's session (see WithSession) is rotated and every other
// session of the customer is dropped before returning. The returned
// session is nil when the context carried none.
func (m *AccountManager) ChangePassword(ctx context.Context, email, currentPassword, newPassword string, websiteID ...int64) (*Session, error) {
	website := m.websiteID(websiteID)

	var customer *Customer
	err := m.run(ctx, "change customer password", func(ctx context.Context, tx bun.Tx) error {
		c, err := m.repo.Customers().FindByEmailTx(ctx, tx, email, m.lookupScope(website))
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return NewInvalidCredentialsError(MessageInvalidCredentials)
			}
			return err
		}

		if err := m.hasher.ComparePasswordAndHash(currentPassword, c.PasswordHash); err != nil {
			return NewInvalidCredentialsError(MessagePasswordMismatch)
		}

		if err := PasswordPolicyFromConfig(m.cfg).Validate(newPassword); err != nil {
			return err
		}

		hash, err := m.hasher.HashPassword(newPassword)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

		if err := m.repo.Customers().UpdatePasswordTx(ctx, tx, c.ID, hash); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update customer password")
		}

		c.PasswordHash = hash
		c.ClearResetToken()
		customer = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	session, err := m.rotateSessions(ctx, customer)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "password changed but sessions could not be rotated")
	}

	m.record(ctx, ActivityEventPasswordChanged, customer, nil)

	return session, nil
}

// Activate confirms a pending account using its confirmation key
func (m *AccountManager) Activate(ctx context.Context, email, confirmationKey string, websiteID ...int64) (*Customer, error) {
	website := m.websiteID(websiteID)

	var customer *Customer
	err := m.run(ctx, "activate customer", func(ctx context.Context, tx bun.Tx) error {
		c, err := m.findByEmailTx(ctx, tx, email, website)
		if err != nil {
			return err
		}

		customer, err = m.activate(ctx, tx, c, confirmationKey)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.afterActivation(ctx, customer)

	return customer, nil
}

// ActivateByID confirms a pending account identified by id
func (m *AccountManager) ActivateByID(ctx context.Context, customerID uuid.UUID, confirmationKey string) (*Customer, error) {
	var customer *Customer
	err := m.run(ctx, "activate customer", func(ctx context.Context, tx bun.Tx) error {
		c, err := m.findByIDTx(ctx, tx, customerID)
		if err != nil {
			return err
		}

		customer, err = m.activate(ctx, tx, c, confirmationKey)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.afterActivation(ctx, customer)

	return customer, nil
}

// ResendConfirmation sends the confirmation key again to a pending account
func (m *AccountManager) ResendConfirmation(ctx context.Context, email string, websiteID int64) error {
	var customer *Customer
	err := m.run(ctx, "resend confirmation", func(ctx context.Context, tx bun.Tx) error {
		c, err := m.findByEmailTx(ctx, tx, email, websiteID)
		if err != nil {
			return err
		}

		if m.states.CurrentState(c) == StateActive {
			return NewInvalidTransitionError(MessageConfirmationNotNeeded, StateActive, StateActive)
		}

		customer = c
		return nil
	})
	if err != nil {
		return err
	}

	m.notify(ctx, NotifyConfirmation, customer, "", customer.ConfirmationKey)
	m.record(ctx, ActivityEventConfirmationResent, customer, nil)

	return nil
}

// InitiatePasswordReset stores a fresh reset token for the customer and
// sends the reset link using the given template
func (m *AccountManager) InitiatePasswordReset(ctx context.Context, email, template string, websiteID int64) error {
	switch template {
	case TemplateEmailReset, TemplateEmailReminder:
	default:
		return NewInvalidInputError("template", template)
	}

	var customer *Customer
	var token string
	err := m.run(ctx, "initiate password reset", func(ctx context.Context, tx bun.Tx) error {
		c, err := m.findByEmailTx(ctx, tx, email, websiteID)
		if err != nil {
			return err
		}

		token = m.tokens()
		issuedAt := m.now()
		if err := m.repo.Customers().SetResetTokenTx(ctx, tx, c.ID, token, issuedAt); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store password reset token")
		}

		customer = c.SetResetToken(token, issuedAt)
		return nil
	})
	if err != nil {
		return err
	}

	m.notify(ctx, NotifyResetLink, customer, template, token)
	m.record(ctx, ActivityEventPasswordResetRequest, customer, map[string]any{
		"template": template,
	})

	return nil
}

// ValidateResetPasswordLinkToken checks a reset token. A nil customer id
// resolves the token across all customers, and a token held by more than
// one customer is reported as expired.
func (m *AccountManager) ValidateResetPasswordLinkToken(ctx context.Context, customerID uuid.UUID, token string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, NewInputRequiredError(FieldResetPasswordLinkToken)
	}

	err := m.run(ctx, "validate password reset token", func(ctx context.Context, tx bun.Tx) error {
		var c *Customer
		var err error
		if customerID == uuid.Nil {
			c, err = m.findByResetTokenTx(ctx, tx, token)
		} else {
			c, err = m.findByIDTx(ctx, tx, customerID)
		}
		if err != nil {
			return err
		}

		if !tokensEqual(c.ResetToken, token) {
			return NewTokenExpiredError()
		}

		return m.checkTokenFreshness(c)
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

// ResetPassword sets a new password using a reset token. An empty email
// resolves the customer by token. The token is redeemed at most once.
func (m *AccountManager) ResetPassword(ctx context.Context, email, token, newPassword string, websiteID ...int64) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, NewInputRequiredError(FieldResetPasswordLinkToken)
	}

	website := m.websiteID(websiteID)

	var customer *Customer
	err := m.run(ctx, "reset customer password", func(ctx context.Context, tx bun.Tx) error {
		var c *Customer
		var err error
		if strings.TrimSpace(email) == "" {
			c, err = m.findByResetTokenTx(ctx, tx, token)
		} else {
			c, err = m.findByEmailTx(ctx, tx, email, website)
		}
		if err != nil {
			return err
		}

		if !tokensEqual(c.ResetToken, token) {
			return NewTokenMismatchError()
		}

		if err := m.checkTokenFreshness(c); err != nil {
			return err
		}

		if err := PasswordPolicyFromConfig(m.cfg).Validate(newPassword); err != nil {
			return err
		}

		hash, err := m.hasher.HashPassword(newPassword)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

		consumed, err := m.repo.Customers().ConsumeResetTokenTx(ctx, tx, c.ID, token, hash)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update customer password")
		}

		if !consumed {
			return NewTokenMismatchError()
		}

		c.PasswordHash = hash
		customer = c.ClearResetToken()
		return nil
	})
	if err != nil {
		return false, err
	}

	if err := m.sessions.InvalidateCustomer(ctx, customer.ID); err != nil {
		m.logger.Warn("failed to invalidate sessions after password reset for %s: %v", customer.ID, err)
	}

	m.record(ctx, ActivityEventPasswordResetSuccess, customer, nil)

	return true, nil
}

// IsEmailAvailable reports whether no customer uses the email in the
// website scope
func (m *AccountManager) IsEmailAvailable(ctx context.Context, email string, websiteID ...int64) (bool, error) {
	website := m.websiteID(websiteID)

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.repo.Customers().FindByEmail(ctx, email, m.lookupScope(website))
	if err == nil {
		return false, nil
	}

	if repository.IsRecordNotFound(err) {
		return true, nil
	}

	return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email availability")
}

// GetDefaultBillingAddress returns nil when the customer has no default
// billing address
func (m *AccountManager) GetDefaultBillingAddress(ctx context.Context, customerID uuid.UUID) (*Address, error) {
	return m.defaultAddress(ctx, customerID, Addresses.GetDefaultBillingTx)
}

// GetDefaultShippingAddress returns nil when the customer has no default
// shipping address
func (m *AccountManager) GetDefaultShippingAddress(ctx context.Context, customerID uuid.UUID) (*Address, error) {
	return m.defaultAddress(ctx, customerID, Addresses.GetDefaultShippingTx)
}

// SaveAddress stores a customer address. The telephone is stored in E.164
// when it parses for the address country. Saving a default address
// removes the flag from the customer's other addresses. An existing
// address can only be updated by the customer owning it.
func (m *AccountManager) SaveAddress(ctx context.Context, address *Address) (*Address, error) {
	if address == nil || address.CustomerID == uuid.Nil {
		return nil, NewInputRequiredError("customerId")
	}

	var saved *Address
	err := m.run(ctx, "save customer address", func(ctx context.Context, tx bun.Tx) error {
		if _, err := m.findByIDTx(ctx, tx, address.CustomerID); err != nil {
			return err
		}

		address.Telephone = address.E164Telephone()

		var err error
		saved, err = m.repo.Addresses().SaveTx(ctx, tx, address)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return NewNoSuchEntityError("addressId", address.ID, "customerId", address.CustomerID)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to save customer address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// CreateAccount registers a customer. When confirmation is required the
// account starts pending with a fresh confirmation key. An empty
// password leaves the account with a random one.
func (m *AccountManager) CreateAccount(ctx context.Context, customer *Customer, password string) (*Customer, error) {
	if customer == nil || strings.TrimSpace(customer.Email) == "" {
		return nil, NewInputRequiredError("email")
	}

	if password != "" {
		if err := PasswordPolicyFromConfig(m.cfg).Validate(password); err != nil {
			return nil, err
		}
	}

	// the caller's record is only updated once the insert committed
	record := *customer
	record.Email = normalizeEmail(record.Email)
	if record.WebsiteID == 0 {
		record.WebsiteID = m.cfg.GetDefaultWebsiteID()
	}

	err := m.run(ctx, "create customer account", func(ctx context.Context, tx bun.Tx) error {
		_, err := m.repo.Customers().FindByEmailTx(ctx, tx, record.Email, m.lookupScope(record.WebsiteID))
		if err == nil {
			return NewEmailExistsError(record.Email, record.WebsiteID)
		}
		if !repository.IsRecordNotFound(err) {
			return err
		}

		if password != "" {
			hash, err := m.hasher.HashPassword(password)
			if err != nil {
				return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
			}
			record.PasswordHash = hash
		}

		record.State = StateActive
		record.ConfirmationKey = ""
		if m.cfg.GetConfirmationRequired() {
			record.State = StatePendingConfirmation
			record.ConfirmationKey = m.tokens()
		}

		now := m.now()
		record.CreatedAt = &now
		record.UpdatedAt = &now

		if _, err := m.repo.Customers().RegisterTx(ctx, tx, &record); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create customer")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	*customer = record

	if customer.State == StatePendingConfirmation {
		m.notify(ctx, NotifyConfirmation, customer, "", customer.ConfirmationKey)
	} else {
		m.notify(ctx, NotifyWelcome, customer, "", "")
	}

	m.record(ctx, ActivityEventAccountCreated, customer, map[string]any{
		"activation_state": customer.State,
	})

	return customer, nil
}

// GetConfirmationStatus returns the activation state of the customer
func (m *AccountManager) GetConfirmationStatus(ctx context.Context, customerID uuid.UUID) (ActivationState, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	c, err := m.repo.Customers().FindByID(ctx, customerID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", NewNoSuchEntityError("customerId", customerID)
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load customer")
	}

	return m.states.CurrentState(c), nil
}

func (m *AccountManager) activate(ctx context.Context, tx bun.IDB, c *Customer, key string) (*Customer, error) {
	if m.states.CurrentState(c) == StateActive {
		return nil, NewInvalidTransitionError(MessageAlreadyActive, StateActive, StateActive)
	}

	if !tokensEqual(c.ConfirmationKey, key) {
		return nil, NewKeyMismatchError()
	}

	return m.states.Transition(ctx, customerActor(c), c, StateActive,
		WithTransitionTx(tx),
		WithTransitionReason("confirmation key accepted"),
	)
}

func (m *AccountManager) afterActivation(ctx context.Context, customer *Customer) {
	m.notify(ctx, NotifyWelcome, customer, "", "")
	m.record(ctx, ActivityEventAccountActivated, customer, nil)
}

func (m *AccountManager) defaultAddress(ctx context.Context, customerID uuid.UUID, get func(Addresses, context.Context, bun.IDB, uuid.UUID) (*Address, error)) (*Address, error) {
	var address *Address
	err := m.run(ctx, "load default address", func(ctx context.Context, tx bun.Tx) error {
		if _, err := m.findByIDTx(ctx, tx, customerID); err != nil {
			return err
		}

		var err error
		address, err = get(m.repo.Addresses(), ctx, tx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return address, nil
}

func (m *AccountManager) rotateSessions(ctx context.Context, customer *Customer) (*Session, error) {
	current, ok := SessionFromContext(ctx)
	if !ok || current.CustomerID != customer.ID {
		return nil, m.sessions.InvalidateCustomer(ctx, customer.ID)
	}

	rotated, err := m.sessions.Regenerate(ctx, current.ID)
	if err != nil {
		if ierr := m.sessions.InvalidateCustomer(ctx, customer.ID); ierr != nil {
			return nil, ierr
		}
		if IsNoSuchEntity(err) {
			m.logger.Debug("session %s of customer %s is gone, dropped all sessions", current.ID, customer.ID)
			return nil, nil
		}
		return nil, err
	}

	if err := m.sessions.InvalidateCustomer(ctx, customer.ID, rotated.ID); err != nil {
		return nil, err
	}

	return rotated, nil
}

func (m *AccountManager) checkLoginAttempts(c *Customer) error {
	limit := m.cfg.GetMaxLoginAttempts()
	if limit <= 0 {
		return nil
	}

	if c.LoginAttemptAt != nil {
		expired, err := isOutsideThresholdPeriod(m.now(), *c.LoginAttemptAt, m.cfg.GetLoginCoolDownPeriod())
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to calculate login attempt cool down")
		}
		if expired {
			c.LoginAttempts = 0
		}
	}

	if c.LoginAttempts >= limit {
		return NewTooManyLoginAttemptsError()
	}

	return nil
}

func (m *AccountManager) checkTokenFreshness(c *Customer) error {
	if !c.HasResetToken() {
		return NewTokenExpiredError()
	}

	expired, err := isOutsideThresholdPeriod(m.now(), *c.ResetTokenCreatedAt, m.cfg.GetResetTokenExpiration())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check token expiration period")
	}

	if expired {
		return NewTokenExpiredError()
	}

	return nil
}

func (m *AccountManager) findByEmailTx(ctx context.Context, tx bun.IDB, email string, website int64) (*Customer, error) {
	c, err := m.repo.Customers().FindByEmailTx(ctx, tx, email, m.lookupScope(website))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NewNoSuchEntityError("email", email, "websiteId", website)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load customer")
	}
	return c, nil
}

func (m *AccountManager) findByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Customer, error) {
	c, err := m.repo.Customers().FindByIDTx(ctx, tx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NewNoSuchEntityError("customerId", id)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load customer")
	}
	return c, nil
}

func (m *AccountManager) findByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*Customer, error) {
	found, err := m.repo.Customers().FindByResetTokenTx(ctx, tx, token)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load customer by reset token")
	}

	switch len(found) {
	case 0:
		return nil, NewNoSuchEntityError("rp_token", token)
	case 1:
		return found[0], nil
	default:
		m.logger.Warn("reset token matched more than one customer, refusing to use it")
		return nil, NewTokenExpiredError()
	}
}

func (m *AccountManager) run(ctx context.Context, op string, fn func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during "+op,
		)
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.repo.RunInTx(ctx, nil, fn); err != nil {
		return passthrough(err, "failed to "+op)
	}

	return nil
}

func (m *AccountManager) websiteID(ids []int64) int64 {
	if len(ids) > 0 {
		return ids[0]
	}
	return m.cfg.GetDefaultWebsiteID()
}

func (m *AccountManager) lookupScope(website int64) int64 {
	if m.cfg.GetAccountShareScope() == ShareScopeGlobal {
		return AnyWebsite
	}
	return website
}

func (m *AccountManager) notify(ctx context.Context, kind NotificationKind, c *Customer, template, token string) {
	if c == nil {
		return
	}

	n := Notification{
		Kind:       kind,
		CustomerID: c.ID.String(),
		Email:      c.Email,
		Name:       c.Name(),
		WebsiteID:  c.WebsiteID,
		Template:   template,
		Token:      token,
		SentAt:     m.now(),
	}

	if err := m.notifier.Notify(ctx, n); err != nil {
		m.logger.Warn("failed to send %s notification to %s: %v", kind, c.ID, err)
	}
}

func (m *AccountManager) record(ctx context.Context, eventType ActivityEventType, c *Customer, meta map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      customerActor(c),
		Metadata:   meta,
		OccurredAt: m.now(),
	}

	if c != nil {
		event.CustomerID = c.ID.String()
		event.WebsiteID = c.WebsiteID
		event.ToState = c.State
	}

	if err := m.activity.Record(ctx, event); err != nil {
		m.logger.Warn("activity sink error during %s: %v", eventType, err)
	}
}

func authErrorReason(err error) string {
	if IsTooManyLoginAttempts(err) {
		return "too_many_attempts"
	}
	if IsEmailNotConfirmed(err) {
		return "email_not_confirmed"
	}
	return "invalid_credentials"
}
