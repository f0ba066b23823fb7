package account

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ResetTokenLookupLimit bounds token lookups. Two rows are enough to
// tell a unique token from an ambiguous one.
const ResetTokenLookupLimit = 2

// Customers is the customer directory
type Customers interface {
	repository.Repository[*Customer]

	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, email string, websiteID int64) (*Customer, error)
	FindByEmailTx(ctx context.Context, tx bun.IDB, email string, websiteID int64) (*Customer, error)
	FindByResetToken(ctx context.Context, token string) ([]*Customer, error)
	FindByResetTokenTx(ctx context.Context, tx bun.IDB, token string) ([]*Customer, error)

	Register(ctx context.Context, customer *Customer) (*Customer, error)
	RegisterTx(ctx context.Context, tx bun.IDB, customer *Customer) (*Customer, error)

	UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
	ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token, passwordHash string) (bool, error)
	SetResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, issuedAt time.Time) error
	UpdateActivationState(ctx context.Context, id uuid.UUID, from, to ActivationState) (bool, error)
	UpdateActivationStateTx(ctx context.Context, tx bun.IDB, id uuid.UUID, from, to ActivationState) (bool, error)

	TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, customer *Customer, at time.Time) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, customer *Customer, at time.Time) error
}

type customers struct {
	repository.Repository[*Customer]
	db *bun.DB
}

var (
	_ Customers                        = (*customers)(nil)
	_ repository.Repository[*Customer] = (*customers)(nil)
)

// NewCustomersRepository returns the bun backed customer directory
func NewCustomersRepository(db *bun.DB) Customers {
	repo := repository.NewRepository[*Customer](db, repository.ModelHandlers[*Customer]{
		NewRecord: func() *Customer { return &Customer{} },
		GetID: func(c *Customer) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Customer, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &customers{
		Repository: repo,
		db:         db,
	}
}

func (a *customers) FindByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return a.FindByIDTx(ctx, a.db, id)
}

func (a *customers) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Customer, error) {
	record := &Customer{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"customerId": id.String(),
				})
		}
		return nil, err
	}

	record.EnsureState()
	return record, nil
}

func (a *customers) FindByEmail(ctx context.Context, email string, websiteID int64) (*Customer, error) {
	return a.FindByEmailTx(ctx, a.db, email, websiteID)
}

// FindByEmailTx looks a customer up by email. AnyWebsite ignores the
// website scope and returns the oldest match.
func (a *customers) FindByEmailTx(ctx context.Context, tx bun.IDB, email string, websiteID int64) (*Customer, error) {
	email = normalizeEmail(email)

	record := &Customer{}
	q := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email)

	if websiteID != AnyWebsite {
		q = q.Where("?TableAlias.website_id = ?", websiteID)
	}

	err := q.OrderExpr("?TableAlias.created_at ASC").Limit(1).Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email":     email,
					"websiteId": websiteID,
				})
		}
		return nil, err
	}

	record.EnsureState()
	return record, nil
}

func (a *customers) FindByResetToken(ctx context.Context, token string) ([]*Customer, error) {
	return a.FindByResetTokenTx(ctx, a.db, token)
}

// FindByResetTokenTx returns at most ResetTokenLookupLimit customers
// holding the token.
func (a *customers) FindByResetTokenTx(ctx context.Context, tx bun.IDB, token string) ([]*Customer, error) {
	var records []*Customer
	err := tx.NewSelect().
		Model(&records).
		Where("?TableAlias.rp_token = ?", token).
		Limit(ResetTokenLookupLimit).
		Scan(ctx)
	if err != nil && !repository.IsRecordNotFound(err) {
		return nil, err
	}

	for _, r := range records {
		r.EnsureState()
	}
	return records, nil
}

func (a *customers) Register(ctx context.Context, customer *Customer) (*Customer, error) {
	return a.RegisterTx(ctx, a.db, customer)
}

func (a *customers) RegisterTx(ctx context.Context, tx bun.IDB, customer *Customer) (*Customer, error) {
	prepareCustomerDefaults(customer)
	return a.Repository.CreateTx(ctx, tx, customer)
}

func (a *customers) UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := tx.NewUpdate().
		Model((*Customer)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("rp_token = NULL").
		Set("rp_token_created_at = NULL").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"customerId": id.String(),
			})
	}

	return nil
}

// ConsumeResetTokenTx swaps the password hash only while the customer
// still holds the given token. It reports false when another request
// already redeemed or replaced it.
func (a *customers) ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token, passwordHash string) (bool, error) {
	res, err := tx.NewUpdate().
		Model((*Customer)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("rp_token = NULL").
		Set("rp_token_created_at = NULL").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("rp_token = ?", token).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (a *customers) SetResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, issuedAt time.Time) error {
	res, err := tx.NewUpdate().
		Model((*Customer)(nil)).
		Set("rp_token = ?", token).
		Set("rp_token_created_at = ?", issuedAt).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"customerId": id.String(),
			})
	}

	return nil
}

func (a *customers) UpdateActivationState(ctx context.Context, id uuid.UUID, from, to ActivationState) (bool, error) {
	return a.UpdateActivationStateTx(ctx, a.db, id, from, to)
}

// UpdateActivationStateTx moves the customer from one state to another.
// Moving to active drops the confirmation key. It reports false when the
// stored state no longer matches from.
func (a *customers) UpdateActivationStateTx(ctx context.Context, tx bun.IDB, id uuid.UUID, from, to ActivationState) (bool, error) {
	q := tx.NewUpdate().
		Model((*Customer)(nil)).
		Set("activation_state = ?", to).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("activation_state = ?", from)

	if to == StateActive {
		q = q.Set("confirmation = NULL")
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (a *customers) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, customer *Customer, at time.Time) error {
	// NOTE: the ORM skips zero values, so the counters are reset with raw SQL
	_, err := tx.NewRaw(`
		UPDATE "customers"
		SET
			"loggedin_at" = ?,
			"login_attempt_at" = NULL,
			"login_attempts" = 0
		WHERE
			"id" = ?;
	`, at, customer.ID).Exec(ctx)

	return err
}

func (a *customers) TrackAttemptedLoginTx(ctx context.Context, tx bun.IDB, customer *Customer, at time.Time) error {
	_, err := tx.NewUpdate().
		Model((*Customer)(nil)).
		Set("login_attempts = ?", customer.LoginAttempts+1).
		Set("login_attempt_at = ?", at).
		Where("id = ?", customer.ID).
		Exec(ctx)

	return err
}

func prepareCustomerDefaults(c *Customer) {
	if c == nil {
		return
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Email = normalizeEmail(c.Email)
	c.EnsureState()
	if c.PasswordHash == "" {
		c.PasswordHash = RandomPasswordHash()
	}
}
