package account

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Addresses is the address directory
type Addresses interface {
	repository.Repository[*Address]

	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Address, error)
	ListByCustomerTx(ctx context.Context, tx bun.IDB, customerID uuid.UUID) ([]*Address, error)
	GetDefaultBilling(ctx context.Context, customerID uuid.UUID) (*Address, error)
	GetDefaultBillingTx(ctx context.Context, tx bun.IDB, customerID uuid.UUID) (*Address, error)
	GetDefaultShipping(ctx context.Context, customerID uuid.UUID) (*Address, error)
	GetDefaultShippingTx(ctx context.Context, tx bun.IDB, customerID uuid.UUID) (*Address, error)
	SaveTx(ctx context.Context, tx bun.IDB, address *Address) (*Address, error)
}

type addresses struct {
	repository.Repository[*Address]
	db *bun.DB
}

var _ Addresses = (*addresses)(nil)

// NewAddressesRepository returns the bun backed address directory
func NewAddressesRepository(db *bun.DB) Addresses {
	repo := repository.NewRepository[*Address](db, repository.ModelHandlers[*Address]{
		NewRecord: func() *Address { return &Address{} },
		GetID: func(a *Address) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Address, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &addresses{
		Repository: repo,
		db:         db,
	}
}

func (a *addresses) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Address, error) {
	return a.ListByCustomerTx(ctx, a.db, customerID)
}

func (a *addresses) ListByCustomerTx(ctx context.Context, tx bun.IDB, customerID uuid.UUID) ([]*Address, error) {
	var records []*Address
	err := tx.NewSelect().
		Model(&records).
		Where("?TableAlias.customer_id = ?", customerID).
		OrderExpr("?TableAlias.created_at ASC").
		Scan(ctx)
	if err != nil && !repository.IsRecordNotFound(err) {
		return nil, err
	}
	return records, nil
}

func (a *addresses) GetDefaultBilling(ctx context.Context, customerID uuid.UUID) (*Address, error) {
	return a.GetDefaultBillingTx(ctx, a.db, customerID)
}

// GetDefaultBillingTx returns nil without error when the customer has no
// default billing address.
func (a *addresses) GetDefaultBillingTx(ctx context.Context, tx bun.IDB, customerID uuid.UUID) (*Address, error) {
	return a.getDefault(ctx, tx, customerID, "is_default_billing")
}

func (a *addresses) GetDefaultShipping(ctx context.Context, customerID uuid.UUID) (*Address, error) {
	return a.GetDefaultShippingTx(ctx, a.db, customerID)
}

// GetDefaultShippingTx returns nil without error when the customer has no
// default shipping address.
func (a *addresses) GetDefaultShippingTx(ctx context.Context, tx bun.IDB, customerID uuid.UUID) (*Address, error) {
	return a.getDefault(ctx, tx, customerID, "is_default_shipping")
}

func (a *addresses) getDefault(ctx context.Context, tx bun.IDB, customerID uuid.UUID, column string) (*Address, error) {
	record := &Address{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.customer_id = ?", customerID).
		Where("?TableAlias.? = ?", bun.Ident(column), true).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// SaveTx inserts or updates the address. Updates only match addresses owned
// by address.CustomerID. A default flag on the saved address is removed from
// every other address of the same customer.
func (a *addresses) SaveTx(ctx context.Context, tx bun.IDB, address *Address) (*Address, error) {
	now := time.Now()
	address.UpdatedAt = &now

	if address.ID == uuid.Nil {
		address.ID = uuid.New()
		address.CreatedAt = &now
		if _, err := a.Repository.CreateTx(ctx, tx, address); err != nil {
			return nil, err
		}
	} else {
		res, err := tx.NewUpdate().
			Model(address).
			ExcludeColumn("id", "customer_id", "created_at").
			WherePK().
			Where("customer_id = ?", address.CustomerID).
			Exec(ctx)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"addressId":  address.ID.String(),
					"customerId": address.CustomerID.String(),
				})
		}
	}

	if address.IsDefaultBilling {
		if err := a.clearDefault(ctx, tx, address, "is_default_billing"); err != nil {
			return nil, err
		}
	}

	if address.IsDefaultShipping {
		if err := a.clearDefault(ctx, tx, address, "is_default_shipping"); err != nil {
			return nil, err
		}
	}

	return address, nil
}

func (a *addresses) clearDefault(ctx context.Context, tx bun.IDB, address *Address, column string) error {
	_, err := tx.NewUpdate().
		Model((*Address)(nil)).
		Set("? = ?", bun.Ident(column), false).
		Where("customer_id = ?", address.CustomerID).
		Where("id <> ?", address.ID).
		Exec(ctx)
	return err
}
