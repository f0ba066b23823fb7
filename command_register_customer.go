package account

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

type RegisterCustomerMessage struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	WebsiteID  int64  `json:"website_id"`
	UseHashid  bool
	OnResponse func(customer *Customer)
}

func (e RegisterCustomerMessage) Type() string { return "customer.register" }

func (e RegisterCustomerMessage) Validate() error {
	e.Email = normalizeEmail(e.Email)
	return validation.ValidateStruct(&e,
		validation.Field(&e.FirstName, validation.Length(0, 255)),
		validation.Field(&e.LastName, validation.Length(0, 255)),
		validation.Field(&e.Email, validation.Required, validation.Length(3, 255), is.Email),
		validation.Field(&e.WebsiteID, validation.Min(int64(0))),
	)
}

type RegisterCustomerHandler struct {
	manager *AccountManager
}

// NewRegisterCustomerHandler creates a handler backed by the manager
func NewRegisterCustomerHandler(manager *AccountManager) *RegisterCustomerHandler {
	return &RegisterCustomerHandler{manager: manager}
}

func (h *RegisterCustomerHandler) Execute(ctx context.Context, event RegisterCustomerMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during customer registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterCustomerHandler) execute(ctx context.Context, event RegisterCustomerMessage) error {
	if err := event.Validate(); err != nil {
		return validationError(err, "invalid customer registration")
	}

	customer := &Customer{
		FirstName: event.FirstName,
		LastName:  event.LastName,
		Email:     normalizeEmail(event.Email),
		WebsiteID: event.WebsiteID,
	}

	if event.UseHashid {
		website := event.WebsiteID
		if website == 0 {
			website = h.manager.cfg.GetDefaultWebsiteID()
		}
		if id, err := hashid.NewUUID(fmt.Sprintf("%d:%s", website, customer.Email)); err == nil {
			customer.ID = id
		}
	}

	created, err := h.manager.CreateAccount(ctx, customer, event.Password)
	if err != nil {
		return err
	}

	if event.OnResponse != nil {
		event.OnResponse(created)
	}

	return nil
}
