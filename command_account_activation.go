package account

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type AccountActivationMessage struct {
	CustomerID      uuid.UUID `json:"customer_id" doc:"Customer id, used when email is empty."`
	Email           string    `json:"email" example:"pepe.rone@example.com" doc:"Customer email."`
	ConfirmationKey string    `json:"key" example:"c6a1b1f0e3f54c3c9d1a0e5f2b7a8c9d" doc:"Confirmation key"`
	WebsiteID       int64     `json:"website_id" example:"1" doc:"Website scope."`
	OnResponse      func(resp *AccountActivationResponse)
}

func (m AccountActivationMessage) Type() string { return "customer.activate" }

func (m AccountActivationMessage) Validate() error {
	emailRules := []validation.Rule{}
	if m.CustomerID == uuid.Nil {
		emailRules = append(emailRules, validation.Required)
	}

	return validation.ValidateStruct(&m,
		validation.Field(&m.ConfirmationKey, validation.Required),
		validation.Field(&m.Email, emailRules...),
	)
}

type AccountActivationResponse struct {
	Customer *Customer
	State    ActivationState
}

type AccountActivationHandler struct {
	manager *AccountManager
}

// NewAccountActivationHandler creates a handler backed by the manager
func NewAccountActivationHandler(manager *AccountManager) *AccountActivationHandler {
	return &AccountActivationHandler{manager: manager}
}

func (h *AccountActivationHandler) Execute(ctx context.Context, event AccountActivationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during account activation")
	default:
		return h.execute(ctx, event)
	}
}

func (h *AccountActivationHandler) execute(ctx context.Context, event AccountActivationMessage) error {
	if err := event.Validate(); err != nil {
		return validationError(err, "invalid account activation payload")
	}

	var (
		customer *Customer
		err      error
	)

	if event.Email != "" {
		var websites []int64
		if event.WebsiteID != 0 {
			websites = append(websites, event.WebsiteID)
		}
		customer, err = h.manager.Activate(ctx, event.Email, event.ConfirmationKey, websites...)
	} else {
		customer, err = h.manager.ActivateByID(ctx, event.CustomerID, event.ConfirmationKey)
	}
	if err != nil {
		return err
	}

	if event.OnResponse != nil {
		event.OnResponse(&AccountActivationResponse{
			Customer: customer,
			State:    customer.State,
		})
	}

	return nil
}
