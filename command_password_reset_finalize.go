package account

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

type FinalizePasswordResetMessage struct {
	Email     string `json:"email" example:"pepe.rone@example.com" doc:"Customer email, optional."`
	Token     string `json:"token" example:"c6a1b1f0e3f54c3c9d1a0e5f2b7a8c9d" doc:"Reset password token"`
	Password  string `json:"password" example:"some_Secret_word1" doc:"Password"`
	WebsiteID int64  `json:"website_id" example:"1" doc:"Website scope."`
}

func (m FinalizePasswordResetMessage) Type() string { return "customer.password_reset.finalize" }

func (m FinalizePasswordResetMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Password, validation.Required),
	)
}

type FinalizePasswordResetHandler struct {
	manager *AccountManager
	logger  Logger
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(manager *AccountManager) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		manager: manager,
		logger:  defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	if event.Token == "" {
		return NewInputRequiredError(FieldResetPasswordLinkToken)
	}

	if err := event.Validate(); err != nil {
		return validationError(err, "invalid password reset payload")
	}

	var websites []int64
	if event.WebsiteID != 0 {
		websites = append(websites, event.WebsiteID)
	}

	ok, err := h.manager.ResetPassword(ctx, event.Email, event.Token, event.Password, websites...)
	if err != nil {
		h.logger.Debug("password reset rejected: %v", err)
		return err
	}

	if !ok {
		return goerrors.New("password reset was not applied", goerrors.CategoryInternal)
	}

	return nil
}
