package account

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Customer email."`
	Template   string `json:"template" example:"email_reset" doc:"Notification template."`
	WebsiteID  int64  `json:"website_id" example:"1" doc:"Website scope."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "customer.password_reset" }

func (p InitializePasswordResetMessage) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Template, validation.In(TemplateEmailReset, TemplateEmailReminder)),
	)
}

type InitializePasswordResetResponse struct {
	Email   string
	Success bool
}

type InitializePasswordResetHandler struct {
	manager *AccountManager
	// Reveal reports unknown emails as errors. By default they succeed
	// silently so the response does not disclose which emails exist.
	Reveal bool
}

// NewInitializePasswordResetHandler creates a handler backed by the manager
func NewInitializePasswordResetHandler(manager *AccountManager) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{manager: manager}
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	if err := event.Validate(); err != nil {
		return validationError(err, "invalid password reset request")
	}

	if event.Template == "" {
		event.Template = TemplateEmailReset
	}

	website := event.WebsiteID
	if website == 0 {
		website = h.manager.cfg.GetDefaultWebsiteID()
	}

	resp := &InitializePasswordResetResponse{Email: normalizeEmail(event.Email)}

	err := h.manager.InitiatePasswordReset(ctx, event.Email, event.Template, website)
	if err != nil && (h.Reveal || !IsNoSuchEntity(err)) {
		return err
	}

	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
