package account_test

import (
	"context"
	"testing"

	account "github.com/goliatone/go-customer-account"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCustomerMessageValidate(t *testing.T) {
	assert.NoError(t, account.RegisterCustomerMessage{Email: "  Padded@Example.com\t"}.Validate())
	assert.Error(t, account.RegisterCustomerMessage{Email: "   "}.Validate())
	assert.Error(t, account.RegisterCustomerMessage{Email: " not an email "}.Validate())
}

func TestRegisterCustomerHandler(t *testing.T) {
	f := newFixture(t, testOptions())
	handler := account.NewRegisterCustomerHandler(f.manager)

	t.Run("registers with hashid", func(t *testing.T) {
		var created *account.Customer
		err := handler.Execute(f.ctx, account.RegisterCustomerMessage{
			FirstName:  "Pepe",
			LastName:   "Rone",
			Email:      " Pepe.Rone@Example.com ",
			Password:   testPassword,
			WebsiteID:  1,
			UseHashid:  true,
			OnResponse: func(c *account.Customer) { created = c },
		})
		require.NoError(t, err)
		require.NotNil(t, created)

		expected, err := hashid.NewUUID("1:pepe.rone@example.com")
		require.NoError(t, err)
		assert.Equal(t, expected, created.ID)
		assert.Equal(t, "pepe.rone@example.com", created.Email)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		err := handler.Execute(f.ctx, account.RegisterCustomerMessage{Email: "not-an-email"})
		richErr := richError(t, err)
		assert.Equal(t, account.TextCodeInvalidInput, richErr.TextCode)
		assert.Contains(t, richErr.Metadata, "email")
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		err := handler.Execute(f.ctx, account.RegisterCustomerMessage{
			Email:    "pepe.rone@example.com",
			Password: testPassword,
		})
		assert.True(t, account.IsEmailExists(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := handler.Execute(ctx, account.RegisterCustomerMessage{Email: "x@example.com"})
		assert.Error(t, err)
	})
}

func TestInitializePasswordResetHandler(t *testing.T) {
	f := newFixture(t, testOptions())
	f.createCustomer(t, "reset@example.com", 1)
	handler := account.NewInitializePasswordResetHandler(f.manager)

	var resp *account.InitializePasswordResetResponse
	err := handler.Execute(f.ctx, account.InitializePasswordResetMessage{
		Email:      "reset@example.com",
		OnResponse: func(r *account.InitializePasswordResetResponse) { resp = r },
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Success)

	n, ok := f.notifier.Last()
	require.True(t, ok)
	assert.Equal(t, account.NotifyResetLink, n.Kind)
	assert.Equal(t, account.TemplateEmailReset, n.Template)

	t.Run("unknown email succeeds silently", func(t *testing.T) {
		err := handler.Execute(f.ctx, account.InitializePasswordResetMessage{Email: "ghost@example.com"})
		assert.NoError(t, err)
	})

	t.Run("unknown email is reported when revealing", func(t *testing.T) {
		revealing := account.NewInitializePasswordResetHandler(f.manager)
		revealing.Reveal = true
		err := revealing.Execute(f.ctx, account.InitializePasswordResetMessage{Email: "ghost@example.com"})
		assert.True(t, account.IsNoSuchEntity(err))
	})

	t.Run("unknown template", func(t *testing.T) {
		err := handler.Execute(f.ctx, account.InitializePasswordResetMessage{
			Email:    "reset@example.com",
			Template: "email_other",
		})
		richErr := richError(t, err)
		assert.Contains(t, richErr.Metadata, "template")
	})
}

func TestFinalizePasswordResetHandler(t *testing.T) {
	f := newFixture(t, testOptions(), account.WithTokenGenerator(sequenceTokens("rp")))
	f.createCustomer(t, "finalize@example.com", 1)
	require.NoError(t, f.manager.InitiatePasswordReset(f.ctx, "finalize@example.com", account.TemplateEmailReset, 1))

	handler := account.NewFinalizePasswordResetHandler(f.manager).WithLogger(account.NoopLogger())

	err := handler.Execute(f.ctx, account.FinalizePasswordResetMessage{Password: "NewPassword1!"})
	assert.True(t, account.IsInputRequired(err))

	err = handler.Execute(f.ctx, account.FinalizePasswordResetMessage{
		Token:    "rp-1",
		Password: "NewPassword1!",
	})
	require.NoError(t, err)

	_, err = f.manager.Authenticate(f.ctx, "finalize@example.com", "NewPassword1!")
	assert.NoError(t, err)

	err = handler.Execute(f.ctx, account.FinalizePasswordResetMessage{
		Token:    "rp-1",
		Password: "OtherPassword1!",
	})
	assert.True(t, account.IsNoSuchEntity(err))
}

func TestAccountActivationHandler(t *testing.T) {
	cfg := testOptions()
	cfg.ConfirmationRequired = true
	f := newFixture(t, cfg, account.WithTokenGenerator(sequenceTokens("key")))
	handler := account.NewAccountActivationHandler(f.manager)

	first := f.createCustomer(t, "first@example.com", 1)
	second := f.createCustomer(t, "second@example.com", 1)

	err := handler.Execute(f.ctx, account.AccountActivationMessage{ConfirmationKey: "key-1"})
	richErr := richError(t, err)
	assert.Contains(t, richErr.Metadata, "email")

	var resp *account.AccountActivationResponse
	err = handler.Execute(f.ctx, account.AccountActivationMessage{
		Email:           "first@example.com",
		ConfirmationKey: first.ConfirmationKey,
		OnResponse:      func(r *account.AccountActivationResponse) { resp = r },
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, account.StateActive, resp.State)

	err = handler.Execute(f.ctx, account.AccountActivationMessage{
		CustomerID:      second.ID,
		ConfirmationKey: "wrong",
	})
	assert.True(t, account.IsKeyMismatch(err))

	err = handler.Execute(f.ctx, account.AccountActivationMessage{
		CustomerID:      second.ID,
		ConfirmationKey: second.ConfirmationKey,
	})
	require.NoError(t, err)

	err = handler.Execute(f.ctx, account.AccountActivationMessage{
		CustomerID:      uuid.New(),
		ConfirmationKey: "key-9",
	})
	assert.True(t, account.IsNoSuchEntity(err))
}
