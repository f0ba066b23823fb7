package account

import (
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	TextCodeTooManyLoginAttempts  = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeNoSuchEntity          = "NO_SUCH_ENTITY"
	TextCodeInvalidTransition     = "INVALID_TRANSITION"
	TextCodeKeyMismatch           = "CONFIRMATION_KEY_MISMATCH"
	TextCodeInputRequired         = "INPUT_REQUIRED"
	TextCodeInvalidInput          = "INVALID_INPUT"
	TextCodeTokenExpired          = "RESET_TOKEN_EXPIRED"
	TextCodeTokenMismatch         = "RESET_TOKEN_MISMATCH"
	TextCodeEmailExists           = "EMAIL_EXISTS"
	TextCodeWeakPassword          = "WEAK_PASSWORD"
	TextCodeEmailNotConfirmed     = "EMAIL_NOT_CONFIRMED"
	TextCodeEmptyPassword         = "EMPTY_PASSWORD"
	TextCodeMismatchedHashAndPass = "MISMATCHED_HASH_AND_PASSWORD"
)

const (
	// MessageInvalidCredentials is the generic login failure message
	MessageInvalidCredentials = "Invalid login or password."
	// MessagePasswordMismatch is used when the account exists but the password is wrong
	MessagePasswordMismatch = "The password doesn't match this account. Verify the password and try again."
	// MessageTokenExpired is used for stale or ambiguous reset tokens
	MessageTokenExpired = "The password token is expired. Reset and try again."
	// MessageTokenMismatch is used when the stored token differs
	MessageTokenMismatch = "The password token is mismatched. Reset and try again."
	// MessageKeyMismatch is used when the confirmation key differs
	MessageKeyMismatch = "The confirmation token is invalid. Verify the token and try again."
	// MessageAlreadyActive is returned when activating a confirmed account
	MessageAlreadyActive = "The account is already active."
	// MessageConfirmationNotNeeded is returned when resending to a confirmed account
	MessageConfirmationNotNeeded = "Confirmation isn't needed."
	// MessageEmailNotConfirmed is returned when a pending account logs in
	MessageEmailNotConfirmed = "This account isn't confirmed. Verify and try again."
	// MessageEmailExists is returned on duplicate registrations
	MessageEmailExists = "A customer with the same email address already exists in an associated website."
	// RawMessageInputRequired is the template behind input required errors
	RawMessageInputRequired = `"%fieldName" is required. Enter and try again.`
	// RawMessageInvalidInput is the template behind invalid input errors
	RawMessageInvalidInput = `Invalid value of "%value" provided for the %fieldName field.`
)

// FieldResetPasswordLinkToken is the field name reported for missing reset tokens
const FieldResetPasswordLinkToken = "resetPasswordLinkToken"

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = goerrors.New("password can not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is returned by ComparePasswordAndHash
var ErrMismatchedHashAndPassword = goerrors.New("mismatched hash and password", goerrors.CategoryAuth).
	WithTextCode(TextCodeMismatchedHashAndPass).
	WithCode(goerrors.CodeUnauthorized)

// NewInvalidCredentialsError is returned for login and password change failures
func NewInvalidCredentialsError(message string) *goerrors.Error {
	if message == "" {
		message = MessageInvalidCredentials
	}
	return goerrors.New(message, goerrors.CategoryAuth).
		WithTextCode(TextCodeInvalidCredentials).
		WithCode(goerrors.CodeUnauthorized)
}

// NewTooManyLoginAttemptsError is returned while an account cools down
func NewTooManyLoginAttemptsError() *goerrors.Error {
	return goerrors.New("The account is locked. Please wait and try again.", goerrors.CategoryRateLimit).
		WithTextCode(TextCodeTooManyLoginAttempts)
}

// NewNoSuchEntityError builds the not found error. Fields are rendered
// in the given order: key, value, key, value...
func NewNoSuchEntityError(fields ...any) *goerrors.Error {
	parts := make([]string, 0, len(fields)/2)
	meta := make(map[string]any, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		parts = append(parts, fmt.Sprintf("%s = %v", key, fields[i+1]))
		meta[key] = fields[i+1]
	}

	msg := "No such entity."
	if len(parts) > 0 {
		msg = "No such entity with " + strings.Join(parts, ", ")
	}

	return goerrors.New(msg, goerrors.CategoryNotFound).
		WithTextCode(TextCodeNoSuchEntity).
		WithCode(goerrors.CodeNotFound).
		WithMetadata(meta)
}

// NewInvalidTransitionError is returned for activation state violations
func NewInvalidTransitionError(message string, from, to ActivationState) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryConflict).
		WithTextCode(TextCodeInvalidTransition).
		WithCode(goerrors.CodeConflict).
		WithMetadata(map[string]any{"from": from, "to": to})
}

// NewKeyMismatchError is returned when a confirmation key does not match
func NewKeyMismatchError() *goerrors.Error {
	return goerrors.New(MessageKeyMismatch, goerrors.CategoryBadInput).
		WithTextCode(TextCodeKeyMismatch).
		WithCode(goerrors.CodeBadRequest)
}

// NewInputRequiredError is returned when a required field is missing
func NewInputRequiredError(field string) *goerrors.Error {
	msg := strings.ReplaceAll(RawMessageInputRequired, "%fieldName", field)
	return goerrors.New(msg, goerrors.CategoryBadInput).
		WithTextCode(TextCodeInputRequired).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{
			"field_name":  field,
			"raw_message": RawMessageInputRequired,
		})
}

// NewInvalidInputError is returned when a field carries an unsupported value
func NewInvalidInputError(field string, value any) *goerrors.Error {
	msg := strings.NewReplacer("%value", fmt.Sprint(value), "%fieldName", field).
		Replace(RawMessageInvalidInput)
	return goerrors.New(msg, goerrors.CategoryBadInput).
		WithTextCode(TextCodeInvalidInput).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{
			"field_name":  field,
			"value":       value,
			"raw_message": RawMessageInvalidInput,
		})
}

// NewTokenExpiredError is returned for stale, absent or ambiguous reset tokens
func NewTokenExpiredError() *goerrors.Error {
	return goerrors.New(MessageTokenExpired, goerrors.CategoryValidation).
		WithTextCode(TextCodeTokenExpired).
		WithCode(goerrors.CodeBadRequest)
}

// NewTokenMismatchError is returned when the stored reset token differs
func NewTokenMismatchError() *goerrors.Error {
	return goerrors.New(MessageTokenMismatch, goerrors.CategoryValidation).
		WithTextCode(TextCodeTokenMismatch).
		WithCode(goerrors.CodeBadRequest)
}

// NewEmailExistsError is returned when registering a taken email
func NewEmailExistsError(email string, websiteID int64) *goerrors.Error {
	return goerrors.New(MessageEmailExists, goerrors.CategoryConflict).
		WithTextCode(TextCodeEmailExists).
		WithCode(goerrors.CodeConflict).
		WithMetadata(map[string]any{"email": email, "website_id": websiteID})
}

// NewWeakPasswordError wraps password policy violations
func NewWeakPasswordError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithTextCode(TextCodeWeakPassword).
		WithCode(goerrors.CodeBadRequest)
}

// NewEmailNotConfirmedError is returned when confirmation is required and
// the account is still pending
func NewEmailNotConfirmedError() *goerrors.Error {
	return goerrors.New(MessageEmailNotConfirmed, goerrors.CategoryAuth).
		WithTextCode(TextCodeEmailNotConfirmed).
		WithCode(goerrors.CodeUnauthorized)
}

// IsInvalidCredentials reports login/password change failures
func IsInvalidCredentials(err error) bool { return hasTextCode(err, TextCodeInvalidCredentials) }

// IsTooManyLoginAttempts reports locked accounts
func IsTooManyLoginAttempts(err error) bool { return hasTextCode(err, TextCodeTooManyLoginAttempts) }

// IsNoSuchEntity reports missing customers or tokens
func IsNoSuchEntity(err error) bool { return hasTextCode(err, TextCodeNoSuchEntity) }

// IsInvalidTransition reports activation state violations
func IsInvalidTransition(err error) bool { return hasTextCode(err, TextCodeInvalidTransition) }

// IsKeyMismatch reports wrong confirmation keys
func IsKeyMismatch(err error) bool { return hasTextCode(err, TextCodeKeyMismatch) }

// IsInputRequired reports missing required fields
func IsInputRequired(err error) bool { return hasTextCode(err, TextCodeInputRequired) }

// IsInvalidInput reports unsupported field values
func IsInvalidInput(err error) bool { return hasTextCode(err, TextCodeInvalidInput) }

// IsTokenExpired reports stale or ambiguous reset tokens
func IsTokenExpired(err error) bool { return hasTextCode(err, TextCodeTokenExpired) }

// IsTokenMismatch reports reset tokens that do not match the stored value
func IsTokenMismatch(err error) bool { return hasTextCode(err, TextCodeTokenMismatch) }

// IsEmailExists reports duplicate registrations
func IsEmailExists(err error) bool { return hasTextCode(err, TextCodeEmailExists) }

// IsWeakPassword reports password policy violations
func IsWeakPassword(err error) bool { return hasTextCode(err, TextCodeWeakPassword) }

// IsEmailNotConfirmed reports logins of pending accounts
func IsEmailNotConfirmed(err error) bool { return hasTextCode(err, TextCodeEmailNotConfirmed) }

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

// passthrough keeps rich errors raised inside a transaction intact and
// wraps anything else as internal.
func passthrough(err error, message string) error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message)
}
