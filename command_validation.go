package account

import (
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// validationError turns ozzo field errors into a rich error carrying one
// metadata entry per field
func validationError(err error, message string) error {
	if err == nil {
		return nil
	}

	meta := map[string]any{}
	if errs, ok := err.(validation.Errors); ok {
		for field, fieldErr := range errs {
			if fieldErr != nil {
				meta[field] = fieldErr.Error()
			}
		}
	} else {
		meta["error"] = err.Error()
	}

	return goerrors.New(message, goerrors.CategoryValidation).
		WithTextCode(TextCodeInvalidInput).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(meta)
}
