package graphql

import (
	"errors"

	"github.com/go-playground/validator/v10"

	verrors "github.com/jpalomar/vendorhub/internal/errors"
)

// Machine-readable error codes carried in extensions.code.
const (
	codeUnauthenticated   = "UNAUTHENTICATED"
	codeForbidden         = "FORBIDDEN"
	codeNotFound          = "NOT_FOUND"
	codeInsufficientStock = "INSUFFICIENT_STOCK"
	codeImmutable         = "IMMUTABLE"
	codeConflict          = "CONFLICT"
	codeAlreadyExists     = "ALREADY_EXISTS"
	codeInUse             = "IN_USE"
	codeBadUserInput      = "BAD_USER_INPUT"
	codeInternal          = "INTERNAL"
)

// apiError is a resolver error with a machine-readable code. It implements
// gqlerrors.ExtendedError, so the code ends up in extensions.code of the
// response error.
type apiError struct {
	message string
	code    string
}

func (e *apiError) Error() string {
	return e.message
}

func (e *apiError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

func badInput(message string) *apiError {
	return &apiError{message: message, code: codeBadUserInput}
}

// mapError translates domain errors into API errors. Unknown errors are
// masked as INTERNAL; their details belong in the server log, not the
// response.
func mapError(err error) error {
	var api *apiError
	if errors.As(err, &api) {
		return api
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return &apiError{message: validationErrs.Error(), code: codeBadUserInput}
	}

	code := codeInternal
	switch {
	case errors.Is(err, verrors.ErrUnauthenticated),
		errors.Is(err, verrors.ErrInvalidCredentials):
		code = codeUnauthenticated
	case errors.Is(err, verrors.ErrAccessDenied):
		code = codeForbidden
	case errors.Is(err, verrors.ErrVendorNotFound),
		errors.Is(err, verrors.ErrClientNotFound),
		errors.Is(err, verrors.ErrProductNotFound),
		errors.Is(err, verrors.ErrOrderNotFound):
		code = codeNotFound
	case errors.Is(err, verrors.ErrInsufficientStock):
		code = codeInsufficientStock
	case errors.Is(err, verrors.ErrOrderImmutable):
		code = codeImmutable
	case errors.Is(err, verrors.ErrConflict):
		code = codeConflict
	case errors.Is(err, verrors.ErrVendorExists),
		errors.Is(err, verrors.ErrClientExists):
		code = codeAlreadyExists
	case errors.Is(err, verrors.ErrProductInUse):
		code = codeInUse
	}
	if code == codeInternal {
		return &apiError{message: "internal server error", code: codeInternal}
	}
	return &apiError{message: err.Error(), code: code}
}
