package utils

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/green-tasty/preorder-gateway/internal/errors"
	"github.com/green-tasty/preorder-gateway/internal/utils/response"
)

// ParseAndValidate decodes the body into dest and runs struct validation,
// answering the request itself on failure.
func ParseAndValidate(r *http.Request, w http.ResponseWriter, dest any, validate *validator.Validate) bool {

	if err := DecodeJSONBody(r, dest); err != nil {
		response.Error(w, apperrors.BadRequestError(err.Error()))

		return false
	}

	if err := ValidateStruct(validate, dest); err != nil {
		response.Error(w, apperrors.ValidationError(err.Error()))

		return false
	}

	return true
}
