package models

import (
	"inkwell/cms/internal/apperr"
)

// errRequired carries no operation name; the repository layer annotates
// the error with the operation that triggered validation.
func errRequired(field string) error {
	return apperr.Validationf("", "%s is required", field)
}
