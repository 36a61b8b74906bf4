package smcore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateInput checks a generated argument struct against its validate tags
// (required members carry `validate:"required"`). Violations are flattened
// into a single error naming every offending field.
func ValidateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	fields := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", ve.Field(), ve.Tag()))
	}
	return fmt.Errorf("invalid input: %s", strings.Join(fields, ", "))
}
