package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	// cellNamePattern accepts SPICE identifiers: no whitespace, no '=' and
	// no quoting or grouping characters
	cellNamePattern = regexp.MustCompile(`^[^\s='"{}()]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// the error for a cell name is reported by ValidateCellName
	_ = v.RegisterValidation("cellname", func(fl validator.FieldLevel) bool {
		return ValidateCellName(fl.Field().String()) == nil
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateStruct validates a value against its validate struct tags and
// reports the first failure with the field's YAML name.
func ValidateStruct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateCellName checks that a name can appear in a SPICE card
func ValidateCellName(name string) error {
	if name == "" {
		return errors.New("cell name cannot be empty")
	}
	if !cellNamePattern.MatchString(name) {
		return fmt.Errorf("cell name %q contains whitespace or reserved characters", name)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := e.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		case "cellname":
			return fmt.Errorf("%s: %w", field, ValidateCellName(fmt.Sprint(e.Value())))
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}
