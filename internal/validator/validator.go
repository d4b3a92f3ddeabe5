package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
)

// Validator bundles struct validation and business rule validation.
type Validator struct {
	validate *validator.Validate
	business *BusinessValidator
}

// New creates a validator with all custom rules registered.
func New() *Validator {
	v := validator.New()
	registerCustomRules(v)

	return &Validator{
		validate: v,
		business: NewBusinessValidator(v),
	}
}

// Validate runs struct-tag validation and converts failures to the service
// error shape.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// GetBusinessValidator returns the business rule validator.
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

func registerCustomRules(v *validator.Validate) {
	// Closed enumerations resolved at the boundary.
	_ = v.RegisterValidation("course_status", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseCourseStatus(fl.Field().String())
		return ok
	})

	_ = v.RegisterValidation("application_status", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseApplicationStatus(fl.Field().String())
		return ok
	})

	_ = v.RegisterValidation("role_name", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseRoleName(fl.Field().String())
		return ok
	})
}

// ===== VALIDATION ERRORS =====

// ValidationError represents one failed field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// ToValidationErrors converts go-playground validation failures.
func ToValidationErrors(err error) ValidationErrors {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "", Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageForTag(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "course_status":
		return "must be one of Unplanned, Planned, In Progress, Completed"
	case "application_status":
		return "must be a valid application status"
	case "role_name":
		return "must be one of admin, advisor, accounting, student"
	default:
		return fmt.Sprintf("failed validation rule %q", fe.Tag())
	}
}
