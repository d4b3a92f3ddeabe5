package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
)

// BusinessValidator layers domain rules on top of struct-tag validation.
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator(validate *validator.Validate) *BusinessValidator {
	return &BusinessValidator{validate: validate}
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateCourseStatusUpdate checks the input-level rules of a plan mutation:
// the status must parse, and Planned requires a semester. In Progress and
// Completed accept a missing semester here; the store keeps whatever was
// already persisted for those.
func (bv *BusinessValidator) ValidateCourseStatusUpdate(req *UpdateCourseStatusRequest) ValidationErrors {
	errors := bv.Validate(req)

	status, ok := models.ParseCourseStatus(req.Status)
	if !ok {
		// Already reported by the course_status tag.
		return errors
	}

	if status == models.StatusPlanned && req.SemesterID == nil {
		errors = append(errors, *NewValidationError("semester_id", "is required when status is Planned", nil))
	}

	return errors
}

// ValidateCommentCreate checks a comment body beyond struct tags: text must
// survive trimming.
func (bv *BusinessValidator) ValidateCommentCreate(req *CreateCommentRequest) ValidationErrors {
	errors := bv.Validate(req)

	if strings.TrimSpace(req.Text) == "" {
		errors = append(errors, *NewValidationError("text", "must not be empty", req.Text))
	}

	return errors
}

// ValidateCommentUpdate applies the same text rules to edits.
func (bv *BusinessValidator) ValidateCommentUpdate(req *UpdateCommentRequest) ValidationErrors {
	errors := bv.Validate(req)

	if strings.TrimSpace(req.Text) == "" {
		errors = append(errors, *NewValidationError("text", "must not be empty", req.Text))
	}

	return errors
}
