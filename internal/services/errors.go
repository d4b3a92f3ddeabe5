package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for entities that callers may look up by external
// identifiers. Handlers map these to 404 responses.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrStudentNotFound      = errors.New("student not found")
	ErrProgramNotFound      = errors.New("program not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrSemesterNotFound     = errors.New("semester not found")
	ErrCourseNotInPlan      = errors.New("course is not part of the student's degree plan")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrApplicationNotFound  = errors.New("graduation application not found")

	ErrApplicationAlreadyExists = errors.New("graduation application already exists for this program")
	ErrUserAlreadyExists        = errors.New("user already exists")
	ErrUnauthenticated          = errors.New("authentication required")
)

// PermissionError indicates the authenticated user is not allowed to perform
// the requested action on a resource. Handlers map it to 403.
type PermissionError struct {
	UserID     string
	Resource   string
	ResourceID string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("user %s cannot %s %s %s: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
	}
	return fmt.Sprintf("user %s cannot %s %s %s", e.UserID, e.Action, e.Resource, e.ResourceID)
}

func NewPermissionError(userID, resource, resourceID, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		Resource:   resource,
		ResourceID: resourceID,
		Action:     action,
		Reason:     reason,
	}
}

// PrerequisiteError reports a course status change blocked by an unsatisfied
// prerequisite. Handlers map it to 422.
type PrerequisiteError struct {
	CourseID         uint
	CourseCode       string
	PrerequisiteID   uint
	PrerequisiteCode string
	Reason           string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("cannot schedule course %s: prerequisite %s %s", e.CourseCode, e.PrerequisiteCode, e.Reason)
}

// BusinessRuleError reports a domain rule violation that is neither a
// permission nor a prerequisite problem, such as an invalid application
// status transition.
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message}
}

// IsNotFound reports whether err is one of the service-level not-found
// sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrProgramNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrSemesterNotFound) ||
		errors.Is(err, ErrCourseNotInPlan) ||
		errors.Is(err, ErrCommentNotFound) ||
		errors.Is(err, ErrNotificationNotFound) ||
		errors.Is(err, ErrApplicationNotFound)
}

func IsPermissionDenied(err error) bool {
	var permErr *PermissionError
	return errors.As(err, &permErr)
}

func IsPrerequisiteViolation(err error) bool {
	var prereqErr *PrerequisiteError
	return errors.As(err, &prereqErr)
}

func IsBusinessRuleViolation(err error) bool {
	var ruleErr *BusinessRuleError
	return errors.As(err, &ruleErr)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrApplicationAlreadyExists) || errors.Is(err, ErrUserAlreadyExists)
}
