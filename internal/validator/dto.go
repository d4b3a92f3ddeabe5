package validator

// UpdateCourseStatusRequest is the body of the plan mutation endpoint.
type UpdateCourseStatusRequest struct {
	CourseID   uint   `json:"course_id" validate:"required"`
	Status     string `json:"status" validate:"required,course_status"`
	SemesterID *uint  `json:"semester_id"`
	ProgramID  uint   `json:"program_id" validate:"required"`
}

// CreateCommentRequest posts a new comment on a (program, student) thread.
type CreateCommentRequest struct {
	ProgramID       uint   `json:"program_id" validate:"required"`
	StudentSchoolID string `json:"student_school_id" validate:"required,max=32"`
	Text            string `json:"text" validate:"required,max=2000"`
}

// UpdateCommentRequest edits an existing comment's text.
type UpdateCommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// GraduationApplyRequest creates a student's graduation application.
type GraduationApplyRequest struct {
	ProgramID uint `json:"program_id" validate:"required"`
}

// UpdateApplicationStatusRequest advances an application's status.
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,application_status"`
}

// CreateUserRequest provisions a user with initial role assignments.
type CreateUserRequest struct {
	ID       string   `json:"id" validate:"required,max=255"`
	FullName string   `json:"full_name" validate:"required,max=100"`
	Email    string   `json:"email" validate:"required,email,max=255"`
	Phone    *string  `json:"phone" validate:"omitempty,max=32"`
	Roles    []string `json:"roles" validate:"omitempty,dive,role_name"`
}

// RoleRequest assigns or removes a single role.
type RoleRequest struct {
	Role string `json:"role" validate:"required,role_name"`
}

// AdvisingRelationRequest creates or removes an advisor-student edge.
type AdvisingRelationRequest struct {
	AdvisorUserID   string `json:"advisor_user_id" validate:"required,max=255"`
	StudentSchoolID string `json:"student_school_id" validate:"required,max=32"`
}
