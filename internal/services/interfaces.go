package services

import (
	"context"
	"time"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
	"github.com/CAPS-2026/degreeplan-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type UpdateCourseStatusRequest = validator.UpdateCourseStatusRequest
type CreateCommentRequest = validator.CreateCommentRequest
type UpdateCommentRequest = validator.UpdateCommentRequest
type GraduationApplyRequest = validator.GraduationApplyRequest
type UpdateApplicationStatusRequest = validator.UpdateApplicationStatusRequest
type CreateUserRequest = validator.CreateUserRequest
type RoleRequest = validator.RoleRequest
type AdvisingRelationRequest = validator.AdvisingRelationRequest

// PlanView selects how a degree plan is grouped in responses.
type PlanView string

const (
	PlanViewSemester     PlanView = "semester"
	PlanViewRequirements PlanView = "requirements"
)

// PrerequisiteStatus reports a single prerequisite of a plan entry together
// with its current standing in the same student's plan.
type PrerequisiteStatus struct {
	CourseID   uint                `json:"course_id"`
	Code       string              `json:"code"`
	Name       string              `json:"name"`
	Status     models.CourseStatus `json:"status"`
	SemesterID *uint               `json:"semester_id,omitempty"`
	Satisfied  bool                `json:"satisfied"`
}

type PlanEntryResponse struct {
	*models.DegreePlanEntry
	Prerequisites       []PrerequisiteStatus `json:"prerequisites"`
	Offerings           []models.SemesterType `json:"offered_in,omitempty"`
	CertificateOverlaps []CertificateOverlap  `json:"certificate_overlaps,omitempty"`
}

// CertificateOverlap marks a plan course that also counts toward a
// certificate program.
type CertificateOverlap struct {
	ProgramID   uint   `json:"program_id"`
	ProgramName string `json:"program_name"`
}

type SemesterGroup struct {
	Semester *models.Semester     `json:"semester"`
	Entries  []*PlanEntryResponse `json:"entries"`
}

type RequirementGroup struct {
	Requirement *models.Requirement  `json:"requirement"`
	Entries     []*PlanEntryResponse `json:"entries"`
	Children    []*RequirementGroup  `json:"children,omitempty"`
}

type DegreePlanResponse struct {
	Student              *models.Student      `json:"student"`
	Program              *models.Program      `json:"program"`
	View                 PlanView             `json:"view"`
	TotalRequiredCredits int64                `json:"total_required_credits"`
	CompletedCredits     int64                `json:"completed_credits"`
	Entries              []*PlanEntryResponse `json:"entries,omitempty"`
	Semesters            []*SemesterGroup     `json:"semesters,omitempty"`
	Requirements         []*RequirementGroup  `json:"requirements,omitempty"`
	CanEdit              bool                 `json:"can_edit"`
}

type CommentResponse struct {
	*models.Comment
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
	UnreadCount   int64                  `json:"unread_count"`
	Page          int                    `json:"page"`
	Size          int                    `json:"size"`
}

type ApplicationResponse struct {
	*models.GraduationApplication
	CanUpdateStatus bool `json:"can_update_status"`
}

type ApplicationListResponse struct {
	Applications []*ApplicationResponse `json:"applications"`
	Total        int64                  `json:"total"`
	Page         int                    `json:"page"`
	Size         int                    `json:"size"`
}

type ListApplicationsRequest struct {
	Status    *models.ApplicationStatus
	ProgramID *uint
	Page      int
	PageSize  int
}

type ListNotificationsRequest struct {
	UnreadOnly bool
	Page       int
	PageSize   int
}

type UserResponse struct {
	*models.User
	Roles []models.RoleName `json:"roles"`
}

type UserListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

type ListUsersRequest struct {
	Role     *models.RoleName
	Query    string
	Page     int
	PageSize int
}

// ExportResult carries a rendered spreadsheet ready to stream to the client.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
	GeneratedAt time.Time
}

// ===== SERVICE INTERFACES =====

// AccessService resolves what the authenticated user may see and do. Role and
// advising lookups always go to the database so revocations apply on the next
// request.
type AccessService interface {
	RolesOf(ctx context.Context, userID string) (models.RoleSet, error)
	IsAdvisorOf(ctx context.Context, advisorUserID string, studentID uint) (bool, error)
	CanAccessStudent(ctx context.Context, userID string, student *models.Student) (bool, error)
}

type DegreePlanService interface {
	GetPlan(ctx context.Context, userID, schoolStudentID string, programID uint, view PlanView) (*DegreePlanResponse, error)
	UpdateCourseStatus(ctx context.Context, userID, schoolStudentID string, req *UpdateCourseStatusRequest) (*PlanEntryResponse, error)
}

type CommentService interface {
	Create(ctx context.Context, userID string, req *CreateCommentRequest) (*CommentResponse, error)
	Update(ctx context.Context, userID string, commentID uint, req *UpdateCommentRequest) (*CommentResponse, error)
	Delete(ctx context.Context, userID string, commentID uint) error
	ListForThread(ctx context.Context, userID, schoolStudentID string, programID uint) ([]*CommentResponse, error)

	ListNotifications(ctx context.Context, userID string, req *ListNotificationsRequest) (*NotificationListResponse, error)
	MarkNotificationRead(ctx context.Context, userID string, notificationID uint) error
}

type GraduationService interface {
	Apply(ctx context.Context, userID string, req *GraduationApplyRequest) (*ApplicationResponse, error)
	List(ctx context.Context, userID string, req *ListApplicationsRequest) (*ApplicationListResponse, error)
	UpdateStatus(ctx context.Context, userID string, applicationID uint, req *UpdateApplicationStatusRequest) (*ApplicationResponse, error)
	Export(ctx context.Context, userID string, req *ListApplicationsRequest) (*ExportResult, error)
}

type UserService interface {
	Create(ctx context.Context, actorID string, req *CreateUserRequest) (*UserResponse, error)
	Get(ctx context.Context, actorID, userID string) (*UserResponse, error)
	List(ctx context.Context, actorID string, req *ListUsersRequest) (*UserListResponse, error)
	Delete(ctx context.Context, actorID, userID string) error

	AssignRole(ctx context.Context, actorID, userID string, req *RoleRequest) error
	RemoveRole(ctx context.Context, actorID, userID string, req *RoleRequest) error

	CreateAdvisingRelation(ctx context.Context, actorID string, req *AdvisingRelationRequest) error
	DeleteAdvisingRelation(ctx context.Context, actorID string, req *AdvisingRelationRequest) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Access() AccessService
	DegreePlan() DegreePlanService
	Comment() CommentService
	Graduation() GraduationService
	User() UserService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// normalizePage clamps pagination inputs and converts them to limit/offset.
func normalizePage(page, pageSize int) (limit, offset int, normPage, normSize int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return pageSize, (page - 1) * pageSize, page, pageSize
}

// toUserFilters converts a list request into repository filters.
func toUserFilters(req *ListUsersRequest) (repositories.UserFilters, int, int) {
	if req == nil {
		req = &ListUsersRequest{}
	}
	limit, offset, page, size := normalizePage(req.Page, req.PageSize)
	return repositories.UserFilters{
		Role:   req.Role,
		Query:  req.Query,
		Limit:  limit,
		Offset: offset,
	}, page, size
}
