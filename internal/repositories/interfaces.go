package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role   *models.RoleName `json:"role"`
	Query  string           `json:"query"` // matches name or email
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type GraduationFilters struct {
	Status    *models.ApplicationStatus `json:"status"`
	ProgramID *uint                     `json:"program_id"`
	// StudentIDs restricts results to the given students. Used by the advisor
	// path as one batched advisee query instead of a per-row access check.
	StudentIDs []uint `json:"student_ids"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

type NotificationFilters struct {
	UnreadOnly bool `json:"unread_only"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
}

// ===== IDENTITY DOMAIN =====

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	ListByRole(ctx context.Context, tx *gorm.DB, role models.RoleName) ([]*models.User, error)

	// GetRoles loads the role assignments for one user, fresh from the store.
	GetRoles(ctx context.Context, tx *gorm.DB, userID string) (models.RoleSet, error)

	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	AssignRole(ctx context.Context, tx *gorm.DB, userID string, role models.RoleName) error
	RemoveRole(ctx context.Context, tx *gorm.DB, userID string, role models.RoleName) error
}

type StudentRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error)
	GetBySchoolID(ctx context.Context, tx *gorm.DB, schoolID string) (*models.Student, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Student, error)

	// HasAdvisor reports whether an advising edge exists. A missing edge is
	// false, never an error.
	HasAdvisor(ctx context.Context, tx *gorm.DB, advisorUserID string, studentID uint) (bool, error)
	AdvisorsOf(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.User, error)
	AdviseeIDs(ctx context.Context, tx *gorm.DB, advisorUserID string) ([]uint, error)

	CreateAdvisingRelation(ctx context.Context, tx *gorm.DB, advisorUserID string, studentID uint) error
	DeleteAdvisingRelation(ctx context.Context, tx *gorm.DB, advisorUserID string, studentID uint) error
}

// ===== DIRECTORY DOMAIN =====

type CourseRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	Prerequisites(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Course, error)
	Offerings(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.SemesterType, error)
	CertificateOverlaps(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Program, error)
}

type ProgramRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Program, error)
	TotalRequiredCredits(ctx context.Context, tx *gorm.DB, programID uint) (int, error)
	Requirements(ctx context.Context, tx *gorm.DB, programID uint) ([]*models.Requirement, error)
}

type SemesterRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Semester, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Semester, error)
}

// ===== PLANNING DOMAIN =====

type DegreePlanRepository interface {
	// PlanFor returns the student's entries for a program ordered by semester
	// start date ascending; unscheduled entries sort last.
	PlanFor(ctx context.Context, tx *gorm.DB, studentID, programID uint) ([]*models.DegreePlanEntry, error)

	StatusOf(ctx context.Context, tx *gorm.DB, studentID, courseID, programID uint) (*models.DegreePlanEntry, error)

	// SetStatus is the sole mutator; it updates exactly one existing row and
	// returns the updated entry, or a not-found error when no row matches.
	SetStatus(ctx context.Context, tx *gorm.DB, studentID, courseID, programID uint, status models.CourseStatus, semesterID *uint) (*models.DegreePlanEntry, error)
}

// ===== ADVISING DOMAIN =====

type CommentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, comment *models.Comment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Comment, error)
	Update(ctx context.Context, tx *gorm.DB, comment *models.Comment) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// ListForThread returns the comments on one (program, student) pair
	// ordered by creation time ascending.
	ListForThread(ctx context.Context, tx *gorm.DB, programID, studentID uint) ([]*models.Comment, error)
}

type NotificationRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, notifications []*models.Notification) error
	ListForRecipient(ctx context.Context, tx *gorm.DB, recipientID string, filters NotificationFilters) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id uint, recipientID string) error
	UnreadCount(ctx context.Context, tx *gorm.DB, recipientID string) (int64, error)
}

// ===== GRADUATION DOMAIN =====

type GraduationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, application *models.GraduationApplication) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.GraduationApplication, error)
	GetByStudentAndProgram(ctx context.Context, tx *gorm.DB, studentID, programID uint) (*models.GraduationApplication, error)
	List(ctx context.Context, tx *gorm.DB, filters GraduationFilters) ([]*models.GraduationApplication, int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.ApplicationStatus) (*models.GraduationApplication, error)
}
