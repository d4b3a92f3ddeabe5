package repositories

import "context"

// Repository aggregates every sub-repository behind one handle so services can
// be wired with a single dependency and share transactions.
type Repository interface {
	// Identity domain
	User() UserRepository
	Student() StudentRepository

	// Directory domain (read-only reference data)
	Course() CourseRepository
	Program() ProgramRepository
	Semester() SemesterRepository

	// Planning domain
	DegreePlan() DegreePlanRepository

	// Advising domain
	Comment() CommentRepository
	Notification() NotificationRepository

	// Graduation domain
	Graduation() GraduationRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
