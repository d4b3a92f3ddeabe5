package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/CAPS-2026/degreeplan-service/internal/cache"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	user         repositories.UserRepository
	student      repositories.StudentRepository
	course       repositories.CourseRepository
	program      repositories.ProgramRepository
	semester     repositories.SemesterRepository
	degreePlan   repositories.DegreePlanRepository
	comment      repositories.CommentRepository
	notification repositories.NotificationRepository
	graduation   repositories.GraduationRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cache.NewCacheManager(config.RedisClient),
	}

	// Directory repositories cache reference data; identity and planning
	// repositories always hit the store.
	repo.user = NewUserPostgreSQL(config.DB)
	repo.student = NewStudentPostgreSQL(config.DB)
	repo.course = NewCoursePostgreSQL(config.DB, config.RedisClient)
	repo.program = NewProgramPostgreSQL(config.DB, config.RedisClient)
	repo.semester = NewSemesterPostgreSQL(config.DB, config.RedisClient)
	repo.degreePlan = NewDegreePlanPostgreSQL(config.DB)
	repo.comment = NewCommentPostgreSQL(config.DB)
	repo.notification = NewNotificationPostgreSQL(config.DB)
	repo.graduation = NewGraduationPostgreSQL(config.DB)

	return repo
}

func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

func (r *PostgreSQLRepository) Student() repositories.StudentRepository {
	return r.student
}

func (r *PostgreSQLRepository) Course() repositories.CourseRepository {
	return r.course
}

func (r *PostgreSQLRepository) Program() repositories.ProgramRepository {
	return r.program
}

func (r *PostgreSQLRepository) Semester() repositories.SemesterRepository {
	return r.semester
}

func (r *PostgreSQLRepository) DegreePlan() repositories.DegreePlanRepository {
	return r.degreePlan
}

func (r *PostgreSQLRepository) Comment() repositories.CommentRepository {
	return r.comment
}

func (r *PostgreSQLRepository) Notification() repositories.NotificationRepository {
	return r.notification
}

func (r *PostgreSQLRepository) Graduation() repositories.GraduationRepository {
	return r.graduation
}

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}

		txRepo.user = NewUserPostgreSQL(tx)
		txRepo.student = NewStudentPostgreSQL(tx)
		txRepo.course = NewCoursePostgreSQL(tx, r.redisClient)
		txRepo.program = NewProgramPostgreSQL(tx, r.redisClient)
		txRepo.semester = NewSemesterPostgreSQL(tx, r.redisClient)
		txRepo.degreePlan = NewDegreePlanPostgreSQL(tx)
		txRepo.comment = NewCommentPostgreSQL(tx)
		txRepo.notification = NewNotificationPostgreSQL(tx)
		txRepo.graduation = NewGraduationPostgreSQL(tx)

		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// ===== REPOSITORY MANAGER =====

type postgresRepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a lifecycle manager over the postgres repository.
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &postgresRepositoryManager{config: config}
}

func (m *postgresRepositoryManager) Initialize() error {
	if m.config.DB == nil {
		return fmt.Errorf("database handle is required")
	}
	m.repo = NewPostgreSQLRepository(m.config)
	return nil
}

func (m *postgresRepositoryManager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *postgresRepositoryManager) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return m.repo.Ping(ctx)
}

func (m *postgresRepositoryManager) Shutdown(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	return m.repo.Close()
}
