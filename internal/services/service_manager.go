package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/CAPS-2026/degreeplan-service/internal/events"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
	"github.com/CAPS-2026/degreeplan-service/internal/validator"
)

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator

	// Service instances
	accessService     AccessService
	degreePlanService DegreePlanService
	commentService    CommentService
	graduationService GraduationService
	userService       UserService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) ServiceManager {
	return &serviceManager{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.accessService = NewAccessService(sm.repo, sm.logger)
	sm.degreePlanService = NewDegreePlanService(sm.repo, sm.accessService, sm.publisher, sm.logger, sm.validator)
	sm.commentService = NewCommentService(sm.repo, sm.accessService, sm.publisher, sm.logger, sm.validator)
	sm.graduationService = NewGraduationService(sm.repo, sm.accessService, sm.publisher, sm.logger, sm.validator)
	sm.userService = NewUserService(sm.repo, sm.accessService, sm.logger, sm.validator)

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters

func (sm *serviceManager) Access() AccessService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.accessService
}

func (sm *serviceManager) DegreePlan() DegreePlanService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.degreePlanService
}

func (sm *serviceManager) Comment() CommentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.commentService
}

func (sm *serviceManager) Graduation() GraduationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.graduationService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

// Lifecycle

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}
	return sm.repo.Ping(ctx)
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	return nil
}
