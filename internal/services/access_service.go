package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
)

type accessService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAccessService(repo repositories.Repository, logger *slog.Logger) AccessService {
	return &accessService{
		repo:   repo,
		logger: logger,
	}
}

// RolesOf returns the user's current role assignments. Results are never
// cached so a revoked role stops working on the next request.
func (s *accessService) RolesOf(ctx context.Context, userID string) (models.RoleSet, error) {
	roles, err := s.repo.User().GetRoles(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	return roles, nil
}

func (s *accessService) IsAdvisorOf(ctx context.Context, advisorUserID string, studentID uint) (bool, error) {
	assigned, err := s.repo.Student().HasAdvisor(ctx, nil, advisorUserID, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to check advising relation: %w", err)
	}
	return assigned, nil
}

// CanAccessStudent decides whether the user may view the student's degree
// plan and its comment threads. Admins see everyone, advisors see their
// assigned advisees, students see only their own record.
func (s *accessService) CanAccessStudent(ctx context.Context, userID string, student *models.Student) (bool, error) {
	if student == nil {
		return false, nil
	}

	roles, err := s.RolesOf(ctx, userID)
	if err != nil {
		return false, err
	}

	if roles.Has(models.RoleAdmin) {
		return true, nil
	}

	if roles.Has(models.RoleAdvisor) {
		assigned, err := s.IsAdvisorOf(ctx, userID, student.ID)
		if err != nil {
			return false, err
		}
		if assigned {
			return true, nil
		}
	}

	if roles.Has(models.RoleStudent) && student.UserID == userID {
		return true, nil
	}

	return false, nil
}
