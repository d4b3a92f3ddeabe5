package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
	"github.com/CAPS-2026/degreeplan-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	access    AccessService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, access AccessService, logger *slog.Logger, v *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		access:    access,
		logger:    logger,
		validator: v,
	}
}

func (s *userService) Create(ctx context.Context, actorID string, req *CreateUserRequest) (*UserResponse, error) {
	if err := s.requireAdmin(ctx, actorID, "create"); err != nil {
		return nil, err
	}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	existing, err := s.repo.User().GetByID(ctx, nil, req.ID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	user := &models.User{
		ID:       req.ID,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.User().Create(ctx, nil, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		for _, raw := range req.Roles {
			role, _ := models.ParseRoleName(raw)
			if err := txRepo.User().AssignRole(ctx, nil, user.ID, role); err != nil {
				return fmt.Errorf("failed to assign role %s: %w", role, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created", "user_id", user.ID, "created_by", actorID, "roles", req.Roles)

	return s.toUserResponse(ctx, user)
}

func (s *userService) Get(ctx context.Context, actorID, userID string) (*UserResponse, error) {
	// Users may always read their own record; everything else is admin only.
	if actorID != userID {
		if err := s.requireAdmin(ctx, actorID, "read"); err != nil {
			return nil, err
		}
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return s.toUserResponse(ctx, user)
}

func (s *userService) List(ctx context.Context, actorID string, req *ListUsersRequest) (*UserListResponse, error) {
	if err := s.requireAdmin(ctx, actorID, "list"); err != nil {
		return nil, err
	}

	filters, page, size := toUserFilters(req)
	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		resp, err := s.toUserResponse(ctx, user)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}

	return &UserListResponse{
		Users: responses,
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}

func (s *userService) Delete(ctx context.Context, actorID, userID string) error {
	if err := s.requireAdmin(ctx, actorID, "delete"); err != nil {
		return err
	}
	if actorID == userID {
		return NewBusinessRuleError("self_delete", "admins cannot delete their own account")
	}

	if err := s.repo.User().Delete(ctx, nil, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", "user_id", userID, "deleted_by", actorID)
	return nil
}

// ===== ROLE MANAGEMENT =====

func (s *userService) AssignRole(ctx context.Context, actorID, userID string, req *RoleRequest) error {
	role, err := s.authorizeRoleChange(ctx, actorID, userID, req)
	if err != nil {
		return err
	}

	if err := s.repo.User().AssignRole(ctx, nil, userID, role); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	s.logger.Info("Role assigned", "user_id", userID, "role", role, "assigned_by", actorID)
	return nil
}

func (s *userService) RemoveRole(ctx context.Context, actorID, userID string, req *RoleRequest) error {
	role, err := s.authorizeRoleChange(ctx, actorID, userID, req)
	if err != nil {
		return err
	}

	if err := s.repo.User().RemoveRole(ctx, nil, userID, role); err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}

	s.logger.Info("Role removed", "user_id", userID, "role", role, "removed_by", actorID)
	return nil
}

// ===== ADVISING RELATIONS =====

func (s *userService) CreateAdvisingRelation(ctx context.Context, actorID string, req *AdvisingRelationRequest) error {
	advisorID, studentID, err := s.resolveAdvisingPair(ctx, actorID, req)
	if err != nil {
		return err
	}

	if err := s.repo.Student().CreateAdvisingRelation(ctx, nil, advisorID, studentID); err != nil {
		return fmt.Errorf("failed to create advising relation: %w", err)
	}

	s.logger.Info("Advising relation created", "advisor_id", advisorID, "student_id", studentID, "created_by", actorID)
	return nil
}

func (s *userService) DeleteAdvisingRelation(ctx context.Context, actorID string, req *AdvisingRelationRequest) error {
	advisorID, studentID, err := s.resolveAdvisingPair(ctx, actorID, req)
	if err != nil {
		return err
	}

	if err := s.repo.Student().DeleteAdvisingRelation(ctx, nil, advisorID, studentID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete advising relation: %w", err)
	}

	s.logger.Info("Advising relation deleted", "advisor_id", advisorID, "student_id", studentID, "deleted_by", actorID)
	return nil
}

// ===== HELPERS =====

func (s *userService) requireAdmin(ctx context.Context, actorID, action string) error {
	roles, err := s.access.RolesOf(ctx, actorID)
	if err != nil {
		return err
	}
	if !roles.Has(models.RoleAdmin) {
		return NewPermissionError(actorID, "user", "", action, "requires admin role")
	}
	return nil
}

func (s *userService) authorizeRoleChange(ctx context.Context, actorID, userID string, req *RoleRequest) (models.RoleName, error) {
	if err := s.requireAdmin(ctx, actorID, "manage_roles"); err != nil {
		return "", err
	}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return "", errs
	}
	role, _ := models.ParseRoleName(req.Role)

	if _, err := s.repo.User().GetByID(ctx, nil, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	return role, nil
}

func (s *userService) resolveAdvisingPair(ctx context.Context, actorID string, req *AdvisingRelationRequest) (string, uint, error) {
	if err := s.requireAdmin(ctx, actorID, "manage_advising"); err != nil {
		return "", 0, err
	}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return "", 0, errs
	}

	advisorRoles, err := s.repo.User().GetRoles(ctx, nil, req.AdvisorUserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", 0, ErrUserNotFound
		}
		return "", 0, fmt.Errorf("failed to load advisor: %w", err)
	}
	if !advisorRoles.Has(models.RoleAdvisor) {
		return "", 0, NewBusinessRuleError("advisor_role_required", "user does not hold the advisor role")
	}

	student, err := s.repo.Student().GetBySchoolID(ctx, nil, req.StudentSchoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", 0, ErrStudentNotFound
		}
		return "", 0, fmt.Errorf("failed to resolve student: %w", err)
	}

	return req.AdvisorUserID, student.ID, nil
}

func (s *userService) toUserResponse(ctx context.Context, user *models.User) (*UserResponse, error) {
	roles, err := s.repo.User().GetRoles(ctx, nil, user.ID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	names := make([]models.RoleName, 0, len(roles))
	for _, role := range []models.RoleName{models.RoleAdmin, models.RoleAdvisor, models.RoleAccounting, models.RoleStudent} {
		if roles.Has(role) {
			names = append(names, role)
		}
	}
	return &UserResponse{User: user, Roles: names}, nil
}
