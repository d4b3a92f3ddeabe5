package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CAPS-2026/degreeplan-service/internal/events"
	"github.com/CAPS-2026/degreeplan-service/internal/export"
	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
	"github.com/CAPS-2026/degreeplan-service/internal/validator"
)

type graduationService struct {
	repo      repositories.Repository
	access    AccessService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewGraduationService(repo repositories.Repository, access AccessService, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) GraduationService {
	return &graduationService{
		repo:      repo,
		access:    access,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// Apply creates the requester's application row for a program. The row starts
// at "Not Applied"; staff advance the status afterwards.
func (s *graduationService) Apply(ctx context.Context, userID string, req *GraduationApplyRequest) (*ApplicationResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	roles, err := s.access.RolesOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !roles.Has(models.RoleStudent) {
		return nil, NewPermissionError(userID, "graduation_application", "", "create", "only students may apply for graduation")
	}

	student, err := s.repo.Student().GetByUserID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to resolve student: %w", err)
	}

	if _, err := s.repo.Program().GetByID(ctx, nil, req.ProgramID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to resolve program: %w", err)
	}

	existing, err := s.repo.Graduation().GetByStudentAndProgram(ctx, nil, student.ID, req.ProgramID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if existing != nil {
		return nil, ErrApplicationAlreadyExists
	}

	application := &models.GraduationApplication{
		StudentID:       student.ID,
		ProgramID:       req.ProgramID,
		Status:          models.ApplicationNotApplied,
		AppliedAt:       time.Now().UTC(),
		StatusUpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Graduation().Create(ctx, nil, application); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.logger.Info("Graduation application created",
		"application_id", application.ID,
		"student_id", student.ID,
		"program_id", req.ProgramID)

	return &ApplicationResponse{GraduationApplication: application}, nil
}

func (s *graduationService) List(ctx context.Context, userID string, req *ListApplicationsRequest) (*ApplicationListResponse, error) {
	filters, page, size, err := s.buildListFilters(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	applications, total, err := s.repo.Graduation().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	responses := make([]*ApplicationResponse, 0, len(applications))
	for _, application := range applications {
		responses = append(responses, &ApplicationResponse{
			GraduationApplication: application,
			CanUpdateStatus:       true,
		})
	}

	return &ApplicationListResponse{
		Applications: responses,
		Total:        total,
		Page:         page,
		Size:         size,
	}, nil
}

func (s *graduationService) UpdateStatus(ctx context.Context, userID string, applicationID uint, req *UpdateApplicationStatusRequest) (*ApplicationResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}
	newStatus, _ := models.ParseApplicationStatus(req.Status)

	application, err := s.repo.Graduation().GetByID(ctx, nil, applicationID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	roles, err := s.staffRoles(ctx, userID, "update")
	if err != nil {
		return nil, err
	}
	// Advisors may only act on their own advisees.
	if !roles.Has(models.RoleAdmin) && !roles.Has(models.RoleAccounting) {
		assigned, err := s.access.IsAdvisorOf(ctx, userID, application.StudentID)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, NewPermissionError(userID, "graduation_application", fmt.Sprintf("%d", applicationID), "update", "advisors may only update applications of their advisees")
		}
	}

	updated, err := s.repo.Graduation().UpdateStatus(ctx, nil, applicationID, newStatus)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	s.logger.Info("Graduation application status updated",
		"application_id", applicationID,
		"status", newStatus,
		"updated_by", userID)

	s.publishApplicationEvent(ctx, updated, userID)

	return &ApplicationResponse{GraduationApplication: updated, CanUpdateStatus: true}, nil
}

// Export renders the applications visible to the requester into an xlsx
// workbook. The same role gate as List applies.
func (s *graduationService) Export(ctx context.Context, userID string, req *ListApplicationsRequest) (*ExportResult, error) {
	if req == nil {
		req = &ListApplicationsRequest{}
	}
	// Exports are unpaginated within the repository's hard cap.
	req.Page = 1
	req.PageSize = 200

	filters, _, _, err := s.buildListFilters(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	applications, _, err := s.repo.Graduation().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications for export: %w", err)
	}

	data, err := export.ApplicationsWorkbook(applications)
	if err != nil {
		return nil, fmt.Errorf("failed to render export: %w", err)
	}

	now := time.Now().UTC()
	return &ExportResult{
		FileName:    fmt.Sprintf("graduation-applications-%s.xlsx", now.Format("2006-01-02")),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        data,
		GeneratedAt: now,
	}, nil
}

// ===== HELPERS =====

// staffRoles enforces the shared role gate for application listing and status
// changes: admin, accounting, or advisor.
func (s *graduationService) staffRoles(ctx context.Context, userID, action string) (models.RoleSet, error) {
	roles, err := s.access.RolesOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !roles.Has(models.RoleAdmin) && !roles.Has(models.RoleAccounting) && !roles.Has(models.RoleAdvisor) {
		return nil, NewPermissionError(userID, "graduation_application", "", action, "requires admin, accounting, or advisor role")
	}
	return roles, nil
}

func (s *graduationService) buildListFilters(ctx context.Context, userID string, req *ListApplicationsRequest) (repositories.GraduationFilters, int, int, error) {
	if req == nil {
		req = &ListApplicationsRequest{}
	}

	roles, err := s.staffRoles(ctx, userID, "list")
	if err != nil {
		return repositories.GraduationFilters{}, 0, 0, err
	}

	limit, offset, page, size := normalizePage(req.Page, req.PageSize)
	filters := repositories.GraduationFilters{
		Status:    req.Status,
		ProgramID: req.ProgramID,
		Limit:     limit,
		Offset:    offset,
	}

	// Advisors see only their advisees, resolved as one batched query.
	if !roles.Has(models.RoleAdmin) && !roles.Has(models.RoleAccounting) {
		adviseeIDs, err := s.repo.Student().AdviseeIDs(ctx, nil, userID)
		if err != nil {
			return repositories.GraduationFilters{}, 0, 0, fmt.Errorf("failed to resolve advisees: %w", err)
		}
		if len(adviseeIDs) == 0 {
			// No advisees means an empty result, not an error. An impossible
			// ID keeps the query shape uniform.
			adviseeIDs = []uint{0}
		}
		filters.StudentIDs = adviseeIDs
	}

	return filters, page, size, nil
}

func (s *graduationService) publishApplicationEvent(ctx context.Context, application *models.GraduationApplication, updatedBy string) {
	event, err := events.NewEvent(events.TypeApplicationUpdated, events.ApplicationEvent{
		ApplicationID: application.ID,
		StudentID:     application.StudentID,
		ProgramID:     application.ProgramID,
		Status:        string(application.Status),
		UpdatedBy:     updatedBy,
	})
	if err != nil {
		s.logger.Error("Failed to build application event", "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish application event", "error", err, "event_id", event.ID)
	}
}
