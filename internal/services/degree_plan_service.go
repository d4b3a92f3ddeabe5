package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CAPS-2026/degreeplan-service/internal/events"
	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
	"github.com/CAPS-2026/degreeplan-service/internal/validator"
)

type degreePlanService struct {
	repo      repositories.Repository
	access    AccessService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewDegreePlanService(repo repositories.Repository, access AccessService, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) DegreePlanService {
	return &degreePlanService{
		repo:      repo,
		access:    access,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// ===== PLAN READ =====

func (s *degreePlanService) GetPlan(ctx context.Context, userID, schoolStudentID string, programID uint, view PlanView) (*DegreePlanResponse, error) {
	student, err := s.resolveStudent(ctx, schoolStudentID)
	if err != nil {
		return nil, err
	}

	canAccess, err := s.access.CanAccessStudent(ctx, userID, student)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, NewPermissionError(userID, "degree_plan", schoolStudentID, "read", "no access to this student")
	}

	program, err := s.repo.Program().GetByID(ctx, nil, programID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to load program: %w", err)
	}

	entries, err := s.repo.DegreePlan().PlanFor(ctx, nil, student.ID, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to load degree plan: %w", err)
	}

	totalCredits, err := s.repo.Program().TotalRequiredCredits(ctx, nil, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute required credits: %w", err)
	}

	byCourse := entriesByCourse(entries)
	responses := make([]*PlanEntryResponse, 0, len(entries))
	var completedCredits int64
	for _, entry := range entries {
		resp, err := s.enrichEntry(ctx, entry, byCourse)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
		if entry.Status == models.StatusCompleted && entry.Course != nil {
			completedCredits += int64(entry.Course.Credits)
		}
	}

	canEdit, err := s.canEditPlan(ctx, userID, student)
	if err != nil {
		return nil, err
	}

	result := &DegreePlanResponse{
		Student:              student,
		Program:              program,
		View:                 view,
		TotalRequiredCredits: int64(totalCredits),
		CompletedCredits:     completedCredits,
		CanEdit:              canEdit,
	}

	switch view {
	case PlanViewRequirements:
		groups, err := s.groupByRequirement(ctx, programID, responses)
		if err != nil {
			return nil, err
		}
		result.Requirements = groups
	case PlanViewSemester:
		result.Semesters = groupBySemester(responses)
	default:
		result.View = PlanViewSemester
		result.Semesters = groupBySemester(responses)
	}

	return result, nil
}

// ===== STATUS UPDATE =====

// UpdateCourseStatus applies a single course-status transition. Checks run in
// a fixed order and the first failure wins: input validation, student
// resolution, authorization, prerequisite rules, then the store write.
func (s *degreePlanService) UpdateCourseStatus(ctx context.Context, userID, schoolStudentID string, req *UpdateCourseStatusRequest) (*PlanEntryResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateCourseStatusUpdate(req); len(errs) > 0 {
		return nil, errs
	}
	newStatus, _ := models.ParseCourseStatus(req.Status)

	student, err := s.resolveStudent(ctx, schoolStudentID)
	if err != nil {
		return nil, err
	}

	// Plan writes are restricted to admins and the student's own advisors.
	// Students read their plan but never mutate it through this operation.
	if err := s.authorizePlanWrite(ctx, userID, student); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, nil, req.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	var targetSemester *models.Semester
	if req.SemesterID != nil {
		targetSemester, err = s.repo.Semester().GetByID(ctx, nil, *req.SemesterID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrSemesterNotFound
			}
			return nil, fmt.Errorf("failed to load semester: %w", err)
		}
	}

	prerequisites, err := s.repo.Course().Prerequisites(ctx, nil, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prerequisites: %w", err)
	}

	switch newStatus {
	case models.StatusPlanned, models.StatusInProgress:
		if err := s.checkPrerequisitesForScheduling(ctx, student.ID, req.ProgramID, course, prerequisites, targetSemester); err != nil {
			return nil, err
		}
	case models.StatusCompleted:
		// Completion records historical fact, so a missing prerequisite is
		// logged as an advisory warning rather than blocking the update.
		s.warnMissingPrerequisites(ctx, student.ID, req.ProgramID, course, prerequisites)
	}

	entry, err := s.repo.DegreePlan().SetStatus(ctx, nil, student.ID, course.ID, req.ProgramID, newStatus, req.SemesterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotInPlan
		}
		return nil, fmt.Errorf("failed to update course status: %w", err)
	}

	s.logger.Info("Course status updated",
		"student_id", student.ID,
		"course_id", course.ID,
		"program_id", req.ProgramID,
		"status", newStatus,
		"updated_by", userID)

	s.publishStatusEvent(ctx, student.ID, entry, userID)

	plan, err := s.repo.DegreePlan().PlanFor(ctx, nil, student.ID, req.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload degree plan: %w", err)
	}
	return s.enrichEntry(ctx, entry, entriesByCourse(plan))
}

// checkPrerequisitesForScheduling enforces the blocking rules for forward
// scheduling: every prerequisite must already be on the plan in a scheduled
// state, and when both sides have semesters the prerequisite's term must start
// strictly before the target term.
func (s *degreePlanService) checkPrerequisitesForScheduling(ctx context.Context, studentID, programID uint, course *models.Course, prerequisites []*models.Course, targetSemester *models.Semester) error {
	for _, prereq := range prerequisites {
		entry, err := s.repo.DegreePlan().StatusOf(ctx, nil, studentID, prereq.ID, programID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return &PrerequisiteError{
					CourseID:         course.ID,
					CourseCode:       course.Code,
					PrerequisiteID:   prereq.ID,
					PrerequisiteCode: prereq.Code,
					Reason:           "is not part of the student's plan",
				}
			}
			return fmt.Errorf("failed to check prerequisite %s: %w", prereq.Code, err)
		}

		if !entry.Status.IsScheduled() {
			return &PrerequisiteError{
				CourseID:         course.ID,
				CourseCode:       course.Code,
				PrerequisiteID:   prereq.ID,
				PrerequisiteCode: prereq.Code,
				Reason:           "is not scheduled",
			}
		}

		if targetSemester == nil || entry.SemesterID == nil {
			continue
		}
		prereqSemester, err := s.repo.Semester().GetByID(ctx, nil, *entry.SemesterID)
		if err != nil {
			return fmt.Errorf("failed to load prerequisite semester: %w", err)
		}
		if !prereqSemester.StartsBefore(targetSemester) {
			return &PrerequisiteError{
				CourseID:         course.ID,
				CourseCode:       course.Code,
				PrerequisiteID:   prereq.ID,
				PrerequisiteCode: prereq.Code,
				Reason:           fmt.Sprintf("must be scheduled in a term before %s", targetSemester.Name),
			}
		}
	}
	return nil
}

func (s *degreePlanService) warnMissingPrerequisites(ctx context.Context, studentID, programID uint, course *models.Course, prerequisites []*models.Course) {
	for _, prereq := range prerequisites {
		_, err := s.repo.DegreePlan().StatusOf(ctx, nil, studentID, prereq.ID, programID)
		if err == nil {
			continue
		}
		if repositories.IsNotFoundError(err) {
			s.logger.Warn("Course marked completed with prerequisite missing from plan",
				"student_id", studentID,
				"course_id", course.ID,
				"course_code", course.Code,
				"prerequisite_id", prereq.ID,
				"prerequisite_code", prereq.Code)
			continue
		}
		s.logger.Error("Failed to check prerequisite during completion", "error", err, "prerequisite_id", prereq.ID)
	}
}

// ===== HELPERS =====

func (s *degreePlanService) resolveStudent(ctx context.Context, schoolStudentID string) (*models.Student, error) {
	student, err := s.repo.Student().GetBySchoolID(ctx, nil, schoolStudentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to resolve student: %w", err)
	}
	return student, nil
}

func (s *degreePlanService) canEditPlan(ctx context.Context, userID string, student *models.Student) (bool, error) {
	roles, err := s.access.RolesOf(ctx, userID)
	if err != nil {
		return false, err
	}
	if roles.Has(models.RoleAdmin) {
		return true, nil
	}
	if roles.Has(models.RoleAdvisor) {
		return s.access.IsAdvisorOf(ctx, userID, student.ID)
	}
	return false, nil
}

func (s *degreePlanService) authorizePlanWrite(ctx context.Context, userID string, student *models.Student) error {
	canEdit, err := s.canEditPlan(ctx, userID, student)
	if err != nil {
		return err
	}
	if !canEdit {
		return NewPermissionError(userID, "degree_plan", student.SchoolStudentID, "update", "only admins and assigned advisors may change a plan")
	}
	return nil
}

func entriesByCourse(entries []*models.DegreePlanEntry) map[uint]*models.DegreePlanEntry {
	byCourse := make(map[uint]*models.DegreePlanEntry, len(entries))
	for _, entry := range entries {
		byCourse[entry.CourseID] = entry
	}
	return byCourse
}

// enrichEntry attaches prerequisite standing, offerings, and certificate
// overlaps for presentation. Directory lookups go through the cached course
// repository.
func (s *degreePlanService) enrichEntry(ctx context.Context, entry *models.DegreePlanEntry, byCourse map[uint]*models.DegreePlanEntry) (*PlanEntryResponse, error) {
	resp := &PlanEntryResponse{DegreePlanEntry: entry}

	prerequisites, err := s.repo.Course().Prerequisites(ctx, nil, entry.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prerequisites: %w", err)
	}
	resp.Prerequisites = make([]PrerequisiteStatus, 0, len(prerequisites))
	for _, prereq := range prerequisites {
		status := PrerequisiteStatus{
			CourseID: prereq.ID,
			Code:     prereq.Code,
			Name:     prereq.Name,
			Status:   models.StatusUnplanned,
		}
		if prereqEntry, ok := byCourse[prereq.ID]; ok {
			status.Status = prereqEntry.Status
			status.SemesterID = prereqEntry.SemesterID
			status.Satisfied = prereqEntry.Status.IsScheduled()
		}
		resp.Prerequisites = append(resp.Prerequisites, status)
	}

	offerings, err := s.repo.Course().Offerings(ctx, nil, entry.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load offerings: %w", err)
	}
	resp.Offerings = offerings

	overlaps, err := s.repo.Course().CertificateOverlaps(ctx, nil, entry.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate overlaps: %w", err)
	}
	for _, program := range overlaps {
		resp.CertificateOverlaps = append(resp.CertificateOverlaps, CertificateOverlap{
			ProgramID:   program.ID,
			ProgramName: program.Name,
		})
	}

	return resp, nil
}

func groupBySemester(entries []*PlanEntryResponse) []*SemesterGroup {
	var groups []*SemesterGroup
	index := make(map[uint]*SemesterGroup)
	var unscheduled *SemesterGroup

	// Entries arrive ordered by semester start date with unscheduled last,
	// so group order follows input order.
	for _, entry := range entries {
		if entry.SemesterID == nil {
			if unscheduled == nil {
				unscheduled = &SemesterGroup{}
			}
			unscheduled.Entries = append(unscheduled.Entries, entry)
			continue
		}
		group, ok := index[*entry.SemesterID]
		if !ok {
			group = &SemesterGroup{Semester: entry.Semester}
			index[*entry.SemesterID] = group
			groups = append(groups, group)
		}
		group.Entries = append(group.Entries, entry)
	}
	if unscheduled != nil {
		groups = append(groups, unscheduled)
	}
	return groups
}

func (s *degreePlanService) groupByRequirement(ctx context.Context, programID uint, entries []*PlanEntryResponse) ([]*RequirementGroup, error) {
	requirements, err := s.repo.Program().Requirements(ctx, nil, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requirements: %w", err)
	}

	index := make(map[uint]*RequirementGroup, len(requirements))
	for _, requirement := range requirements {
		index[requirement.ID] = &RequirementGroup{Requirement: requirement}
	}

	var untagged *RequirementGroup
	for _, entry := range entries {
		if entry.Course == nil || entry.Course.RequirementID == nil {
			if untagged == nil {
				untagged = &RequirementGroup{}
			}
			untagged.Entries = append(untagged.Entries, entry)
			continue
		}
		if group, ok := index[*entry.Course.RequirementID]; ok {
			group.Entries = append(group.Entries, entry)
		}
	}

	var roots []*RequirementGroup
	for _, requirement := range requirements {
		group := index[requirement.ID]
		if requirement.ParentID == nil {
			roots = append(roots, group)
			continue
		}
		if parent, ok := index[*requirement.ParentID]; ok {
			parent.Children = append(parent.Children, group)
		} else {
			roots = append(roots, group)
		}
	}
	if untagged != nil {
		roots = append(roots, untagged)
	}
	return roots, nil
}

func (s *degreePlanService) publishStatusEvent(ctx context.Context, studentID uint, entry *models.DegreePlanEntry, updatedBy string) {
	event, err := events.NewEvent(events.TypeCourseStatusUpdated, events.CourseStatusEvent{
		StudentID:  studentID,
		CourseID:   entry.CourseID,
		ProgramID:  entry.ProgramID,
		Status:     string(entry.Status),
		SemesterID: entry.SemesterID,
		UpdatedBy:  updatedBy,
	})
	if err != nil {
		s.logger.Error("Failed to build course status event", "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish course status event", "error", err, "event_id", event.ID)
	}
}
