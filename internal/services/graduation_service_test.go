package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/CAPS-2026/degreeplan-service/internal/events"
	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/validator"
)

type graduationTestEnv struct {
	repo      *fakeRepository
	publisher *events.MockEventPublisher
	service   GraduationService
}

func newGraduationTestEnv(t *testing.T) *graduationTestEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(logger)
	access := NewAccessService(repo, logger)
	service := NewGraduationService(repo, access, publisher, logger, validator.New())

	repo.seedUser("adm-1", "Ada Admin", models.RoleAdmin)
	repo.seedUser("acc-1", "Casey Accounting", models.RoleAccounting)
	repo.seedUser("adv-1", "Avery Advisor", models.RoleAdvisor)
	repo.seedUser("stu-1", "Sam Student", models.RoleStudent)
	repo.seedUser("stu-2", "Toni Student", models.RoleStudent)

	repo.seedStudent(1, "stu-1", "S100")
	repo.seedStudent(2, "stu-2", "S200")
	repo.seedAdvising("adv-1", 1)

	repo.seedProgram(1, "Computer Science BS")
	repo.seedProgram(2, "Data Science Certificate")

	return &graduationTestEnv{repo: repo, publisher: publisher, service: service}
}

func TestApply_CreatesNotAppliedRow(t *testing.T) {
	env := newGraduationTestEnv(t)

	application, err := env.service.Apply(context.Background(), "stu-1", &GraduationApplyRequest{ProgramID: 1})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if application.Status != models.ApplicationNotApplied {
		t.Errorf("expected initial status %q, got %q", models.ApplicationNotApplied, application.Status)
	}
	if application.StudentID != 1 {
		t.Errorf("expected student 1, got %d", application.StudentID)
	}
}

func TestApply_DuplicateRejected(t *testing.T) {
	env := newGraduationTestEnv(t)

	if _, err := env.service.Apply(context.Background(), "stu-1", &GraduationApplyRequest{ProgramID: 1}); err != nil {
		t.Fatalf("first application failed: %v", err)
	}
	_, err := env.service.Apply(context.Background(), "stu-1", &GraduationApplyRequest{ProgramID: 1})
	if !errors.Is(err, ErrApplicationAlreadyExists) {
		t.Fatalf("expected ErrApplicationAlreadyExists, got %v", err)
	}

	// A second program is a separate application.
	if _, err := env.service.Apply(context.Background(), "stu-1", &GraduationApplyRequest{ProgramID: 2}); err != nil {
		t.Fatalf("application for second program failed: %v", err)
	}
}

func TestApply_NonStudentForbidden(t *testing.T) {
	env := newGraduationTestEnv(t)

	_, err := env.service.Apply(context.Background(), "adv-1", &GraduationApplyRequest{ProgramID: 1})
	if !IsPermissionDenied(err) {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func TestListApplications_Visibility(t *testing.T) {
	env := newGraduationTestEnv(t)

	if _, err := env.service.Apply(context.Background(), "stu-1", &GraduationApplyRequest{ProgramID: 1}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := env.service.Apply(context.Background(), "stu-2", &GraduationApplyRequest{ProgramID: 1}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	// Admin and accounting see everything.
	for _, staff := range []string{"adm-1", "acc-1"} {
		list, err := env.service.List(context.Background(), staff, nil)
		if err != nil {
			t.Fatalf("%s list failed: %v", staff, err)
		}
		if list.Total != 2 {
			t.Errorf("%s should see 2 applications, got %d", staff, list.Total)
		}
	}

	// Advisor sees only advisees.
	list, err := env.service.List(context.Background(), "adv-1", nil)
	if err != nil {
		t.Fatalf("advisor list failed: %v", err)
	}
	if list.Total != 1 || list.Applications[0].StudentID != 1 {
		t.Errorf("advisor should see only student 1's application, got %+v", list)
	}

	// Students are forbidden entirely.
	if _, err := env.service.List(context.Background(), "stu-1", nil); !IsPermissionDenied(err) {
		t.Fatalf("students must not list applications, got %v", err)
	}
}

func TestListApplications_AdvisorWithNoAdvisees(t *testing.T) {
	env := newGraduationTestEnv(t)
	env.repo.seedUser("adv-2", "Blake Advisor", models.RoleAdvisor)

	if _, err := env.service.Apply(context.Background(), "stu-1", &GraduationApplyRequest{ProgramID: 1}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	list, err := env.service.List(context.Background(), "adv-2", nil)
	if err != nil {
		t.Fatalf("expected empty result, not error: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("advisor without advisees should see nothing, got %d", list.Total)
	}
}

func TestUpdateApplicationStatus(t *testing.T) {
	env := newGraduationTestEnv(t)

	app1, err := env.service.Apply(context.Background(), "stu-1", &GraduationApplyRequest{ProgramID: 1})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	app2, err := env.service.Apply(context.Background(), "stu-2", &GraduationApplyRequest{ProgramID: 1})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	// Advisor may advance an advisee's application.
	updated, err := env.service.UpdateStatus(context.Background(), "adv-1", app1.ID, &UpdateApplicationStatusRequest{Status: "Under Review"})
	if err != nil {
		t.Fatalf("advisor update failed: %v", err)
	}
	if updated.Status != models.ApplicationUnderReview {
		t.Errorf("expected Under Review, got %s", updated.Status)
	}

	// But not a stranger's.
	_, err = env.service.UpdateStatus(context.Background(), "adv-1", app2.ID, &UpdateApplicationStatusRequest{Status: "Approved"})
	if !IsPermissionDenied(err) {
		t.Fatalf("advisor must not update non-advisee applications, got %v", err)
	}

	// Accounting may set any status directly; no transition graph applies.
	updated, err = env.service.UpdateStatus(context.Background(), "acc-1", app2.ID, &UpdateApplicationStatusRequest{Status: "Rejected"})
	if err != nil {
		t.Fatalf("accounting update failed: %v", err)
	}
	if updated.Status != models.ApplicationRejected {
		t.Errorf("expected Rejected, got %s", updated.Status)
	}

	published := env.publisher.GetPublishedEvents()
	if len(published) != 2 {
		t.Fatalf("expected 2 application events, got %d", len(published))
	}
	if published[0].Type != events.TypeApplicationUpdated {
		t.Errorf("unexpected event type %s", published[0].Type)
	}
}

func TestUpdateApplicationStatus_InvalidStatus(t *testing.T) {
	env := newGraduationTestEnv(t)

	app, err := env.service.Apply(context.Background(), "stu-1", &GraduationApplyRequest{ProgramID: 1})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_, err = env.service.UpdateStatus(context.Background(), "adm-1", app.ID, &UpdateApplicationStatusRequest{Status: "Graduated"})
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
}

func TestUpdateApplicationStatus_NotFound(t *testing.T) {
	env := newGraduationTestEnv(t)

	_, err := env.service.UpdateStatus(context.Background(), "adm-1", 9999, &UpdateApplicationStatusRequest{Status: "Approved"})
	if !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestExportApplications(t *testing.T) {
	env := newGraduationTestEnv(t)

	if _, err := env.service.Apply(context.Background(), "stu-1", &GraduationApplyRequest{ProgramID: 1}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	result, err := env.service.Export(context.Background(), "acc-1", nil)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if result.ContentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type %s", result.ContentType)
	}
	// xlsx files are zip archives.
	if !bytes.HasPrefix(result.Data, []byte("PK")) {
		t.Error("export should produce an xlsx (zip) payload")
	}

	// The list gate applies to exports too.
	if _, err := env.service.Export(context.Background(), "stu-1", nil); !IsPermissionDenied(err) {
		t.Fatalf("students must not export, got %v", err)
	}
}
