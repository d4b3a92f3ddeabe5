package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
)

func newAccessTestEnv(t *testing.T) (*fakeRepository, AccessService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newFakeRepository()
	return repo, NewAccessService(repo, logger)
}

func TestCanAccessStudent(t *testing.T) {
	repo, access := newAccessTestEnv(t)

	repo.seedUser("adm-1", "Ada Admin", models.RoleAdmin)
	repo.seedUser("adv-1", "Avery Advisor", models.RoleAdvisor)
	repo.seedUser("adv-2", "Blake Advisor", models.RoleAdvisor)
	repo.seedUser("stu-1", "Sam Student", models.RoleStudent)
	repo.seedUser("stu-2", "Toni Student", models.RoleStudent)
	repo.seedUser("acc-1", "Casey Accounting", models.RoleAccounting)

	student := repo.seedStudent(1, "stu-1", "S100")
	repo.seedAdvising("adv-1", 1)

	cases := []struct {
		name   string
		userID string
		want   bool
	}{
		{"admin always", "adm-1", true},
		{"linked advisor", "adv-1", true},
		{"unlinked advisor", "adv-2", false},
		{"own record", "stu-1", true},
		{"other student", "stu-2", false},
		{"accounting has no plan access", "acc-1", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := access.CanAccessStudent(context.Background(), tc.userID, student)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("CanAccessStudent(%s) = %v, want %v", tc.userID, got, tc.want)
			}
		})
	}
}

func TestCanAccessStudent_RevokedRoleAppliesImmediately(t *testing.T) {
	repo, access := newAccessTestEnv(t)

	repo.seedUser("adv-1", "Avery Advisor", models.RoleAdvisor)
	student := repo.seedStudent(1, "stu-1", "S100")
	repo.seedAdvising("adv-1", 1)

	got, err := access.CanAccessStudent(context.Background(), "adv-1", student)
	if err != nil || !got {
		t.Fatalf("expected access before revocation, got %v, %v", got, err)
	}

	// Roles are read fresh per request, so a revocation is visible on the
	// very next check.
	repo.dropRole("adv-1", models.RoleAdvisor)

	got, err = access.CanAccessStudent(context.Background(), "adv-1", student)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("expected access denied after role revocation")
	}
}

func TestRolesOf_UnknownUser(t *testing.T) {
	_, access := newAccessTestEnv(t)

	_, err := access.RolesOf(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestIsAdvisorOf(t *testing.T) {
	repo, access := newAccessTestEnv(t)

	repo.seedUser("adv-1", "Avery Advisor", models.RoleAdvisor)
	repo.seedStudent(1, "stu-1", "S100")
	repo.seedAdvising("adv-1", 1)

	assigned, err := access.IsAdvisorOf(context.Background(), "adv-1", 1)
	if err != nil || !assigned {
		t.Fatalf("expected advising edge, got %v, %v", assigned, err)
	}

	assigned, err = access.IsAdvisorOf(context.Background(), "adv-1", 2)
	if err != nil {
		t.Fatalf("missing edge must not be an error: %v", err)
	}
	if assigned {
		t.Error("expected no advising edge for student 2")
	}
}
