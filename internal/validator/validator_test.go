package validator

import (
	"testing"
)

func TestValidateCourseStatusUpdate(t *testing.T) {
	v := New()
	bv := v.GetBusinessValidator()

	semID := uint(10)

	cases := []struct {
		name    string
		req     UpdateCourseStatusRequest
		wantErr bool
	}{
		{"planned with semester", UpdateCourseStatusRequest{CourseID: 1, Status: "Planned", SemesterID: &semID, ProgramID: 1}, false},
		{"planned without semester", UpdateCourseStatusRequest{CourseID: 1, Status: "Planned", ProgramID: 1}, true},
		{"in progress without semester", UpdateCourseStatusRequest{CourseID: 1, Status: "In Progress", ProgramID: 1}, false},
		{"completed without semester", UpdateCourseStatusRequest{CourseID: 1, Status: "Completed", ProgramID: 1}, false},
		{"unplanned", UpdateCourseStatusRequest{CourseID: 1, Status: "Unplanned", ProgramID: 1}, false},
		{"invalid status", UpdateCourseStatusRequest{CourseID: 1, Status: "Dropped", ProgramID: 1}, true},
		{"missing course", UpdateCourseStatusRequest{Status: "Unplanned", ProgramID: 1}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := bv.ValidateCourseStatusUpdate(&tc.req)
			if tc.wantErr && len(errs) == 0 {
				t.Error("expected validation errors, got none")
			}
			if !tc.wantErr && len(errs) > 0 {
				t.Errorf("expected no errors, got %v", errs)
			}
		})
	}
}

func TestValidateCommentCreate(t *testing.T) {
	v := New()
	bv := v.GetBusinessValidator()

	valid := CreateCommentRequest{ProgramID: 1, StudentSchoolID: "S100", Text: "Looks good."}
	if errs := bv.ValidateCommentCreate(&valid); len(errs) > 0 {
		t.Errorf("expected no errors, got %v", errs)
	}

	whitespace := CreateCommentRequest{ProgramID: 1, StudentSchoolID: "S100", Text: "  \n\t "}
	if errs := bv.ValidateCommentCreate(&whitespace); len(errs) == 0 {
		t.Error("whitespace-only text should be rejected")
	}
}

func TestValidateRoleAndApplicationStatus(t *testing.T) {
	v := New()

	if errs := v.Validate(&RoleRequest{Role: "advisor"}); len(errs) > 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
	if errs := v.Validate(&RoleRequest{Role: "superuser"}); len(errs) == 0 {
		t.Error("unknown role should be rejected")
	}

	if errs := v.Validate(&UpdateApplicationStatusRequest{Status: "Under Review"}); len(errs) > 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
	if errs := v.Validate(&UpdateApplicationStatusRequest{Status: "Done"}); len(errs) == 0 {
		t.Error("unknown application status should be rejected")
	}
}

func TestCreateUserRequestValidation(t *testing.T) {
	v := New()

	valid := CreateUserRequest{ID: "u-1", FullName: "Nora Newcomer", Email: "nora@example.edu", Roles: []string{"student", "advisor"}}
	if errs := v.Validate(&valid); len(errs) > 0 {
		t.Errorf("expected no errors, got %v", errs)
	}

	badEmail := CreateUserRequest{ID: "u-1", FullName: "Nora", Email: "not-an-email"}
	if errs := v.Validate(&badEmail); len(errs) == 0 {
		t.Error("invalid email should be rejected")
	}

	badRole := CreateUserRequest{ID: "u-1", FullName: "Nora", Email: "nora@example.edu", Roles: []string{"wizard"}}
	if errs := v.Validate(&badRole); len(errs) == 0 {
		t.Error("unknown role should be rejected")
	}
}
