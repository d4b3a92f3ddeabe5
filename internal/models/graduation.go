package models

import (
	"time"
)

type ApplicationStatus string

const (
	ApplicationNotApplied  ApplicationStatus = "Not Applied"
	ApplicationApplied     ApplicationStatus = "Applied"
	ApplicationUnderReview ApplicationStatus = "Under Review"
	ApplicationApproved    ApplicationStatus = "Approved"
	ApplicationRejected    ApplicationStatus = "Rejected"
)

// ParseApplicationStatus validates a raw status string against the closed set.
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	switch ApplicationStatus(s) {
	case ApplicationNotApplied, ApplicationApplied, ApplicationUnderReview,
		ApplicationApproved, ApplicationRejected:
		return ApplicationStatus(s), true
	default:
		return "", false
	}
}

// GraduationApplication is one row per (student, program). The status is
// advanced by staff; no transition graph is enforced.
type GraduationApplication struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_grad_application"`
	ProgramID uint `json:"program_id" gorm:"not null;uniqueIndex:idx_grad_application"`

	Status          ApplicationStatus `json:"status" gorm:"not null;size:32;default:'Not Applied'"`
	AppliedAt       time.Time         `json:"applied_at"`
	StatusUpdatedAt time.Time         `json:"status_updated_at"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Program *Program `json:"program,omitempty" gorm:"foreignKey:ProgramID"`
}

func (GraduationApplication) TableName() string {
	return "graduation_applications"
}
