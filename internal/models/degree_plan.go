package models

import (
	"time"
)

// CourseStatus is the lifecycle of a course within a student's plan.
type CourseStatus string

const (
	StatusUnplanned  CourseStatus = "Unplanned"
	StatusPlanned    CourseStatus = "Planned"
	StatusInProgress CourseStatus = "In Progress"
	StatusCompleted  CourseStatus = "Completed"
)

// ParseCourseStatus validates a raw status string against the closed set.
func ParseCourseStatus(s string) (CourseStatus, bool) {
	switch CourseStatus(s) {
	case StatusUnplanned, StatusPlanned, StatusInProgress, StatusCompleted:
		return CourseStatus(s), true
	default:
		return "", false
	}
}

// IsScheduled reports whether the status implies a semester assignment.
func (s CourseStatus) IsScheduled() bool {
	return s == StatusPlanned || s == StatusInProgress || s == StatusCompleted
}

// DegreePlanEntry is the one mutable record of this service: the status of a
// single course within a (student, program) plan. SemesterID must be non-null
// whenever the status is scheduled, and is cleared on Unplanned.
type DegreePlanEntry struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_plan_entry"`
	CourseID  uint `json:"course_id" gorm:"not null;uniqueIndex:idx_plan_entry"`
	ProgramID uint `json:"program_id" gorm:"not null;uniqueIndex:idx_plan_entry"`

	Status     CourseStatus `json:"status" gorm:"not null;size:16;default:'Unplanned'"`
	SemesterID *uint        `json:"semester_id"`

	Student  *Student  `json:"-" gorm:"foreignKey:StudentID"`
	Course   *Course   `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Program  *Program  `json:"program,omitempty" gorm:"foreignKey:ProgramID"`
	Semester *Semester `json:"semester,omitempty" gorm:"foreignKey:SemesterID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DegreePlanEntry) TableName() string {
	return "degree_plan_entries"
}
