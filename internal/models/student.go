package models

import (
	"time"

	"gorm.io/gorm"
)

type Student struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"uniqueIndex;not null;size:255"`
	User   *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`

	// SchoolStudentID is the external, human-facing key used in URLs.
	SchoolStudentID string `json:"school_student_id" gorm:"uniqueIndex;not null;size:32"`

	ProgramID *uint    `json:"program_id"`
	Program   *Program `json:"program,omitempty" gorm:"foreignKey:ProgramID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Student) TableName() string {
	return "students"
}

// AdvisingRelation links an advisor-role user to a student. The edge existing
// is exactly what grants the advisor access to the student's records.
type AdvisingRelation struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	AdvisorUserID string `json:"advisor_user_id" gorm:"not null;size:255;uniqueIndex:idx_advisor_student"`
	StudentID     uint   `json:"student_id" gorm:"not null;uniqueIndex:idx_advisor_student"`

	Advisor *User    `json:"advisor,omitempty" gorm:"foreignKey:AdvisorUserID"`
	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`

	CreatedAt time.Time `json:"created_at"`
}

func (AdvisingRelation) TableName() string {
	return "advisor_students"
}
