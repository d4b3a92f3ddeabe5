package models

import (
	"time"

	"gorm.io/datatypes"
)

// SemesterType is the term-of-year a course is offered in, independent of any
// particular calendar semester.
type SemesterType string

const (
	SemesterFall   SemesterType = "Fall"
	SemesterSpring SemesterType = "Spring"
	SemesterSummer SemesterType = "Summer"
)

type Course struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Code    string `json:"code" gorm:"uniqueIndex;not null;size:16"`
	Name    string `json:"name" gorm:"not null;size:200"`
	Credits int    `json:"credits" gorm:"not null"`

	// RequirementID tags the course with the requirement node it satisfies.
	RequirementID *uint `json:"requirement_id" gorm:"index"`

	Prerequisites []Course `json:"prerequisites,omitempty" gorm:"many2many:course_prerequisites;joinForeignKey:CourseID;joinReferences:PrerequisiteID"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseOffering records which semester types a course is offered in.
// Presentation only; the update engine never consults it.
type CourseOffering struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	CourseID     uint         `json:"course_id" gorm:"not null;uniqueIndex:idx_course_offering"`
	SemesterType SemesterType `json:"semester_type" gorm:"not null;size:16;uniqueIndex:idx_course_offering"`
}

func (CourseOffering) TableName() string {
	return "course_offerings"
}

// CourseCertificate marks a course as also counting toward a certificate
// program. Presentation only.
type CourseCertificate struct {
	ID            uint     `json:"id" gorm:"primaryKey"`
	CourseID      uint     `json:"course_id" gorm:"not null;uniqueIndex:idx_course_certificate"`
	CertificateID uint     `json:"certificate_id" gorm:"not null;uniqueIndex:idx_course_certificate"`
	Certificate   *Program `json:"certificate,omitempty" gorm:"foreignKey:CertificateID"`
}

func (CourseCertificate) TableName() string {
	return "course_certificates"
}

// Semester is a concrete calendar term. StartDate is the ordering key used for
// every "earlier/later than" comparison.
type Semester struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"uniqueIndex;not null;size:64"`
	StartDate datatypes.Date `json:"start_date" gorm:"not null;index"`
	EndDate   datatypes.Date `json:"end_date" gorm:"not null"`
}

func (Semester) TableName() string {
	return "semesters"
}

// StartsBefore reports whether s begins strictly before other.
func (s *Semester) StartsBefore(other *Semester) bool {
	return time.Time(s.StartDate).Before(time.Time(other.StartDate))
}
