package models

type ProgramType string

const (
	ProgramTypeDegree      ProgramType = "degree"
	ProgramTypeCertificate ProgramType = "certificate"
)

// Program is immutable reference data from this service's perspective.
type Program struct {
	ID   uint        `json:"id" gorm:"primaryKey"`
	Name string      `json:"name" gorm:"not null;size:200"`
	Type ProgramType `json:"type" gorm:"not null;size:32;default:'degree'"`
}

func (Program) TableName() string {
	return "programs"
}

// Requirement is a node in a program's credit-requirement tree. Courses are
// tagged with the requirement they satisfy; the tree is used for presentation
// grouping and required-credit totals only.
type Requirement struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	ProgramID       uint    `json:"program_id" gorm:"not null;index"`
	ParentID        *uint   `json:"parent_id" gorm:"index"`
	Description     string  `json:"description" gorm:"size:500"`
	RequiredCredits int     `json:"required_credits" gorm:"not null;default:0"`

	Parent   *Requirement  `json:"-" gorm:"foreignKey:ParentID"`
	Children []Requirement `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

func (Requirement) TableName() string {
	return "requirements"
}
