package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a threaded advising note on a (program, student) pair.
type Comment struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProgramID uint   `json:"program_id" gorm:"not null;index:idx_comment_thread"`
	StudentID uint   `json:"student_id" gorm:"not null;index:idx_comment_thread"`
	AuthorID  string `json:"author_id" gorm:"not null;size:255;index"`
	Text      string `json:"text" gorm:"not null;size:2000"`

	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Comment) TableName() string {
	return "comments"
}

// Notification is one fan-out row per eligible recipient of a comment event.
// The author of the comment is never a recipient.
type Notification struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	RecipientID string `json:"recipient_id" gorm:"not null;size:255;index"`
	TriggeredBy string `json:"triggered_by" gorm:"not null;size:255"`
	Title       string `json:"title" gorm:"not null;size:200"`
	Message     string `json:"message" gorm:"not null;size:2000"`

	CommentID *uint `json:"comment_id" gorm:"index"`
	ProgramID uint  `json:"program_id"`
	StudentID uint  `json:"student_id"`

	IsRead bool `json:"is_read" gorm:"not null;default:false;index"`

	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
