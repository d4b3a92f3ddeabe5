package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published by this service.
const (
	TypeCommentCreated      = "comment.created"
	TypeCommentUpdated      = "comment.updated"
	TypeCourseStatusUpdated = "plan.course_status_updated"
	TypeApplicationUpdated  = "graduation.application_updated"
)

const (
	eventSource  = "degreeplan-service"
	eventVersion = "1.0"
)

// Event is the envelope for every message this service publishes. Data holds
// the type-specific payload already marshaled to JSON.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent wraps a payload in the standard envelope.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}

// EventPublisher sends events to whatever broker is configured. Publishing is
// fire-and-forget from the caller's perspective: a failed publish is logged,
// never surfaced to the requester.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// ===== EVENT PAYLOADS =====

// CommentEvent is emitted on comment create and edit, alongside the
// notification fan-out rows.
type CommentEvent struct {
	CommentID    uint     `json:"comment_id"`
	ProgramID    uint     `json:"program_id"`
	StudentID    uint     `json:"student_id"`
	AuthorID     string   `json:"author_id"`
	RecipientIDs []string `json:"recipient_ids"`
}

// CourseStatusEvent is emitted after a successful plan mutation.
type CourseStatusEvent struct {
	StudentID  uint   `json:"student_id"`
	CourseID   uint   `json:"course_id"`
	ProgramID  uint   `json:"program_id"`
	Status     string `json:"status"`
	SemesterID *uint  `json:"semester_id"`
	UpdatedBy  string `json:"updated_by"`
}

// ApplicationEvent is emitted when a graduation application changes status.
type ApplicationEvent struct {
	ApplicationID uint   `json:"application_id"`
	StudentID     uint   `json:"student_id"`
	ProgramID     uint   `json:"program_id"`
	Status        string `json:"status"`
	UpdatedBy     string `json:"updated_by"`
}
