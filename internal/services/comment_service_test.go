package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/CAPS-2026/degreeplan-service/internal/events"
	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/validator"
)

type commentTestEnv struct {
	repo      *fakeRepository
	publisher *events.MockEventPublisher
	service   CommentService
}

func newCommentTestEnv(t *testing.T) *commentTestEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(logger)
	access := NewAccessService(repo, logger)
	service := NewCommentService(repo, access, publisher, logger, validator.New())

	repo.seedUser("adm-1", "Ada Admin", models.RoleAdmin)
	repo.seedUser("adv-1", "Avery Advisor", models.RoleAdvisor)
	repo.seedUser("adv-2", "Blake Advisor", models.RoleAdvisor)
	repo.seedUser("stu-1", "Sam Student", models.RoleStudent)
	repo.seedUser("stu-2", "Toni Student", models.RoleStudent)

	repo.seedStudent(1, "stu-1", "S100")
	repo.seedAdvising("adv-1", 1)
	repo.seedProgram(1, "Computer Science BS")

	return &commentTestEnv{repo: repo, publisher: publisher, service: service}
}

func recipientSet(notes []*models.Notification) map[string]int {
	set := make(map[string]int)
	for _, note := range notes {
		set[note.RecipientID]++
	}
	return set
}

func TestCreateComment_FanOutExcludesAuthor(t *testing.T) {
	env := newCommentTestEnv(t)

	comment, err := env.service.Create(context.Background(), "adv-1", &CreateCommentRequest{
		ProgramID:       1,
		StudentSchoolID: "S100",
		Text:            "Plan looks good, consider CS201 next term.",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if comment.CanEdit != true {
		t.Error("author should be able to edit their comment")
	}

	// Recipients: every student-role user plus the student's advisors, minus
	// the author. adv-2 has no advising edge to S100 and gets nothing.
	recipients := recipientSet(env.repo.notes)
	if len(recipients) != 2 {
		t.Fatalf("expected 2 recipients, got %v", recipients)
	}
	for _, want := range []string{"stu-1", "stu-2"} {
		if recipients[want] != 1 {
			t.Errorf("expected exactly one notification for %s, got %d", want, recipients[want])
		}
	}
	if recipients["adv-1"] != 0 {
		t.Error("author must never receive their own notification")
	}
	if recipients["adv-2"] != 0 {
		t.Error("unlinked advisor must not be notified")
	}

	published := env.publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.TypeCommentCreated {
		t.Fatalf("expected one comment.created event, got %+v", published)
	}
}

func TestCreateComment_MessageTruncatesOnRuneBoundary(t *testing.T) {
	env := newCommentTestEnv(t)

	// 66 three-byte runes = 198 bytes; the next rune straddles the 200-byte
	// cap and must be dropped whole.
	text := strings.Repeat("デ", 67)
	_, err := env.service.Create(context.Background(), "adv-1", &CreateCommentRequest{
		ProgramID:       1,
		StudentSchoolID: "S100",
		Text:            text,
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if len(env.repo.notes) == 0 {
		t.Fatal("expected notifications to be created")
	}
	for _, note := range env.repo.notes {
		if !utf8.ValidString(note.Message) {
			t.Fatalf("notification message is not valid UTF-8: %q", note.Message)
		}
		if len(note.Message) > 200 {
			t.Errorf("expected message capped at 200 bytes, got %d", len(note.Message))
		}
		if len(note.Message) != 198 {
			t.Errorf("expected 198 bytes after rune-boundary truncation, got %d", len(note.Message))
		}
	}
}

func TestCreateComment_StudentAuthorNotifiesAdvisors(t *testing.T) {
	env := newCommentTestEnv(t)

	_, err := env.service.Create(context.Background(), "stu-1", &CreateCommentRequest{
		ProgramID:       1,
		StudentSchoolID: "S100",
		Text:            "When should I take the capstone?",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	recipients := recipientSet(env.repo.notes)
	if recipients["adv-1"] != 1 {
		t.Error("the student's advisor should be notified")
	}
	if recipients["stu-1"] != 0 {
		t.Error("author must never receive their own notification")
	}
	if recipients["stu-2"] != 1 {
		t.Error("other student-role users should be notified")
	}
}

func TestCreateComment_RejectsWhitespaceText(t *testing.T) {
	env := newCommentTestEnv(t)

	_, err := env.service.Create(context.Background(), "adv-1", &CreateCommentRequest{
		ProgramID:       1,
		StudentSchoolID: "S100",
		Text:            "   \n\t  ",
	})

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
}

func TestCreateComment_NoAccessForbidden(t *testing.T) {
	env := newCommentTestEnv(t)

	_, err := env.service.Create(context.Background(), "adv-2", &CreateCommentRequest{
		ProgramID:       1,
		StudentSchoolID: "S100",
		Text:            "Should not land.",
	})
	if !IsPermissionDenied(err) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if len(env.repo.notes) != 0 {
		t.Error("no notifications should be written for a rejected comment")
	}
}

func TestUpdateComment_AuthorOnly(t *testing.T) {
	env := newCommentTestEnv(t)

	comment, err := env.service.Create(context.Background(), "adv-1", &CreateCommentRequest{
		ProgramID:       1,
		StudentSchoolID: "S100",
		Text:            "Original text.",
	})
	if err != nil {
		t.Fatalf("setup comment failed: %v", err)
	}

	_, err = env.service.Update(context.Background(), "adm-1", comment.ID, &UpdateCommentRequest{Text: "Edited by admin."})
	if !IsPermissionDenied(err) {
		t.Fatalf("only the author may edit, got %v", err)
	}

	updated, err := env.service.Update(context.Background(), "adv-1", comment.ID, &UpdateCommentRequest{Text: "Edited by author."})
	if err != nil {
		t.Fatalf("author edit failed: %v", err)
	}
	if updated.Text != "Edited by author." {
		t.Errorf("unexpected text %q", updated.Text)
	}

	// Edit re-fans-out notifications like creation.
	recipients := recipientSet(env.repo.notes)
	if recipients["stu-1"] != 2 {
		t.Errorf("expected a second notification after edit, got %d", recipients["stu-1"])
	}
}

func TestDeleteComment_Policy(t *testing.T) {
	env := newCommentTestEnv(t)

	create := func(author string) uint {
		t.Helper()
		comment, err := env.service.Create(context.Background(), author, &CreateCommentRequest{
			ProgramID:       1,
			StudentSchoolID: "S100",
			Text:            "To be deleted.",
		})
		if err != nil {
			t.Fatalf("setup comment failed: %v", err)
		}
		return comment.ID
	}

	// Admin may delete anyone's comment.
	id := create("adv-1")
	if err := env.service.Delete(context.Background(), "adm-1", id); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}

	// A student may delete their own comment.
	id = create("stu-1")
	if err := env.service.Delete(context.Background(), "stu-1", id); err != nil {
		t.Fatalf("student deleting own comment failed: %v", err)
	}

	// An advisor may not delete their own comment; they lack the student role.
	id = create("adv-1")
	if err := env.service.Delete(context.Background(), "adv-1", id); !IsPermissionDenied(err) {
		t.Fatalf("advisor delete should be forbidden, got %v", err)
	}

	// Unknown comment.
	if err := env.service.Delete(context.Background(), "adm-1", 9999); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
}

func TestListForThread_OrderAndAccess(t *testing.T) {
	env := newCommentTestEnv(t)

	for _, text := range []string{"first", "second", "third"} {
		if _, err := env.service.Create(context.Background(), "adv-1", &CreateCommentRequest{
			ProgramID:       1,
			StudentSchoolID: "S100",
			Text:            text,
		}); err != nil {
			t.Fatalf("setup comment failed: %v", err)
		}
	}

	comments, err := env.service.ListForThread(context.Background(), "stu-1", "S100", 1)
	if err != nil {
		t.Fatalf("student should read their own thread, got %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(comments))
	}
	if comments[0].Text != "first" || comments[2].Text != "third" {
		t.Error("comments should be ordered by creation time ascending")
	}

	_, err = env.service.ListForThread(context.Background(), "adv-2", "S100", 1)
	if !IsPermissionDenied(err) {
		t.Fatalf("unlinked advisor should be forbidden, got %v", err)
	}
}

func TestNotificationLifecycle(t *testing.T) {
	env := newCommentTestEnv(t)

	if _, err := env.service.Create(context.Background(), "adv-1", &CreateCommentRequest{
		ProgramID:       1,
		StudentSchoolID: "S100",
		Text:            "Check your plan.",
	}); err != nil {
		t.Fatalf("setup comment failed: %v", err)
	}

	list, err := env.service.ListNotifications(context.Background(), "stu-1", &ListNotificationsRequest{})
	if err != nil {
		t.Fatalf("list notifications failed: %v", err)
	}
	if list.UnreadCount != 1 || len(list.Notifications) != 1 {
		t.Fatalf("expected one unread notification, got %+v", list)
	}

	if err := env.service.MarkNotificationRead(context.Background(), "stu-1", list.Notifications[0].ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}

	list, err = env.service.ListNotifications(context.Background(), "stu-1", &ListNotificationsRequest{UnreadOnly: true})
	if err != nil {
		t.Fatalf("list notifications failed: %v", err)
	}
	if list.UnreadCount != 0 || len(list.Notifications) != 0 {
		t.Errorf("expected no unread notifications, got %+v", list)
	}

	// Recipients can only touch their own notifications.
	if _, err := env.service.Create(context.Background(), "adv-1", &CreateCommentRequest{
		ProgramID:       1,
		StudentSchoolID: "S100",
		Text:            "Another note.",
	}); err != nil {
		t.Fatalf("setup comment failed: %v", err)
	}
	other, err := env.service.ListNotifications(context.Background(), "stu-2", &ListNotificationsRequest{UnreadOnly: true})
	if err != nil || len(other.Notifications) == 0 {
		t.Fatalf("expected notifications for stu-2, got %+v, %v", other, err)
	}
	err = env.service.MarkNotificationRead(context.Background(), "stu-1", other.Notifications[0].ID)
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound for foreign notification, got %v", err)
	}
}
