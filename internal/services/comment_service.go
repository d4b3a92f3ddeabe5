package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/CAPS-2026/degreeplan-service/internal/events"
	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
	"github.com/CAPS-2026/degreeplan-service/internal/validator"
)

type commentService struct {
	repo      repositories.Repository
	access    AccessService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCommentService(repo repositories.Repository, access AccessService, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) CommentService {
	return &commentService{
		repo:      repo,
		access:    access,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// ===== COMMENTS =====

func (s *commentService) Create(ctx context.Context, userID string, req *CreateCommentRequest) (*CommentResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateCommentCreate(req); len(errs) > 0 {
		return nil, errs
	}

	student, err := s.repo.Student().GetBySchoolID(ctx, nil, req.StudentSchoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to resolve student: %w", err)
	}

	canAccess, err := s.access.CanAccessStudent(ctx, userID, student)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, NewPermissionError(userID, "comment", req.StudentSchoolID, "create", "no access to this student")
	}

	if _, err := s.repo.Program().GetByID(ctx, nil, req.ProgramID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to resolve program: %w", err)
	}

	comment := &models.Comment{
		ProgramID: req.ProgramID,
		StudentID: student.ID,
		AuthorID:  userID,
		Text:      strings.TrimSpace(req.Text),
	}

	var recipientIDs []string
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Comment().Create(ctx, nil, comment); err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		recipientIDs, err = s.fanOutNotifications(ctx, txRepo, comment, student, "New comment on degree plan")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Comment created",
		"comment_id", comment.ID,
		"student_id", student.ID,
		"program_id", comment.ProgramID,
		"author_id", userID,
		"recipients", len(recipientIDs))

	s.publishCommentEvent(ctx, events.TypeCommentCreated, comment, recipientIDs)

	return s.toCommentResponse(ctx, userID, comment)
}

func (s *commentService) Update(ctx context.Context, userID string, commentID uint, req *UpdateCommentRequest) (*CommentResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateCommentUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	comment, err := s.repo.Comment().GetByID(ctx, nil, commentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}

	// Only the original author may edit.
	if comment.AuthorID != userID {
		return nil, NewPermissionError(userID, "comment", fmt.Sprintf("%d", commentID), "update", "only the author may edit a comment")
	}

	student, err := s.repo.Student().GetByID(ctx, nil, comment.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve student: %w", err)
	}

	comment.Text = strings.TrimSpace(req.Text)

	var recipientIDs []string
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Comment().Update(ctx, nil, comment); err != nil {
			return fmt.Errorf("failed to update comment: %w", err)
		}
		recipientIDs, err = s.fanOutNotifications(ctx, txRepo, comment, student, "Comment updated on degree plan")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishCommentEvent(ctx, events.TypeCommentUpdated, comment, recipientIDs)

	return s.toCommentResponse(ctx, userID, comment)
}

func (s *commentService) Delete(ctx context.Context, userID string, commentID uint) error {
	comment, err := s.repo.Comment().GetByID(ctx, nil, commentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to load comment: %w", err)
	}

	allowed, err := s.canDeleteComment(ctx, userID, comment)
	if err != nil {
		return err
	}
	if !allowed {
		return NewPermissionError(userID, "comment", fmt.Sprintf("%d", commentID), "delete", "only admins or the student author may delete a comment")
	}

	if err := s.repo.Comment().Delete(ctx, nil, commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	s.logger.Info("Comment deleted", "comment_id", commentID, "deleted_by", userID)
	return nil
}

func (s *commentService) ListForThread(ctx context.Context, userID, schoolStudentID string, programID uint) ([]*CommentResponse, error) {
	student, err := s.repo.Student().GetBySchoolID(ctx, nil, schoolStudentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to resolve student: %w", err)
	}

	canAccess, err := s.access.CanAccessStudent(ctx, userID, student)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, NewPermissionError(userID, "comment", schoolStudentID, "read", "no access to this student")
	}

	comments, err := s.repo.Comment().ListForThread(ctx, nil, programID, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	roles, err := s.access.RolesOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*CommentResponse, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, &CommentResponse{
			Comment:   comment,
			CanEdit:   comment.AuthorID == userID,
			CanDelete: roles.Has(models.RoleAdmin) || (comment.AuthorID == userID && roles.Has(models.RoleStudent)),
		})
	}
	return responses, nil
}

// ===== NOTIFICATIONS =====

func (s *commentService) ListNotifications(ctx context.Context, userID string, req *ListNotificationsRequest) (*NotificationListResponse, error) {
	if req == nil {
		req = &ListNotificationsRequest{}
	}
	limit, offset, page, size := normalizePage(req.Page, req.PageSize)

	notifications, total, err := s.repo.Notification().ListForRecipient(ctx, nil, userID, repositories.NotificationFilters{
		UnreadOnly: req.UnreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread, err := s.repo.Notification().UnreadCount(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		UnreadCount:   unread,
		Page:          page,
		Size:          size,
	}, nil
}

func (s *commentService) MarkNotificationRead(ctx context.Context, userID string, notificationID uint) error {
	err := s.repo.Notification().MarkRead(ctx, nil, notificationID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// ===== HELPERS =====

// canDeleteComment implements the delete policy: admins always, otherwise the
// author when they hold the student role. Advisors may not delete others'
// comments.
func (s *commentService) canDeleteComment(ctx context.Context, userID string, comment *models.Comment) (bool, error) {
	roles, err := s.access.RolesOf(ctx, userID)
	if err != nil {
		return false, err
	}
	if roles.Has(models.RoleAdmin) {
		return true, nil
	}
	return comment.AuthorID == userID && roles.Has(models.RoleStudent), nil
}

// fanOutNotifications creates one notification row per recipient. Recipients
// are every student-role user plus every advisor assigned to this student,
// minus the author.
func (s *commentService) fanOutNotifications(ctx context.Context, txRepo repositories.Repository, comment *models.Comment, student *models.Student, title string) ([]string, error) {
	studentUsers, err := txRepo.User().ListByRole(ctx, nil, models.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("failed to list student recipients: %w", err)
	}
	advisors, err := txRepo.Student().AdvisorsOf(ctx, nil, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list advisor recipients: %w", err)
	}

	seen := make(map[string]bool)
	var recipientIDs []string
	for _, user := range studentUsers {
		if user.ID == comment.AuthorID || seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		recipientIDs = append(recipientIDs, user.ID)
	}
	for _, user := range advisors {
		if user.ID == comment.AuthorID || seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		recipientIDs = append(recipientIDs, user.ID)
	}

	if len(recipientIDs) == 0 {
		return nil, nil
	}

	message := truncateMessage(comment.Text, 200)
	notifications := make([]*models.Notification, 0, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		notifications = append(notifications, &models.Notification{
			RecipientID: recipientID,
			TriggeredBy: comment.AuthorID,
			Title:       title,
			Message:     message,
			CommentID:   &comment.ID,
		})
	}
	if err := txRepo.Notification().CreateBatch(ctx, nil, notifications); err != nil {
		return nil, fmt.Errorf("failed to create notifications: %w", err)
	}
	return recipientIDs, nil
}

// truncateMessage caps a notification preview at max bytes without splitting
// a multi-byte rune.
func truncateMessage(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (s *commentService) toCommentResponse(ctx context.Context, userID string, comment *models.Comment) (*CommentResponse, error) {
	canDelete, err := s.canDeleteComment(ctx, userID, comment)
	if err != nil {
		return nil, err
	}
	return &CommentResponse{
		Comment:   comment,
		CanEdit:   comment.AuthorID == userID,
		CanDelete: canDelete,
	}, nil
}

func (s *commentService) publishCommentEvent(ctx context.Context, eventType string, comment *models.Comment, recipientIDs []string) {
	event, err := events.NewEvent(eventType, events.CommentEvent{
		CommentID:    comment.ID,
		ProgramID:    comment.ProgramID,
		StudentID:    comment.StudentID,
		AuthorID:     comment.AuthorID,
		RecipientIDs: recipientIDs,
	})
	if err != nil {
		s.logger.Error("Failed to build comment event", "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish comment event", "error", err, "event_id", event.ID)
	}
}
