package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CAPS-2026/degreeplan-service/internal/services"
	"github.com/CAPS-2026/degreeplan-service/internal/utils"
	"github.com/CAPS-2026/degreeplan-service/internal/validator"
)

type CommentHandler struct {
	BaseHandler
	commentService services.CommentService
	validator      *validator.Validator
}

func NewCommentHandler(commentService services.CommentService, validator *validator.Validator, logger utils.Logger) *CommentHandler {
	return &CommentHandler{
		BaseHandler:    NewBaseHandler(logger),
		commentService: commentService,
		validator:      validator,
	}
}

// CreateComment posts a comment on a (program, student) thread
// @Summary Create comment
// @Tags comments
// @Accept json
// @Produce json
// @Param comment body services.CreateCommentRequest true "Comment data"
// @Success 201 {object} services.CommentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// UpdateComment edits a comment's text
// @Summary Update comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path uint true "Comment ID"
// @Param comment body services.UpdateCommentRequest true "New text"
// @Success 200 {object} services.CommentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /comments/{id} [put]
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	commentID := h.parseIDParam(c, "id")
	if commentID == 0 {
		return
	}

	var req services.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), userID, commentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment
// @Summary Delete comment
// @Tags comments
// @Produce json
// @Param id path uint true "Comment ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	commentID := h.parseIDParam(c, "id")
	if commentID == 0 {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), userID, commentID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Comment deleted"})
}

// ListComments returns a thread ordered by creation time
// @Summary List comments
// @Tags comments
// @Produce json
// @Param program_id query uint true "Program ID"
// @Param student_school_id query string true "School student ID"
// @Success 200 {array} services.CommentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	schoolID := c.Query("student_school_id")
	programID, err := strconv.ParseUint(c.Query("program_id"), 10, 32)
	if schoolID == "" || err != nil || programID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_parameter",
			Message: "program_id and student_school_id query parameters are required",
		})
		return
	}

	comments, err := h.commentService.ListForThread(c.Request.Context(), userID, schoolID, uint(programID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

// ListNotifications returns the requester's notifications
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Param unread_only query bool false "Only unread notifications"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.NotificationListResponse
// @Router /notifications [get]
func (h *CommentHandler) ListNotifications(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	unreadOnly := c.Query("unread_only") == "true"

	notifications, err := h.commentService.ListNotifications(c.Request.Context(), userID, &services.ListNotificationsRequest{
		UnreadOnly: unreadOnly,
		Page:       page,
		PageSize:   size,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead marks one of the requester's notifications as read
// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Param id path uint true "Notification ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /notifications/{id}/read [put]
func (h *CommentHandler) MarkNotificationRead(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	notificationID := h.parseIDParam(c, "id")
	if notificationID == 0 {
		return
	}

	if err := h.commentService.MarkNotificationRead(c.Request.Context(), userID, notificationID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Notification marked as read"})
}
