package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CAPS-2026/degreeplan-service/internal/services"
	"github.com/CAPS-2026/degreeplan-service/internal/utils"
	"github.com/CAPS-2026/degreeplan-service/internal/validator"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the shared pieces every handler needs: the logger and
// the service error mapping.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.LoggerFromContext(c.Request.Context(), h.logger).Info(msg, args...)
}

// parseIDParam parses a positive integer path parameter. On failure it writes
// the 400 response itself and returns 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_parameter",
			Message: "Invalid " + name + " parameter",
			Details: raw,
		})
		return 0
	}
	return uint(id)
}

// currentUserID returns the authenticated user's ID, writing the 401 response
// itself when authentication is missing.
func (h *BaseHandler) currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return "", false
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return "", false
	}
	return id, true
}

// handleServiceError translates service-layer errors into HTTP responses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Request validation failed",
			Details: validationErrs,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
	case services.IsPermissionDenied(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You do not have permission to perform this action",
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})
	case services.IsPrerequisiteViolation(err):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "prerequisite_not_satisfied",
			Message: err.Error(),
		})
	case services.IsBusinessRuleViolation(err):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "business_rule_violation",
			Message: err.Error(),
		})
	default:
		utils.LoggerFromContext(c.Request.Context(), h.logger).Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
