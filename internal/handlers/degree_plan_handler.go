package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CAPS-2026/degreeplan-service/internal/services"
	"github.com/CAPS-2026/degreeplan-service/internal/utils"
	"github.com/CAPS-2026/degreeplan-service/internal/validator"
)

type DegreePlanHandler struct {
	BaseHandler
	planService services.DegreePlanService
	validator   *validator.Validator
}

func NewDegreePlanHandler(planService services.DegreePlanService, validator *validator.Validator, logger utils.Logger) *DegreePlanHandler {
	return &DegreePlanHandler{
		BaseHandler: NewBaseHandler(logger),
		planService: planService,
		validator:   validator,
	}
}

// GetPlan returns a student's degree plan
// @Summary Get degree plan
// @Description Returns the student's plan grouped by semester or requirement
// @Tags degree-plans
// @Produce json
// @Param school_id path string true "School student ID"
// @Param program_id query uint true "Program ID"
// @Param view query string false "View type: semester or requirements"
// @Success 200 {object} services.DegreePlanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /students/{school_id}/degree-plan [get]
func (h *DegreePlanHandler) GetPlan(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	schoolID := c.Param("school_id")
	programID, err := strconv.ParseUint(c.Query("program_id"), 10, 32)
	if err != nil || programID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_parameter",
			Message: "program_id query parameter is required",
		})
		return
	}

	view := services.PlanView(c.DefaultQuery("view", string(services.PlanViewSemester)))
	if view != services.PlanViewSemester && view != services.PlanViewRequirements {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_parameter",
			Message: "view must be 'semester' or 'requirements'",
		})
		return
	}

	h.LogRequest(c, "Getting degree plan", "school_id", schoolID, "program_id", programID, "view", view)

	plan, err := h.planService.GetPlan(c.Request.Context(), userID, schoolID, uint(programID), view)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// UpdateCourseStatus applies a course status transition
// @Summary Update course status
// @Description Validates prerequisite ordering and applies a single course-status change
// @Tags degree-plans
// @Accept json
// @Produce json
// @Param school_id path string true "School student ID"
// @Param update body services.UpdateCourseStatusRequest true "Status update"
// @Success 200 {object} services.PlanEntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /students/{school_id}/degree-plan/courses [put]
func (h *DegreePlanHandler) UpdateCourseStatus(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateCourseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	schoolID := c.Param("school_id")
	h.LogRequest(c, "Updating course status",
		"school_id", schoolID,
		"course_id", req.CourseID,
		"status", req.Status)

	entry, err := h.planService.UpdateCourseStatus(c.Request.Context(), userID, schoolID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}
