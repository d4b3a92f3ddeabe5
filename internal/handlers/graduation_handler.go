package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/services"
	"github.com/CAPS-2026/degreeplan-service/internal/utils"
	"github.com/CAPS-2026/degreeplan-service/internal/validator"
)

type GraduationHandler struct {
	BaseHandler
	graduationService services.GraduationService
	validator         *validator.Validator
}

func NewGraduationHandler(graduationService services.GraduationService, validator *validator.Validator, logger utils.Logger) *GraduationHandler {
	return &GraduationHandler{
		BaseHandler:       NewBaseHandler(logger),
		graduationService: graduationService,
		validator:         validator,
	}
}

// Apply creates the requester's graduation application
// @Summary Apply for graduation
// @Tags graduation
// @Accept json
// @Produce json
// @Param application body services.GraduationApplyRequest true "Application data"
// @Success 201 {object} services.ApplicationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /graduation/applications [post]
func (h *GraduationHandler) Apply(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.GraduationApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	application, err := h.graduationService.Apply(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

// ListApplications returns the applications visible to the requester
// @Summary List graduation applications
// @Tags graduation
// @Produce json
// @Param status query string false "Filter by status"
// @Param program_id query uint false "Filter by program"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.ApplicationListResponse
// @Failure 403 {object} ErrorResponse
// @Router /graduation/applications [get]
func (h *GraduationHandler) ListApplications(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	req, ok := h.parseListRequest(c)
	if !ok {
		return
	}

	applications, err := h.graduationService.List(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, applications)
}

// UpdateApplicationStatus advances an application's status
// @Summary Update application status
// @Tags graduation
// @Accept json
// @Produce json
// @Param id path uint true "Application ID"
// @Param status body services.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} services.ApplicationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /graduation/applications/{id}/status [put]
func (h *GraduationHandler) UpdateApplicationStatus(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	applicationID := h.parseIDParam(c, "id")
	if applicationID == 0 {
		return
	}

	var req services.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	application, err := h.graduationService.UpdateStatus(c.Request.Context(), userID, applicationID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

// ExportApplications streams an xlsx export of visible applications
// @Summary Export graduation applications
// @Tags graduation
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Filter by status"
// @Param program_id query uint false "Filter by program"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /graduation/applications/export [get]
func (h *GraduationHandler) ExportApplications(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	req, ok := h.parseListRequest(c)
	if !ok {
		return
	}

	result, err := h.graduationService.Export(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func (h *GraduationHandler) parseListRequest(c *gin.Context) (*services.ListApplicationsRequest, bool) {
	req := &services.ListApplicationsRequest{}

	if raw := c.Query("status"); raw != "" {
		status, valid := models.ParseApplicationStatus(raw)
		if !valid {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_parameter",
				Message: "Invalid status filter",
				Details: raw,
			})
			return nil, false
		}
		req.Status = &status
	}

	if raw := c.Query("program_id"); raw != "" {
		programID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || programID == 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_parameter",
				Message: "Invalid program_id filter",
				Details: raw,
			})
			return nil, false
		}
		id := uint(programID)
		req.ProgramID = &id
	}

	req.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	req.PageSize, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	return req, true
}
