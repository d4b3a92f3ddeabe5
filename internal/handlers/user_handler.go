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

type UserHandler struct {
	BaseHandler
	userService services.UserService
	validator   *validator.Validator
}

func NewUserHandler(userService services.UserService, validator *validator.Validator, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
		validator:   validator,
	}
}

// CreateUser provisions a user with initial roles
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.CreateUserRequest true "User data"
// @Success 201 {object} services.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user, err := h.userService.Create(c.Request.Context(), actorID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetUser returns a user with their roles
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} services.UserResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers returns users matching the given filters
// @Summary List users
// @Tags users
// @Produce json
// @Param role query string false "Filter by role"
// @Param q query string false "Match name or email"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.UserListResponse
// @Failure 403 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	req := &services.ListUsersRequest{Query: c.Query("q")}
	if raw := c.Query("role"); raw != "" {
		role, valid := models.ParseRoleName(raw)
		if !valid {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_parameter",
				Message: "Invalid role filter",
				Details: raw,
			})
			return
		}
		req.Role = &role
	}
	req.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	req.PageSize, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	users, err := h.userService.List(c.Request.Context(), actorID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// DeleteUser soft-deletes a user
// @Summary Delete user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actorID, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "User deleted"})
}

// AssignRole grants a role to a user
// @Summary Assign role
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param role body services.RoleRequest true "Role to assign"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id}/roles [post]
func (h *UserHandler) AssignRole(c *gin.Context) {
	h.changeRole(c, true)
}

// RemoveRole revokes a role from a user
// @Summary Remove role
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param role body services.RoleRequest true "Role to remove"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id}/roles [delete]
func (h *UserHandler) RemoveRole(c *gin.Context) {
	h.changeRole(c, false)
}

func (h *UserHandler) changeRole(c *gin.Context, assign bool) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	var err error
	if assign {
		err = h.userService.AssignRole(c.Request.Context(), actorID, c.Param("id"), &req)
	} else {
		err = h.userService.RemoveRole(c.Request.Context(), actorID, c.Param("id"), &req)
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Role updated"})
}

// CreateAdvisingRelation links an advisor to a student
// @Summary Create advising relation
// @Tags users
// @Accept json
// @Produce json
// @Param relation body services.AdvisingRelationRequest true "Advisor-student pair"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/advising [post]
func (h *UserHandler) CreateAdvisingRelation(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.AdvisingRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.userService.CreateAdvisingRelation(c.Request.Context(), actorID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Message: "Advising relation created"})
}

// DeleteAdvisingRelation removes an advisor-student link
// @Summary Delete advising relation
// @Tags users
// @Accept json
// @Produce json
// @Param relation body services.AdvisingRelationRequest true "Advisor-student pair"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/advising [delete]
func (h *UserHandler) DeleteAdvisingRelation(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.AdvisingRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.userService.DeleteAdvisingRelation(c.Request.Context(), actorID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Advising relation deleted"})
}
