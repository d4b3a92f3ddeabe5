package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CAPS-2026/degreeplan-service/internal/config"
	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
	"github.com/CAPS-2026/degreeplan-service/internal/services"
	"github.com/CAPS-2026/degreeplan-service/internal/utils"
	"github.com/CAPS-2026/degreeplan-service/internal/validator"
)

type HandlerManager struct {
	degreePlanHandler *DegreePlanHandler
	commentHandler    *CommentHandler
	graduationHandler *GraduationHandler
	userHandler       *UserHandler
	authMiddleware    *CasdoorAuthMiddleware
	serviceManager    services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		degreePlanHandler: NewDegreePlanHandler(serviceManager.DegreePlan(), validator, logger),
		commentHandler:    NewCommentHandler(serviceManager.Comment(), validator, logger),
		graduationHandler: NewGraduationHandler(serviceManager.Graduation(), validator, logger),
		userHandler:       NewUserHandler(serviceManager.User(), validator, logger),
		authMiddleware:    authMiddleware,
		serviceManager:    serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Degree plan routes. Reads are open to any authenticated user and
		// access-checked per student in the service; writes are gated to
		// admins and advisors up front.
		students := v1.Group("/students")
		{
			students.GET("/:school_id/degree-plan", hm.degreePlanHandler.GetPlan)
			students.PUT("/:school_id/degree-plan/courses",
				hm.authMiddleware.RequireRoleMiddleware(models.RoleAdvisor),
				hm.degreePlanHandler.UpdateCourseStatus)
		}

		// Comment routes
		comments := v1.Group("/comments")
		{
			comments.POST("", hm.commentHandler.CreateComment)
			comments.GET("", hm.commentHandler.ListComments)
			comments.PUT("/:id", hm.commentHandler.UpdateComment)
			comments.DELETE("/:id", hm.commentHandler.DeleteComment)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", hm.commentHandler.ListNotifications)
			notifications.PUT("/:id/read", hm.commentHandler.MarkNotificationRead)
		}

		// Graduation routes
		graduation := v1.Group("/graduation")
		{
			graduation.POST("/applications",
				hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent),
				hm.graduationHandler.Apply)
			graduation.GET("/applications",
				hm.authMiddleware.RequireRoleMiddleware(models.RoleAccounting, models.RoleAdvisor),
				hm.graduationHandler.ListApplications)
			graduation.GET("/applications/export",
				hm.authMiddleware.RequireRoleMiddleware(models.RoleAccounting, models.RoleAdvisor),
				hm.graduationHandler.ExportApplications)
			graduation.PUT("/applications/:id/status",
				hm.authMiddleware.RequireRoleMiddleware(models.RoleAccounting, models.RoleAdvisor),
				hm.graduationHandler.UpdateApplicationStatus)
		}

		// User administration routes
		users := v1.Group("/users")
		{
			users.POST("", hm.authMiddleware.RequireRoleMiddleware(), hm.userHandler.CreateUser)
			users.GET("", hm.authMiddleware.RequireRoleMiddleware(), hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(), hm.userHandler.DeleteUser)

			users.POST("/:id/roles", hm.authMiddleware.RequireRoleMiddleware(), hm.userHandler.AssignRole)
			users.DELETE("/:id/roles", hm.authMiddleware.RequireRoleMiddleware(), hm.userHandler.RemoveRole)

			users.POST("/advising", hm.authMiddleware.RequireRoleMiddleware(), hm.userHandler.CreateAdvisingRelation)
			users.DELETE("/advising", hm.authMiddleware.RequireRoleMiddleware(), hm.userHandler.DeleteAdvisingRelation)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "degreeplan-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
