package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evaluation-registry/internal/services"
	"github.com/SAP-F-2025/evaluation-registry/internal/utils"
)

const serviceName = "evaluation-registry"

type HandlerManager struct {
	userHandler       *UserHandler
	courseHandler     *CourseHandler
	enrollmentHandler *EnrollmentHandler
	evaluationHandler *EvaluationHandler
	ledgerHandler     *LedgerHandler

	serviceManager services.ServiceManager
	callerResolver CallerResolver
	importExport   bool
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	callerResolver CallerResolver,
) *HandlerManager {
	importExport := serviceManager.ImportExport()

	return &HandlerManager{
		userHandler:       NewUserHandler(serviceManager.Access(), logger),
		courseHandler:     NewCourseHandler(serviceManager.Course(), logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), importExport, logger),
		evaluationHandler: NewEvaluationHandler(serviceManager.Evaluation(), logger),
		ledgerHandler:     NewLedgerHandler(serviceManager.Ledger(), importExport, logger),
		serviceManager:    serviceManager,
		callerResolver:    callerResolver,
		importExport:      importExport != nil,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(CallerMiddleware(hm.callerResolver))
	{
		users := v1.Group("/users")
		{
			users.POST("/register", hm.userHandler.Register)
			users.POST("/login", hm.userHandler.Login)
			users.GET("/me", hm.userHandler.GetCurrentUser)
			users.PUT("/me/email", hm.userHandler.UpdateEmail)
			users.PUT("/me/password", hm.userHandler.ChangePassword)
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:address", hm.userHandler.GetUser)
		}

		courses := v1.Group("/courses")
		{
			courses.POST("", hm.courseHandler.AddCourse)
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.PUT("/:id", hm.courseHandler.UpdateCourse)
			courses.PUT("/:id/active", hm.courseHandler.SetCourseActive)

			courses.POST("/:id/students", hm.enrollmentHandler.MarkStudent)
			courses.GET("/:id/students", hm.enrollmentHandler.GetCourseStudents)

			courses.POST("/:id/evaluations", hm.evaluationHandler.SubmitEvaluation)
			courses.GET("/:id/evaluations", hm.evaluationHandler.GetCourseEvaluations)
		}

		if hm.importExport {
			v1.POST("/enrollments/import", hm.enrollmentHandler.ImportEnrollments)
		}
		v1.GET("/teachers/me/courses", hm.courseHandler.GetTeacherCourses)

		students := v1.Group("/students/me")
		{
			students.GET("/courses", hm.enrollmentHandler.GetStudentCourses)
			students.GET("/evaluations", hm.evaluationHandler.GetStudentEvaluations)
		}

		ledger := v1.Group("/ledger")
		{
			ledger.GET("", hm.ledgerHandler.GetLedger)
			ledger.GET("/verify", hm.ledgerHandler.VerifyLedger)
			if hm.importExport {
				ledger.GET("/export", hm.ledgerHandler.ExportLedger)
			}
		}
	}

	// Health check endpoint
	router.GET("/health", hm.health)
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
