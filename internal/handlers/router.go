package handlers

import (
	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/services"
	"github.com/SAP-F-2025/quiz-portal/internal/session"
	"github.com/SAP-F-2025/quiz-portal/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	authHandler    *AuthHandler
	quizHandler    *QuizHandler
	attemptHandler *AttemptHandler
	sessionHandler *SessionHandler
	adminHandler   *AdminHandler

	resolver *identity.Resolver
	verifier identity.TokenVerifier
	logger   utils.Logger
}

// NewHandlerManager wires handlers to services. verifier authenticates
// bearer tokens on every protected route; google backs the sign-in
// exchange and may be nil when Google sign-in is disabled.
func NewHandlerManager(
	serviceManager services.ServiceManager,
	resolver *identity.Resolver,
	verifier identity.TokenVerifier,
	google identity.TokenVerifier,
	logger utils.Logger,
	sessionOpts ...session.Option,
) *HandlerManager {
	return &HandlerManager{
		authHandler:    NewAuthHandler(resolver, google, serviceManager.User(), logger),
		quizHandler:    NewQuizHandler(serviceManager.Quiz(), serviceManager.Export(), logger),
		attemptHandler: NewAttemptHandler(serviceManager.Attempt(), logger),
		sessionHandler: NewSessionHandler(serviceManager.Quiz(), serviceManager.Attempt(), logger, sessionOpts...),
		adminHandler:   NewAdminHandler(serviceManager.User(), serviceManager.Analytics(), logger),
		resolver:       resolver,
		verifier:       verifier,
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.POST("/auth/google", hm.authHandler.GoogleSignIn)

	protected := v1.Group("")
	protected.Use(AuthMiddleware(hm.resolver, hm.verifier, hm.logger))
	{
		protected.GET("/me", hm.authHandler.Me)
		protected.PUT("/me/profile", hm.authHandler.CompleteProfile)

		quizzes := protected.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("/mine", hm.quizHandler.ListMyQuizzes)
			quizzes.GET("/available", hm.quizHandler.ListAvailable)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
			quizzes.GET("/:id/results", hm.quizHandler.GetResults)
			quizzes.GET("/:id/results/export", hm.quizHandler.ExportResults)
			quizzes.GET("/:id/session", hm.sessionHandler.ServeSession)
		}

		attempts := protected.Group("/attempts")
		{
			attempts.POST("", hm.attemptHandler.SubmitAttempt)
			attempts.GET("/mine", hm.attemptHandler.ListMyAttempts)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
		}

		admin := protected.Group("/admin")
		admin.Use(RoleMiddleware(models.RoleAdmin))
		{
			admin.GET("/overview", hm.adminHandler.Overview)
			admin.GET("/analytics", hm.adminHandler.Analytics)
			admin.GET("/students", hm.adminHandler.ListStudents)
			admin.DELETE("/students/:id", hm.adminHandler.DeleteStudent)
			admin.GET("/teachers", hm.adminHandler.ListTeachers)
			admin.POST("/teachers", hm.adminHandler.CreateTeacher)
			admin.DELETE("/teachers/:id", hm.adminHandler.DeleteTeacher)
		}
	}
}
