package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"formcraft-backend-go/internal/core"
	"formcraft-backend-go/internal/middleware"
)

// Services groups the core services the handlers depend on.
type Services struct {
	Users       core.UserService
	Identity    core.IdentityService
	Forms       core.FormService
	PublicForms core.PublicFormService
	Submissions core.SubmissionService
	Generator   core.GeneratorService
	Contact     core.ContactService
	Admin       core.AdminService
	Templates   core.TemplateService
}

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (RequestID, Logging, Recovery, CORS) is expected to be applied to
// the router before this function is called, typically in main.go.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
	svc Services,
) {
	// --- Initialize Handlers ---
	authHandler := NewAuthHandler(svc.Identity, svc.Users, logger)
	userHandler := NewUserHandler(svc.Users, logger)
	formHandler := NewFormHandler(svc.Forms, svc.Generator, logger)
	submissionHandler := NewSubmissionHandler(svc.Submissions, logger)
	publicHandler := NewPublicHandler(svc.PublicForms, svc.Submissions, svc.Contact, logger)
	templateHandler := NewTemplateHandler(svc.Templates)
	adminHandler := NewAdminHandler(svc.Admin, svc.Users, svc.Contact, logger)

	requireAuth := authMW.VerifyToken()
	rateLimited := limiter.Limit()

	apiV1 := router.Group("/api/v1")
	{
		// --- Account and Session Endpoints ---
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup", rateLimited, authHandler.SignUp)
			// Sign-out revokes refresh tokens, so later token checks report a revoked session.
			authGroup.POST("/signout", requireAuth, authHandler.SignOut)
			authGroup.GET("/session", requireAuth, authHandler.Session)
		}

		userGroup := apiV1.Group("/users", requireAuth)
		{
			// POST /api/v1/users/sync - called after every client-side sign-in.
			userGroup.POST("/sync", authHandler.SyncUser)
			userGroup.GET("/me", userHandler.GetCurrentUserProfile)
		}

		// --- Form Builder Endpoints ---
		// Access (owner, collaborator, admin) is checked within the FormService methods.
		formsGroup := apiV1.Group("/forms", requireAuth)
		{
			formsGroup.GET("", formHandler.ListForms)
			formsGroup.POST("", formHandler.CreateForm)
			formsGroup.POST("/generate", rateLimited, formHandler.GenerateForm)
			formsGroup.POST("/from-template/:templateId", formHandler.CreateFromTemplate)
			formsGroup.GET("/:formId", formHandler.GetForm)
			formsGroup.PUT("/:formId", formHandler.UpdateForm)
			formsGroup.DELETE("/:formId", formHandler.DeleteForm)
			formsGroup.POST("/:formId/publish", formHandler.PublishForm)
			formsGroup.POST("/:formId/complete", formHandler.CompleteForm)
			formsGroup.POST("/:formId/unpublish", formHandler.UnpublishForm)
			formsGroup.POST("/:formId/duplicate", formHandler.DuplicateForm)
			formsGroup.PUT("/:formId/slug", formHandler.SetSlug)
			formsGroup.POST("/:formId/collaborators", formHandler.AddCollaborator)
			formsGroup.DELETE("/:formId/collaborators/:email", formHandler.RemoveCollaborator)

			// Response dashboard, nested under a specific form.
			submissionsGroup := formsGroup.Group("/:formId/submissions")
			{
				submissionsGroup.GET("", submissionHandler.ListSubmissions)
				submissionsGroup.GET("/export", submissionHandler.ExportCSV)
				submissionsGroup.GET("/:submissionId", submissionHandler.GetSubmission)
				submissionsGroup.DELETE("/:submissionId", submissionHandler.DeleteSubmission)
			}
		}

		apiV1.GET("/templates", requireAuth, templateHandler.ListTemplates)

		// --- Respondent Endpoints ---
		// No account is required; a valid token, when sent, identifies the respondent.
		publicGroup := apiV1.Group("/public", authMW.OptionalToken())
		{
			publicGroup.GET("/forms/:idOrSlug", publicHandler.GetPublishedForm)
			publicGroup.POST("/forms/:idOrSlug/submissions", rateLimited, publicHandler.Submit)
			publicGroup.POST("/contact", rateLimited, publicHandler.SubmitContact)
		}

		// --- Admin Console ---
		adminGroup := apiV1.Group("/admin", requireAuth, middleware.RequireAdmin())
		{
			adminGroup.GET("/overview", adminHandler.Overview)
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.PUT("/users/:userId/role", adminHandler.SetUserRole)
			adminGroup.GET("/forms", adminHandler.ListForms)
			adminGroup.GET("/activity", adminHandler.ListActivity)
			adminGroup.GET("/contacts", adminHandler.ListContacts)
			adminGroup.PUT("/contacts/:messageId/read", adminHandler.MarkContactRead)
		}
	}

	// --- General Health Check Endpoint ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "FormCraft backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
