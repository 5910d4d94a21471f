package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/Hesed2817/taskflow-app/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	User    *apiHandler.UserHandler
	Project *apiHandler.ProjectHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Public auth routes
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/forgot-password", handlers.Auth.ForgotPassword)
	r.POST("/api/v1/auth/reset-password", handlers.Auth.ResetPassword)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Users
	r.GET("/api/v1/users/me", authMiddleware(handlers.User.Me))
	r.PUT("/api/v1/users/me", authMiddleware(handlers.User.UpdateMe))
	r.DELETE("/api/v1/users/me", authMiddleware(handlers.User.DeleteMe))
	r.PUT("/api/v1/users/me/password", authMiddleware(handlers.User.ChangePassword))
	r.GET("/api/v1/users/search", authMiddleware(handlers.User.Search))

	// Projects
	r.GET("/api/v1/projects", authMiddleware(handlers.Project.List))
	r.POST("/api/v1/projects", authMiddleware(handlers.Project.Create))
	r.GET("/api/v1/projects/{id}", authMiddleware(handlers.Project.Get))
	r.PUT("/api/v1/projects/{id}", authMiddleware(handlers.Project.Update))
	r.DELETE("/api/v1/projects/{id}", authMiddleware(handlers.Project.Delete))
	r.POST("/api/v1/projects/{id}/members", authMiddleware(handlers.Project.AddMember))
	r.DELETE("/api/v1/projects/{id}/members/{userId}", authMiddleware(handlers.Project.RemoveMember))
	r.POST("/api/v1/projects/{id}/transfer", authMiddleware(handlers.Project.TransferOwnership))

	// Tasks
	r.POST("/api/v1/projects/{id}/tasks", authMiddleware(handlers.Task.Create))
	r.GET("/api/v1/projects/{id}/tasks", authMiddleware(handlers.Task.ListByProject))
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.Filter))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Get))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Update))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.Delete))

	return r
}
