package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/asc-academy/evaluation-portal/internal/auth"
	"github.com/asc-academy/evaluation-portal/internal/department"
	"github.com/asc-academy/evaluation-portal/internal/evaluation"
	"github.com/asc-academy/evaluation-portal/internal/report"
	"github.com/asc-academy/evaluation-portal/internal/transport/middleware"
	"github.com/asc-academy/evaluation-portal/internal/transport/swagger"
	"github.com/asc-academy/evaluation-portal/internal/user"
	"github.com/asc-academy/evaluation-portal/internal/userdata"
	"github.com/go-chi/chi"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *auth.Handler
	Access     *auth.Access
	Department *department.Handler
	User       *user.Handler
	Evaluation *evaluation.Handler
	UserData   *userdata.Handler
	Report     *report.Handler
}

// RegisterAllRoutes mounts the API under /api/v1. Registration and login are
// public; everything else requires a bearer token, with write access to
// departments and evaluations restricted to admins.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORSWithOrigins(allowedOrigins))
	router.Use(middleware.TraceID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/register", h.Auth.Register)
			sr.Post("/login", h.Auth.Login)
		})

		// Protected routes
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/departments", func(dr chi.Router) {
				dr.Get("/", h.Department.List)
				dr.Get("/{id}", h.Department.Get)

				dr.Group(func(ar chi.Router) {
					ar.Use(h.Access.RequireAdmin)
					ar.Post("/", h.Department.Create)
					ar.Put("/{id}", h.Department.Update)
					ar.Delete("/{id}", h.Department.Delete)
				})
			})

			pr.Route("/users", func(ur chi.Router) {
				ur.Group(func(ar chi.Router) {
					ar.Use(h.Access.RequireAdmin)
					ar.Get("/", h.User.List)
				})

				// self-or-admin enforced in the service layer
				ur.Get("/{id}", h.User.Get)
				ur.Put("/{id}", h.User.Update)
				ur.Delete("/{id}", h.User.Delete)
			})

			pr.Route("/evaluations", func(er chi.Router) {
				er.Get("/", h.Evaluation.List)
				er.Get("/user/{userId}", h.Evaluation.ListByUser)
				er.Get("/{id}", h.Evaluation.Get)

				er.Group(func(ar chi.Router) {
					ar.Use(h.Access.RequireAdmin)
					ar.Get("/export", h.Report.Export)
					ar.Post("/", h.Evaluation.Create)
					ar.Put("/{id}", h.Evaluation.Update)
					ar.Delete("/{id}", h.Evaluation.Delete)
				})
			})

			pr.Route("/user-data", func(dr chi.Router) {
				dr.Post("/", h.UserData.Create)
				dr.Get("/user/{userId}", h.UserData.ListByUser)
				dr.Get("/{id}", h.UserData.Get)
				dr.Put("/{id}", h.UserData.Update)
				dr.Delete("/{id}", h.UserData.Delete)

				dr.Group(func(ar chi.Router) {
					ar.Use(h.Access.RequireAdmin)
					ar.Get("/", h.UserData.ListAll)
				})
			})
		})
	})
}
