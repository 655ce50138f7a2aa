package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	auth "github.com/mind-engage/langinsight/internal/auth/middleware"
	"github.com/mind-engage/langinsight/internal/dataset"
	"github.com/mind-engage/langinsight/internal/eventlog"
	"github.com/mind-engage/langinsight/internal/interpret"
	"github.com/mind-engage/langinsight/internal/logger"
	"github.com/mind-engage/langinsight/internal/rbac"
	"github.com/mind-engage/langinsight/internal/recent"
	"github.com/mind-engage/langinsight/internal/storage"
	"github.com/mind-engage/langinsight/internal/users"
)

type Deps struct {
	Log      *logger.Logger
	Auth     *auth.AuthService
	Users    *users.Store
	Datasets *dataset.Service
	Matcher  *interpret.Matcher
	Recent   *recent.List
	Blobs    storage.BlobStore
	Events   *eventlog.Repo // optional

	CORSOrigins     []string
	EnableLocalAuth bool
	// RoleClaimFallback keeps the token's role when the users table lookup fails.
	RoleClaimFallback bool
}

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(d.Log), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if d.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(d.Auth, d.Users))
	}
	r.Get("/healthz", HealthzHandler)
	r.Get("/readyz", ReadyzHandler(d.Datasets))

	// Protected API (JWT → role in context → RBAC)
	r.Route("/api", func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))
		pr.Use(auth.AttachRoleFromDB(d.Users, d.RoleClaimFallback))

		pr.With(rbac.Require("student:list")).
			Get("/students", ListStudentsHandler(d.Datasets))
		pr.Route("/students/{studentID}", func(sr chi.Router) {
			sr.With(rbac.Require("student:view")).
				Get("/assessments", AssessmentsHandler(d.Datasets))
			sr.With(rbac.Require("report:view")).
				Get("/report", ReportHandler(d.Datasets))
			sr.With(rbac.Require("report:view")).
				Get("/insights", InsightsHandler(d.Datasets))
			sr.With(rbac.Require("report:export")).
				Get("/export", ExportHandler(d.Datasets))
		})

		pr.With(rbac.Require("recent:view")).
			Get("/recent", ListRecentHandler(d.Recent))
		pr.With(rbac.Require("recent:update")).
			Post("/recent/{studentID}", TouchRecentHandler(d.Recent, d.Datasets))

		pr.With(rbac.Require("dataset:view")).
			Get("/datasets/current", CurrentDatasetHandler(d.Datasets))
		pr.With(rbac.Require("dataset:view")).
			Get("/datasets/current/raw", RawDatasetHandler(d.Datasets, d.Blobs))
		pr.With(rbac.Require("dataset:upload")).
			Post("/datasets", UploadDatasetHandler(d.Datasets))

		pr.With(rbac.Require("rules:view")).
			Get("/rules", RulesHandler(d.Matcher))

		// Users (admin)
		pr.With(rbac.Require("users:list")).
			Get("/users", ListUsersHandler(d.Users))
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users", BulkUpsertUsersHandler(d.Users))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", ChangePasswordHandler(d.Users))

		if d.Events != nil {
			pr.With(rbac.Require("admin:audit")).
				Get("/admin/events", AdminEventsHandler(d.Events))
		}
	})
	return r
}
