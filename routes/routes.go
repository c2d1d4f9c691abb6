package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sapiens-platform/sapiens/app"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// HTML pages
	r.Get("/", deps.PagesHandler.HandleIndex)
	r.Get("/sobre", deps.PagesHandler.HandleAbout)
	r.Get("/analise", deps.AnalysisHandler.HandleForm)
	r.Post("/analise", deps.AnalysisHandler.HandleCreate)
	r.Get("/resultados/{id}", deps.AnalysisHandler.HandleResults)

	// Analysis tracking and uploads
	r.Get("/status/{id}", deps.AnalysisHandler.HandleStatus)
	r.Post("/upload", deps.UploadHandler.HandleUpload)

	// Public API
	r.Get("/api/health", deps.HealthHandler.HandleHealth)
	r.Post("/api/query", deps.QueryHandler.HandleQuery)

	// Audit admin API (requires auditor role)
	r.Route("/api/audit", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)
		r.Use(deps.AuthMiddleware.RequireRole("auditor"))
		r.Get("/statistics", deps.AuditHandler.HandleStatistics)
		r.Post("/export", deps.AuditHandler.HandleExport)
	})

	// Prometheus metrics
	if deps.Config.Observability.MetricsEnabled {
		r.Get("/metrics", deps.Metrics.Handler().ServeHTTP)
	}

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Recurso não encontrado"}`))
	})

	return r
}
