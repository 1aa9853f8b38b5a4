package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/credence/internal/api/handlers"
	mw "github.com/Harshitk-cp/credence/internal/api/middleware"
	"github.com/Harshitk-cp/credence/internal/buildconfig"
	"github.com/Harshitk-cp/credence/internal/config"
	"github.com/Harshitk-cp/credence/internal/service"
)

// Pinger reports database liveness for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App holds the router and the background processor for lifecycle management.
type App struct {
	Router    *chi.Mux
	Processor *service.ProcessorService
	metrics   *mw.Metrics
	startTime time.Time
}

func NewApp(db Pinger, pipeline *service.Pipeline, processor *service.ProcessorService, logger *zap.Logger) *App {
	documentHandler := handlers.NewDocumentHandler(pipeline, processor, logger)
	searchHandler := handlers.NewSearchHandler(pipeline, logger)

	r := chi.NewRouter()
	app := &App{
		Router:    r,
		Processor: processor,
		metrics:   &mw.Metrics{},
		startTime: time.Now(),
	}

	// Order matters: the request id must exist before anything logs.
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKey()))

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", documentHandler.Create)
			r.Post("/process", documentHandler.Process)
			r.Get("/{id}", documentHandler.GetByID)
		})
		r.Post("/search", searchHandler.Search)
	})

	return app
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"status": "ok", "build": buildconfig.VersionInfo()}
		status := http.StatusOK
		if err := db.Ping(r.Context()); err != nil {
			resp["status"] = "error"
			resp["error"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		uptime := time.Since(app.startTime)

		response := app.metrics.Snapshot()
		response["uptime_seconds"] = uptime.Seconds()
		response["uptime_human"] = uptime.Round(time.Second).String()
		response["goroutines"] = runtime.NumGoroutine()
		response["memory"] = map[string]any{
			"alloc_mb": float64(memStats.Alloc) / 1024 / 1024,
			"sys_mb":   float64(memStats.Sys) / 1024 / 1024,
			"num_gc":   memStats.NumGC,
		}
		response["go_version"] = runtime.Version()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

var (
	_ handlers.DocumentService = (*service.Pipeline)(nil)
	_ handlers.Searcher        = (*service.Pipeline)(nil)
	_ handlers.BatchRunner     = (*service.ProcessorService)(nil)
)
