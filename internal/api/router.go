package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/synapse/internal/api/handlers"
	mw "github.com/Harshitk-cp/synapse/internal/api/middleware"
	"github.com/Harshitk-cp/synapse/internal/buildconfig"
	"github.com/Harshitk-cp/synapse/internal/config"
	"github.com/Harshitk-cp/synapse/internal/domain"
	"github.com/Harshitk-cp/synapse/internal/llm"
	"github.com/Harshitk-cp/synapse/internal/memory"
	"github.com/Harshitk-cp/synapse/internal/retrieval"
	"github.com/Harshitk-cp/synapse/internal/service"
	"github.com/Harshitk-cp/synapse/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router   *chi.Mux
	Feedback *service.FeedbackService

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp wires stores, backend clients, services and handlers into one
// router. A nil db keeps findings in process memory only.
func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	var findingStore domain.FindingStore
	if db != nil {
		findingStore = store.NewFindingStore(db)
		logger.Info("using durable finding store")
	} else {
		findingStore = store.NewMemoryFindingStore()
		logger.Info("using in-memory finding store")
	}

	// Backend clients
	memoryClient := memory.NewClient(config.MemoryServiceURL(), logger)
	retrievalClient := retrieval.NewClient(config.RetrievalServiceURL(), logger)

	generator, err := llm.NewClient(config.LLMProvider(), config.LLMAPIKey())
	if err != nil {
		// A nil generator must never reach the orchestrator. The mock
		// keeps the server answering (with canned generation) until the
		// provider is configured.
		logger.Warn("LLM client initialization failed, falling back to mock provider",
			zap.String("provider", config.LLMProvider()), zap.Error(err))
		generator = llm.NewMockClient()
	} else {
		logger.Info("LLM client initialized", zap.String("provider", config.LLMProvider()))
	}

	// Services
	intentSvc := service.NewIntentService(generator, logger)
	groundingSvc := service.NewGroundingService(memoryClient, logger)
	feedbackSvc := service.NewFeedbackService(findingStore, memoryClient, logger)
	feedbackSvc.SetFlushInterval(config.FeedbackFlushInterval())

	orch := service.NewOrchestrator(intentSvc, groundingSvc, feedbackSvc,
		memoryClient, retrievalClient, generator,
		service.Options{
			MemoryBlendWeight: config.MemoryBlendWeight(),
			BackendTimeout:    config.BackendTimeout(),
			RetrievalTopK:     config.RetrievalTopK(),
			QueryCacheTTL:     config.QueryCacheTTL(),
		}, logger)

	// Handlers
	queryHandler := handlers.NewQueryHandler(orch)
	findingsHandler := handlers.NewFindingsHandler(feedbackSvc)
	intentHandler := handlers.NewIntentHandler(intentSvc)
	entityHandler := handlers.NewEntityHandler(groundingSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Feedback:  feedbackSvc,
		startTime: time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler(db, memoryClient))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", queryHandler.Query)
		r.Get("/query/stream", queryHandler.Stream)

		r.Get("/intents/stats", intentHandler.Stats)

		r.Route("/findings", func(r chi.Router) {
			r.Get("/", findingsHandler.Pending)
			r.Post("/process", findingsHandler.Process)
		})

		r.Post("/entities/resolve", entityHandler.Resolve)
	})

	return app
}

// healthHandler reports liveness. The findings database is only checked
// when one is configured; the memory backend is reported but never fails
// the check, since the orchestrator degrades without it.
func healthHandler(db *pgxpool.Pool, memoryClient domain.MemoryClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}

		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}

		if err := memoryClient.Ping(r.Context()); err != nil {
			status["memory_backend"] = "unreachable"
		} else {
			status["memory_backend"] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"build":      buildconfig.VersionInfo(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.FindingStore     = (*store.FindingStore)(nil)
	_ domain.FindingStore     = (*store.MemoryFindingStore)(nil)
	_ domain.MemoryClient     = (*memory.Client)(nil)
	_ domain.MemoryClient     = (*memory.MockClient)(nil)
	_ domain.RetrievalClient  = (*retrieval.Client)(nil)
	_ domain.RetrievalClient  = (*retrieval.MockClient)(nil)
	_ domain.GenerativeClient = (*llm.OpenAIClient)(nil)
	_ domain.GenerativeClient = (*llm.MockClient)(nil)
)
