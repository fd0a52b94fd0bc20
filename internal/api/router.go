package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/relayhq/dispatch/internal/api/handlers"
	mw "github.com/relayhq/dispatch/internal/api/middleware"
	"github.com/relayhq/dispatch/internal/config"
	"github.com/relayhq/dispatch/internal/domain"
	"github.com/relayhq/dispatch/internal/embedding"
	"github.com/relayhq/dispatch/internal/llm"
	"github.com/relayhq/dispatch/internal/service"
	"github.com/relayhq/dispatch/internal/store"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router   *chi.Mux
	Recorder *service.RecorderService
	Decay    *service.DecayService

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	agentStore := store.NewAgentStore(db)
	taskScoreStore := store.NewTaskScoreStore(db)
	performanceStore := store.NewPerformanceStore(db)
	memoryStore := store.NewMemoryStore(db)
	relationshipStore := store.NewRelationshipStore(db)
	eventStore := store.NewLearningEventStore(db)
	conversationStore := store.NewConversationStore(db)

	// External clients via provider factory
	completionClient, err := llm.NewClient(config.LLMProvider(), config.LLMAPIKey())
	if err != nil {
		logger.Warn("completion client initialization failed", zap.String("provider", config.LLMProvider()), zap.Error(err))
	} else {
		logger.Info("completion client initialized", zap.String("provider", config.LLMProvider()))
	}

	embeddingClient, err := embedding.NewClient(config.EmbeddingProvider(), config.EmbeddingAPIKey(), config.EmbeddingModel())
	if err != nil {
		logger.Warn("embedding client initialization failed", zap.String("provider", config.EmbeddingProvider()), zap.Error(err))
	} else {
		logger.Info("embedding client initialized", zap.String("provider", config.EmbeddingProvider()))
	}

	// Services
	recorderSvc := service.NewRecorderService(logger)
	decaySvc := service.NewDecayService(memoryStore, logger)
	intentSvc := service.NewIntentService()
	routerSvc := service.NewRouterService(taskScoreStore, config.RoutingThreshold(), logger)
	enrichmentSvc := service.NewEnrichmentService(agentStore, memoryStore, taskScoreStore, embeddingClient, logger)
	ledgerSvc := service.NewLedgerService(performanceStore, memoryStore, taskScoreStore, agentStore, relationshipStore, eventStore, embeddingClient, logger)
	agentSvc := service.NewAgentService(agentStore, taskScoreStore)
	orchestratorSvc := service.NewOrchestratorService(
		intentSvc, routerSvc, enrichmentSvc, ledgerSvc, recorderSvc,
		agentStore, conversationStore, completionClient,
		config.ContextWindowTurns(), logger,
	)

	// Handlers
	orchestrateHandler := handlers.NewOrchestrateHandler(orchestratorSvc, logger)
	agentHandler := handlers.NewAgentHandler(agentSvc)
	outcomeHandler := handlers.NewOutcomeHandler(ledgerSvc, logger)
	relationshipHandler := handlers.NewRelationshipHandler(ledgerSvc, logger)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Recorder:  recorderSvc,
		Decay:     decaySvc,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/orchestrate", orchestrateHandler.Handle)
		r.Post("/outcomes", outcomeHandler.Create)
		r.Post("/relationships", relationshipHandler.Update)

		r.Route("/agents", func(r chi.Router) {
			r.Post("/", agentHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", agentHandler.GetByID)
				r.Get("/specializations", agentHandler.Specializations)
			})
		})
	})

	return app
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
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
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.AgentStore         = (*store.AgentStore)(nil)
	_ domain.TaskScoreStore     = (*store.TaskScoreStore)(nil)
	_ domain.PerformanceStore   = (*store.PerformanceStore)(nil)
	_ domain.MemoryStore        = (*store.MemoryStore)(nil)
	_ domain.RelationshipStore  = (*store.RelationshipStore)(nil)
	_ domain.LearningEventStore = (*store.LearningEventStore)(nil)
	_ domain.ConversationStore  = (*store.ConversationStore)(nil)
	_ domain.EmbeddingClient    = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient    = (*embedding.MockClient)(nil)
	_ domain.CompletionClient   = (*llm.OpenAIClient)(nil)
	_ domain.CompletionClient   = (*llm.AnthropicClient)(nil)
	_ domain.CompletionClient   = (*llm.MockClient)(nil)
	_ handlers.Orchestrator     = (*service.OrchestratorService)(nil)
)
