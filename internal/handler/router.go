package handler

import (
	"net/http"
	"time"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
	"github.com/amarinho/cs-pulse-bfa-go/internal/infra/observability"
	"github.com/amarinho/cs-pulse-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router needs.
type Services struct {
	Accounts  *service.AccountsService
	Weights   *service.WeightsService
	Ranking   *service.RankingService
	Analytics *service.AnalyticsService
	Assistant *service.AssistantService
	Auth      *service.AuthService
}

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract defined for the CS Pulse dashboard.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(MetricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Accounts))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Autenticação (public + protected)
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/refresh", authRefreshHandler(svcs.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
			})
		})

		// Everything below requires a dashboard session.
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// =============================================
			// Book de contas
			// =============================================
			r.Get("/accounts", listAccountsHandler(svcs.Accounts, logger))
			r.Post("/accounts", createAccountHandler(svcs.Accounts, logger))
			r.Get("/accounts/{accountId}", getAccountHandler(svcs.Accounts, logger))
			r.Patch("/accounts/{accountId}", updateAccountHandler(svcs.Accounts, logger))
			r.Delete("/accounts/{accountId}", deleteAccountHandler(svcs.Accounts, logger))
			r.Get("/accounts/{accountId}/history", accountHistoryHandler(svcs.Accounts, logger))
			r.Post("/accounts/{accountId}/journey/steps/{stepId}/toggle", toggleJourneyStepHandler(svcs.Accounts, logger))

			// =============================================
			// Pesos do health score
			// =============================================
			r.Get("/weights", getWeightsHandler(svcs.Weights, logger))
			r.Put("/weights", putWeightsHandler(svcs.Weights, logger))
			r.Patch("/weights/{factor}", patchWeightHandler(svcs.Weights, logger))
			r.Post("/weights/reset", resetWeightsHandler(svcs.Weights, logger))

			// =============================================
			// Ranking de engajamento
			// =============================================
			r.Get("/ranking", leaderboardHandler(svcs.Ranking, logger))
			r.Get("/ranking/full", fullRankingHandler(svcs.Ranking, logger))

			// =============================================
			// Analytics & Accelerator
			// =============================================
			r.Get("/analytics/summary", summaryHandler(svcs.Analytics, logger))
			r.Get("/analytics/cohorts", cohortsHandler(svcs.Analytics, logger))
			r.Get("/accelerator/targets", acceleratorHandler(svcs.Analytics, logger))
			r.Post("/accelerator/targets", createTargetHandler(svcs.Analytics, logger))
			r.Delete("/accelerator/targets/{targetId}", deleteTargetHandler(svcs.Analytics, logger))

			// =============================================
			// Feed de eventos
			// =============================================
			r.Get("/events", eventsFeedHandler(svcs.Accounts, logger))

			// =============================================
			// Console de agentes IA
			// =============================================
			r.Get("/agents", listAgentsHandler(svcs.Assistant, logger))
			r.Post("/agents", createAgentHandler(svcs.Assistant, logger))
			r.Get("/agents/usage/live", liveUsageHandler(svcs.Assistant))
			r.Get("/agents/{agentId}", getAgentHandler(svcs.Assistant, logger))
			r.Patch("/agents/{agentId}", updateAgentHandler(svcs.Assistant, logger))
			r.Delete("/agents/{agentId}", deleteAgentHandler(svcs.Assistant, logger))
			r.Get("/agents/{agentId}/usage", usageSummaryHandler(svcs.Assistant, logger))
			r.Post("/chat", chatHandler(svcs.Assistant, logger))
		})
	})

	return r
}

// ============================================================
// Operational — healthz / readyz
// ============================================================

func healthzHandler(accounts *service.AccountsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "pulse-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if accounts != nil {
			start := time.Now()
			_, err := accounts.List(ctx)
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
