package handler

import (
	"encoding/json"
	"net/http"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
	"github.com/amarinho/cs-pulse-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Pesos do health score
// ============================================================

// weightsResponse is returned by every weight mutation so the dashboard can
// refresh the sliders and the affected scores in one round trip.
type weightsResponse struct {
	Weights  domain.HealthWeights `json:"weights"`
	Accounts []domain.Account     `json:"accounts"`
}

func getWeightsHandler(svc *service.WeightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/weights")
		defer span.End()

		weights, err := svc.Get(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, weights)
	}
}

func putWeightsHandler(svc *service.WeightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/weights")
		defer span.End()

		var weights domain.HealthWeights
		if err := json.NewDecoder(r.Body).Decode(&weights); err != nil {
			writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
			return
		}

		applied, accounts, err := svc.ApplyWeightChange(ctx, weights)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("accounts.recomputed", len(accounts)))
		writeJSON(w, http.StatusOK, weightsResponse{Weights: applied, Accounts: accounts})
	}
}

func patchWeightHandler(svc *service.WeightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/weights/{factor}")
		defer span.End()

		factor := chi.URLParam(r, "factor")
		span.SetAttributes(attribute.String("weights.factor", factor))

		var req struct {
			Value float64 `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
			return
		}

		applied, accounts, err := svc.SetWeight(ctx, factor, req.Value)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, weightsResponse{Weights: applied, Accounts: accounts})
	}
}

func resetWeightsHandler(svc *service.WeightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/weights/reset")
		defer span.End()

		applied, accounts, err := svc.ResetToDefault(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, weightsResponse{Weights: applied, Accounts: accounts})
	}
}
