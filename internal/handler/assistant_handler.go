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
// Console de agentes IA
// ============================================================

func listAgentsHandler(svc *service.AssistantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/agents")
		defer span.End()

		agents, err := svc.ListAgents(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if agents == nil {
			agents = []domain.Agent{}
		}
		writeJSON(w, http.StatusOK, agents)
	}
}

func getAgentHandler(svc *service.AssistantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/agents/{agentId}")
		defer span.End()

		agentID := chi.URLParam(r, "agentId")
		span.SetAttributes(attribute.String("agent.id", agentID))

		agent, err := svc.GetAgent(ctx, agentID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, agent)
	}
}

func createAgentHandler(svc *service.AssistantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/agents")
		defer span.End()

		var agent domain.Agent
		if err := json.NewDecoder(r.Body).Decode(&agent); err != nil {
			writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
			return
		}

		created, err := svc.CreateAgent(ctx, &agent)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateAgentHandler(svc *service.AssistantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/agents/{agentId}")
		defer span.End()

		agentID := chi.URLParam(r, "agentId")
		span.SetAttributes(attribute.String("agent.id", agentID))

		var upd domain.AgentUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
			return
		}

		updated, err := svc.UpdateAgent(ctx, agentID, &upd)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteAgentHandler(svc *service.AssistantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/agents/{agentId}")
		defer span.End()

		agentID := chi.URLParam(r, "agentId")
		span.SetAttributes(attribute.String("agent.id", agentID))

		if err := svc.DeleteAgent(ctx, agentID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "agente removido", ID: agentID})
	}
}

func usageSummaryHandler(svc *service.AssistantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/agents/{agentId}/usage")
		defer span.End()

		agentID := chi.URLParam(r, "agentId")
		span.SetAttributes(attribute.String("agent.id", agentID))

		summary, err := svc.UsageSummary(ctx, agentID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

// liveUsageHandler reads in-process counters only, so it never fails.
func liveUsageHandler(svc *service.AssistantService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/agents/usage/live")
		defer span.End()

		writeJSON(w, http.StatusOK, svc.LiveUsage())
	}
}

func chatHandler(svc *service.AssistantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat")
		defer span.End()

		var req domain.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
			return
		}
		span.SetAttributes(attribute.String("agent.id", req.AgentID))

		resp, err := svc.Chat(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
