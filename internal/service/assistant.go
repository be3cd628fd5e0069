package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
	"github.com/amarinho/cs-pulse-bfa-go/internal/infra/observability"
	"github.com/amarinho/cs-pulse-bfa-go/internal/infra/resilience"
	"github.com/amarinho/cs-pulse-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var assistantTracer = otel.Tracer("service/assistant")

// defaultChatModel is used when an agent has no model configured.
const defaultChatModel = "gpt-4o-mini"

// AssistantService backs the AI-agent console: agent CRUD, the chat
// playground (a plain passthrough to the hosted agent API) and usage
// accounting for the cost view.
type AssistantService struct {
	agents   port.AgentStore
	caller   port.AgentCaller
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAssistantService creates the assistant service with dependencies injected.
// The bulkhead bounds concurrent calls to the hosted agent API.
func NewAssistantService(
	agents port.AgentStore,
	caller port.AgentCaller,
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AssistantService {
	return &AssistantService{
		agents:   agents,
		caller:   caller,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger,
	}
}

// ListAgents returns every configured agent.
func (s *AssistantService) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	ctx, span := assistantTracer.Start(ctx, "AssistantService.ListAgents")
	defer span.End()

	return s.agents.ListAgents(ctx)
}

// GetAgent returns one agent by id.
func (s *AssistantService) GetAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	ctx, span := assistantTracer.Start(ctx, "AssistantService.GetAgent")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", agentID))

	return s.agents.GetAgent(ctx, agentID)
}

// CreateAgent registers a new agent configuration.
func (s *AssistantService) CreateAgent(ctx context.Context, a *domain.Agent) (*domain.Agent, error) {
	ctx, span := assistantTracer.Start(ctx, "AssistantService.CreateAgent")
	defer span.End()

	if strings.TrimSpace(a.Name) == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "nome é obrigatório"}
	}
	if a.Temperature < 0 || a.Temperature > 2 {
		return nil, &domain.ErrValidation{Field: "temperature", Message: "temperatura deve estar entre 0 e 2"}
	}
	if a.Model == "" {
		a.Model = defaultChatModel
	}

	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	a.IsActive = true

	created, err := s.agents.CreateAgent(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	s.logger.Info("agent created",
		zap.String("agent_id", created.ID),
		zap.String("model", created.Model),
	)
	return created, nil
}

// UpdateAgent applies a partial update to an agent.
func (s *AssistantService) UpdateAgent(ctx context.Context, agentID string, upd *domain.AgentUpdate) (*domain.Agent, error) {
	ctx, span := assistantTracer.Start(ctx, "AssistantService.UpdateAgent")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", agentID))

	if upd.Temperature != nil && (*upd.Temperature < 0 || *upd.Temperature > 2) {
		return nil, &domain.ErrValidation{Field: "temperature", Message: "temperatura deve estar entre 0 e 2"}
	}
	return s.agents.UpdateAgent(ctx, agentID, upd)
}

// DeleteAgent removes an agent configuration.
func (s *AssistantService) DeleteAgent(ctx context.Context, agentID string) error {
	ctx, span := assistantTracer.Start(ctx, "AssistantService.DeleteAgent")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", agentID))

	return s.agents.DeleteAgent(ctx, agentID)
}

// Chat sends a playground message through the configured agent and records
// usage. One provider, no failover.
func (s *AssistantService) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	ctx, span := assistantTracer.Start(ctx, "AssistantService.Chat")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", req.AgentID))

	if strings.TrimSpace(req.Message) == "" {
		return nil, &domain.ErrValidation{Field: "message", Message: "mensagem vazia"}
	}

	agent, err := s.agents.GetAgent(ctx, req.AgentID)
	if err != nil {
		return nil, err
	}
	if !agent.IsActive {
		return nil, &domain.ErrValidation{Field: "agent_id", Message: "agente desativado"}
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrTimeout{Operation: "chat"}
	}
	defer s.bulkhead.Release()

	start := time.Now()
	resp, err := s.caller.Call(ctx, &domain.AgentRequest{
		AgentID:      agent.ID,
		Model:        agent.Model,
		Temperature:  agent.Temperature,
		SystemPrompt: agent.SystemPrompt,
		Message:      req.Message,
	})
	latency := time.Since(start)

	if err != nil {
		s.metrics.IncrRequest("error")
		return nil, err
	}
	s.metrics.IncrRequest("success")
	s.metrics.RecordTokens(resp.TokensUsed.PromptTokens, resp.TokensUsed.CompletionTokens)

	// Usage accounting is best effort; a write miss must not drop the answer.
	rec := &domain.UsageRecord{
		ID:               uuid.NewString(),
		AgentID:          agent.ID,
		PromptTokens:     resp.TokensUsed.PromptTokens,
		CompletionTokens: resp.TokensUsed.CompletionTokens,
		CostUSD:          resp.CostUSD,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.agents.RecordUsage(ctx, rec); err != nil {
		s.logger.Warn("failed to record agent usage",
			zap.String("agent_id", agent.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("chat completed",
		zap.String("agent_id", agent.ID),
		zap.Int("total_tokens", resp.TokensUsed.TotalTokens),
		zap.Duration("latency", latency),
	)

	return &domain.ChatResponse{
		ConversationID: conversationID,
		Answer:         resp.Answer,
		Model:          resp.Model,
		TokensUsed:     resp.TokensUsed,
		CostUSD:        resp.CostUSD,
		LatencyMs:      latency.Milliseconds(),
	}, nil
}

// UsageSummary returns the persisted usage aggregate for one agent.
func (s *AssistantService) UsageSummary(ctx context.Context, agentID string) (*domain.UsageSummary, error) {
	ctx, span := assistantTracer.Start(ctx, "AssistantService.UsageSummary")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", agentID))

	return s.agents.GetUsageSummary(ctx, agentID)
}

// LiveUsage returns the in-process usage snapshot from Prometheus counters.
func (s *AssistantService) LiveUsage() *domain.UsageSummary {
	return s.metrics.GetUsageSnapshot()
}
