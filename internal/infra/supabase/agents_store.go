package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// AI agents — cs_agents + cs_agent_usage
// ============================================================

// ListAgents returns every configured agent, newest first.
func (c *Client) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAgents")
	defer span.End()

	body, err := c.doRequest(ctx, http.MethodGet, "cs_agents?order=created_at.desc")
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/agents", Err: err}
	}

	agents := []domain.Agent{}
	if body != nil && string(body) != "[]" {
		if err := json.Unmarshal(body, &agents); err != nil {
			return nil, fmt.Errorf("decode agents: %w", err)
		}
	}
	return agents, nil
}

// GetAgent fetches one agent by id.
func (c *Client) GetAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetAgent")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", agentID))

	path := fmt.Sprintf("cs_agents?id=eq.%s&limit=1", agentID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/agents", Err: err}
	}

	var rows []domain.Agent
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode agent: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "agent", ID: agentID}
	}
	return &rows[0], nil
}

// CreateAgent inserts a new agent configuration.
func (c *Client) CreateAgent(ctx context.Context, a *domain.Agent) (*domain.Agent, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateAgent")
	defer span.End()

	cols := map[string]any{
		"id":            a.ID,
		"name":          a.Name,
		"model":         a.Model,
		"temperature":   a.Temperature,
		"system_prompt": a.SystemPrompt,
		"is_active":     a.IsActive,
		"created_at":    a.CreatedAt,
	}
	body, err := c.doPost(ctx, "cs_agents", cols)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/agents", Err: err}
	}

	var rows []domain.Agent
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created agent: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase returned no representation for created agent")
	}
	return &rows[0], nil
}

// UpdateAgent patches only the fields set in the update.
func (c *Client) UpdateAgent(ctx context.Context, agentID string, upd *domain.AgentUpdate) (*domain.Agent, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateAgent")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", agentID))

	cols := map[string]any{}
	if upd.Name != nil {
		cols["name"] = *upd.Name
	}
	if upd.Model != nil {
		cols["model"] = *upd.Model
	}
	if upd.Temperature != nil {
		cols["temperature"] = *upd.Temperature
	}
	if upd.SystemPrompt != nil {
		cols["system_prompt"] = *upd.SystemPrompt
	}
	if upd.IsActive != nil {
		cols["is_active"] = *upd.IsActive
	}

	if len(cols) > 0 {
		if err := c.doPatch(ctx, fmt.Sprintf("cs_agents?id=eq.%s", agentID), cols); err != nil {
			return nil, &domain.ErrExternalService{Service: "supabase/agents", Err: err}
		}
	}
	return c.GetAgent(ctx, agentID)
}

// DeleteAgent removes an agent and keeps its usage rows for accounting.
func (c *Client) DeleteAgent(ctx context.Context, agentID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteAgent")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", agentID))

	if err := c.doDelete(ctx, fmt.Sprintf("cs_agents?id=eq.%s", agentID)); err != nil {
		return &domain.ErrExternalService{Service: "supabase/agents", Err: err}
	}
	return nil
}

// RecordUsage inserts one usage/cost row.
func (c *Client) RecordUsage(ctx context.Context, rec *domain.UsageRecord) error {
	ctx, span := tracer.Start(ctx, "Supabase.RecordUsage")
	defer span.End()

	cols := map[string]any{
		"id":                rec.ID,
		"agent_id":          rec.AgentID,
		"prompt_tokens":     rec.PromptTokens,
		"completion_tokens": rec.CompletionTokens,
		"cost_usd":          rec.CostUSD,
		"created_at":        rec.CreatedAt,
	}
	if _, err := c.doPost(ctx, "cs_agent_usage", cols); err != nil {
		return &domain.ErrExternalService{Service: "supabase/agent_usage", Err: err}
	}
	return nil
}

// GetUsageSummary aggregates usage rows for one agent client-side.
// Row counts stay small (one per chat call) so no RPC is needed yet.
func (c *Client) GetUsageSummary(ctx context.Context, agentID string) (*domain.UsageSummary, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUsageSummary")
	defer span.End()
	span.SetAttributes(attribute.String("agent.id", agentID))

	path := fmt.Sprintf("cs_agent_usage?agent_id=eq.%s&order=created_at.desc", agentID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/agent_usage", Err: err}
	}

	rows := []domain.UsageRecord{}
	if body != nil && string(body) != "[]" {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode usage rows: %w", err)
		}
	}

	summary := &domain.UsageSummary{Period: "all_time"}
	for _, r := range rows {
		summary.TotalCalls++
		summary.TotalTokens += int64(r.PromptTokens + r.CompletionTokens)
		summary.TotalCostUSD += r.CostUSD
	}
	if summary.TotalCalls > 0 {
		summary.AvgTokensPerCall = float64(summary.TotalTokens) / float64(summary.TotalCalls)
	}
	return summary, nil
}
