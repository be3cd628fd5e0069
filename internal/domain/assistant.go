package domain

import "time"

// ============================================================
// AI-agent console — agents, chat playground, usage accounting
// ============================================================

// Agent is a configured AI agent in the management console.
type Agent struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Model        string    `json:"model"` // e.g. gpt-4o, claude-sonnet
	Temperature  float64   `json:"temperature"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// AgentUpdate is a partial update for an agent.
type AgentUpdate struct {
	Name         *string  `json:"name,omitempty"`
	Model        *string  `json:"model,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	SystemPrompt *string  `json:"system_prompt,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

// TokenUsage mirrors the LLM provider's usage block.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AgentRequest is the payload sent to the hosted LLM agent API.
// The chat integration is a plain passthrough — no provider failover.
type AgentRequest struct {
	AgentID      string  `json:"agent_id,omitempty"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	Message      string  `json:"message"`
}

// AgentResponse is the hosted agent's reply.
type AgentResponse struct {
	Answer     string     `json:"answer"`
	Model      string     `json:"model,omitempty"`
	TokensUsed TokenUsage `json:"tokens_used"`
	CostUSD    float64    `json:"estimated_cost_usd"`
}

// ChatRequest is what the playground sends to the backend.
type ChatRequest struct {
	AgentID        string `json:"agent_id"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the playground reply, with usage metadata attached.
type ChatResponse struct {
	ConversationID string     `json:"conversation_id"`
	Answer         string     `json:"answer"`
	Model          string     `json:"model,omitempty"`
	TokensUsed     TokenUsage `json:"tokens_used"`
	CostUSD        float64    `json:"estimated_cost_usd"`
	LatencyMs      int64      `json:"latency_ms"`
}

// UsageRecord is one persisted usage/cost row for an agent call.
type UsageRecord struct {
	ID               string    `json:"id"`
	AgentID          string    `json:"agent_id"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	CostUSD          float64   `json:"cost_usd"`
	CreatedAt        time.Time `json:"created_at"`
}

// UsageSummary aggregates usage rows for the console's cost view.
type UsageSummary struct {
	TotalCalls       int64   `json:"total_calls"`
	TotalTokens      int64   `json:"total_tokens"`
	TotalCostUSD     float64 `json:"total_cost_usd"`
	AvgTokensPerCall float64 `json:"avg_tokens_per_call"`
	Period           string  `json:"period"`
}
