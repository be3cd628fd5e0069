// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
)

// AccountStore defines all data operations over the account book.
// Implemented by the Supabase adapter (or any other persistence layer).
type AccountStore interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	CreateAccount(ctx context.Context, a *domain.Account) (*domain.Account, error)
	UpdateAccount(ctx context.Context, a *domain.Account) error
	DeleteAccount(ctx context.Context, accountID string) error

	// SaveHealthScores persists recomputed scores/metrics for the whole
	// collection after a weight change.
	SaveHealthScores(ctx context.Context, accounts []domain.Account) error
}

// WeightStore persists the health weight vector across sessions.
type WeightStore interface {
	GetWeights(ctx context.Context) (domain.HealthWeights, error)
	SaveWeights(ctx context.Context, w domain.HealthWeights) error
}

// EventStore appends to and reads the global event stream.
type EventStore interface {
	AppendEvent(ctx context.Context, e *domain.StreamEvent) error
	ListEvents(ctx context.Context, limit int) ([]domain.StreamEvent, error)
}

// AgentStore defines CRUD over configured AI agents plus usage accounting.
type AgentStore interface {
	ListAgents(ctx context.Context) ([]domain.Agent, error)
	GetAgent(ctx context.Context, agentID string) (*domain.Agent, error)
	CreateAgent(ctx context.Context, a *domain.Agent) (*domain.Agent, error)
	UpdateAgent(ctx context.Context, agentID string, upd *domain.AgentUpdate) (*domain.Agent, error)
	DeleteAgent(ctx context.Context, agentID string) error

	RecordUsage(ctx context.Context, rec *domain.UsageRecord) error
	GetUsageSummary(ctx context.Context, agentID string) (*domain.UsageSummary, error)
}

// TargetStore persists Accelerator growth targets.
type TargetStore interface {
	ListTargets(ctx context.Context) ([]domain.GrowthTarget, error)
	CreateTarget(ctx context.Context, t *domain.GrowthTarget) (*domain.GrowthTarget, error)
	DeleteTarget(ctx context.Context, targetID string) error
}

// AgentCaller invokes the hosted LLM agent API (plain passthrough).
type AgentCaller interface {
	Call(ctx context.Context, req *domain.AgentRequest) (*domain.AgentResponse, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Flush()
}

// AuthStore defines data operations for dashboard login sessions.
type AuthStore interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.DashboardUser, string, error) // user, bcrypt hash
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}
