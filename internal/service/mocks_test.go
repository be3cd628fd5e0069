package service

import (
	"context"
	"time"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
)

// Hand-rolled mocks for the store ports. Each field overrides one method;
// nil fields fall back to a harmless default.

type mockAccountStore struct {
	accounts []domain.Account

	listErr     error
	savedScores []domain.Account
	created     *domain.Account
	updated     *domain.Account
	deletedID   string
}

func (m *mockAccountStore) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Account, len(m.accounts))
	copy(out, m.accounts)
	return out, nil
}

func (m *mockAccountStore) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	for _, a := range m.accounts {
		if a.ID == accountID {
			found := a
			return &found, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
}

func (m *mockAccountStore) CreateAccount(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	m.created = a
	m.accounts = append(m.accounts, *a)
	return a, nil
}

func (m *mockAccountStore) UpdateAccount(ctx context.Context, a *domain.Account) error {
	m.updated = a
	return nil
}

func (m *mockAccountStore) DeleteAccount(ctx context.Context, accountID string) error {
	m.deletedID = accountID
	return nil
}

func (m *mockAccountStore) SaveHealthScores(ctx context.Context, accounts []domain.Account) error {
	m.savedScores = accounts
	return nil
}

type mockWeightStore struct {
	weights *domain.HealthWeights
	saved   *domain.HealthWeights
	getErr  error
}

func (m *mockWeightStore) GetWeights(ctx context.Context) (domain.HealthWeights, error) {
	if m.getErr != nil {
		return domain.HealthWeights{}, m.getErr
	}
	if m.weights == nil {
		return domain.HealthWeights{}, &domain.ErrNotFound{Resource: "weights", ID: "singleton"}
	}
	return *m.weights, nil
}

func (m *mockWeightStore) SaveWeights(ctx context.Context, w domain.HealthWeights) error {
	m.saved = &w
	m.weights = &w
	return nil
}

type mockEventStore struct {
	events []domain.StreamEvent
}

func (m *mockEventStore) AppendEvent(ctx context.Context, e *domain.StreamEvent) error {
	m.events = append(m.events, *e)
	return nil
}

func (m *mockEventStore) ListEvents(ctx context.Context, limit int) ([]domain.StreamEvent, error) {
	if limit > 0 && limit < len(m.events) {
		return m.events[:limit], nil
	}
	return m.events, nil
}

// mockCache is a map-backed Cache[[]domain.Account] that counts flushes.
type mockCache struct {
	entries map[string][]domain.Account
	flushes int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]domain.Account)}
}

func (m *mockCache) Get(key string) ([]domain.Account, bool) {
	v, ok := m.entries[key]
	return v, ok
}

func (m *mockCache) Set(key string, value []domain.Account) {
	m.entries[key] = value
}

func (m *mockCache) Delete(key string) {
	delete(m.entries, key)
}

func (m *mockCache) Flush() {
	m.flushes++
	m.entries = make(map[string][]domain.Account)
}

type mockAgentStore struct {
	agents []domain.Agent
	usage  []domain.UsageRecord

	usageErr error
}

func (m *mockAgentStore) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	return m.agents, nil
}

func (m *mockAgentStore) GetAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	for _, a := range m.agents {
		if a.ID == agentID {
			found := a
			return &found, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "agent", ID: agentID}
}

func (m *mockAgentStore) CreateAgent(ctx context.Context, a *domain.Agent) (*domain.Agent, error) {
	m.agents = append(m.agents, *a)
	return a, nil
}

func (m *mockAgentStore) UpdateAgent(ctx context.Context, agentID string, upd *domain.AgentUpdate) (*domain.Agent, error) {
	for i := range m.agents {
		if m.agents[i].ID == agentID {
			if upd.Name != nil {
				m.agents[i].Name = *upd.Name
			}
			if upd.IsActive != nil {
				m.agents[i].IsActive = *upd.IsActive
			}
			found := m.agents[i]
			return &found, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "agent", ID: agentID}
}

func (m *mockAgentStore) DeleteAgent(ctx context.Context, agentID string) error {
	return nil
}

func (m *mockAgentStore) RecordUsage(ctx context.Context, rec *domain.UsageRecord) error {
	if m.usageErr != nil {
		return m.usageErr
	}
	m.usage = append(m.usage, *rec)
	return nil
}

func (m *mockAgentStore) GetUsageSummary(ctx context.Context, agentID string) (*domain.UsageSummary, error) {
	var summary domain.UsageSummary
	for _, u := range m.usage {
		if u.AgentID != agentID {
			continue
		}
		summary.TotalCalls++
		summary.TotalTokens += int64(u.PromptTokens + u.CompletionTokens)
		summary.TotalCostUSD += u.CostUSD
	}
	if summary.TotalCalls > 0 {
		summary.AvgTokensPerCall = float64(summary.TotalTokens) / float64(summary.TotalCalls)
	}
	summary.Period = "all_time"
	return &summary, nil
}

type mockAgentCaller struct {
	response *domain.AgentResponse
	err      error
	lastReq  *domain.AgentRequest
}

func (m *mockAgentCaller) Call(ctx context.Context, req *domain.AgentRequest) (*domain.AgentResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

type mockTargetStore struct {
	targets []domain.GrowthTarget
}

func (m *mockTargetStore) ListTargets(ctx context.Context) ([]domain.GrowthTarget, error) {
	return m.targets, nil
}

func (m *mockTargetStore) CreateTarget(ctx context.Context, t *domain.GrowthTarget) (*domain.GrowthTarget, error) {
	m.targets = append(m.targets, *t)
	return t, nil
}

func (m *mockTargetStore) DeleteTarget(ctx context.Context, targetID string) error {
	return nil
}

type mockAuthStore struct {
	user         *domain.DashboardUser
	passwordHash string
	tokens       map[string]*domain.AuthRefreshToken
	lastLoginAt  *time.Time
}

func newMockAuthStore(user *domain.DashboardUser, passwordHash string) *mockAuthStore {
	return &mockAuthStore{
		user:         user,
		passwordHash: passwordHash,
		tokens:       make(map[string]*domain.AuthRefreshToken),
	}
}

func (m *mockAuthStore) GetUserByEmail(ctx context.Context, email string) (*domain.DashboardUser, string, error) {
	if m.user == nil || m.user.Email != email {
		return nil, "", &domain.ErrNotFound{Resource: "user", ID: email}
	}
	return m.user, m.passwordHash, nil
}

func (m *mockAuthStore) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	m.lastLoginAt = &at
	return nil
}

func (m *mockAuthStore) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.tokens[tokenHash] = &domain.AuthRefreshToken{
		ID:        tokenHash,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}
	return nil
}

func (m *mockAuthStore) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	t, ok := m.tokens[tokenHash]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "refresh_token", ID: tokenHash}
	}
	return t, nil
}

func (m *mockAuthStore) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	if t, ok := m.tokens[tokenHash]; ok {
		t.Revoked = true
	}
	return nil
}
