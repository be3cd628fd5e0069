package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
	"github.com/amarinho/cs-pulse-bfa-go/internal/infra/observability"
	"github.com/amarinho/cs-pulse-bfa-go/internal/infra/resilience"

	"go.uber.org/zap"
)

func newAssistantFixture(agents []domain.Agent, caller *mockAgentCaller) (*AssistantService, *mockAgentStore) {
	store := &mockAgentStore{agents: agents}
	svc := NewAssistantService(store, caller, resilience.NewBulkhead(4), observability.NewMetrics(), zap.NewNop())
	return svc, store
}

func activeAgent() domain.Agent {
	return domain.Agent{
		ID:          "agent-1",
		Name:        "Analista CS",
		Model:       "gpt-4o",
		Temperature: 0.4,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestChat_PassesAgentConfigThrough(t *testing.T) {
	caller := &mockAgentCaller{response: &domain.AgentResponse{
		Answer:     "Tudo certo com a carteira.",
		Model:      "gpt-4o",
		TokensUsed: domain.TokenUsage{PromptTokens: 120, CompletionTokens: 80, TotalTokens: 200},
		CostUSD:    0.012,
	}}
	svc, store := newAssistantFixture([]domain.Agent{activeAgent()}, caller)

	resp, err := svc.Chat(context.Background(), &domain.ChatRequest{
		AgentID: "agent-1",
		Message: "Como está a saúde da carteira?",
	})
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if resp.Answer == "" || resp.ConversationID == "" {
		t.Errorf("incomplete response: %+v", resp)
	}
	if caller.lastReq.Model != "gpt-4o" || caller.lastReq.Temperature != 0.4 {
		t.Errorf("agent config not passed through: %+v", caller.lastReq)
	}
	if len(store.usage) != 1 {
		t.Fatalf("usage rows = %d, want 1", len(store.usage))
	}
	if store.usage[0].PromptTokens != 120 || store.usage[0].CompletionTokens != 80 {
		t.Errorf("usage row = %+v", store.usage[0])
	}
}

func TestChat_KeepsConversationID(t *testing.T) {
	caller := &mockAgentCaller{response: &domain.AgentResponse{Answer: "ok"}}
	svc, _ := newAssistantFixture([]domain.Agent{activeAgent()}, caller)

	resp, err := svc.Chat(context.Background(), &domain.ChatRequest{
		AgentID:        "agent-1",
		Message:        "continua",
		ConversationID: "conv-42",
	})
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if resp.ConversationID != "conv-42" {
		t.Errorf("conversation id = %q, want conv-42", resp.ConversationID)
	}
}

func TestChat_RejectsEmptyMessage(t *testing.T) {
	svc, _ := newAssistantFixture([]domain.Agent{activeAgent()}, &mockAgentCaller{})

	_, err := svc.Chat(context.Background(), &domain.ChatRequest{AgentID: "agent-1", Message: "   "})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestChat_RejectsInactiveAgent(t *testing.T) {
	a := activeAgent()
	a.IsActive = false
	svc, _ := newAssistantFixture([]domain.Agent{a}, &mockAgentCaller{})

	_, err := svc.Chat(context.Background(), &domain.ChatRequest{AgentID: "agent-1", Message: "oi"})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestChat_UsageWriteFailureDoesNotDropAnswer(t *testing.T) {
	caller := &mockAgentCaller{response: &domain.AgentResponse{Answer: "resposta"}}
	svc, store := newAssistantFixture([]domain.Agent{activeAgent()}, caller)
	store.usageErr = errors.New("supabase indisponível")

	resp, err := svc.Chat(context.Background(), &domain.ChatRequest{AgentID: "agent-1", Message: "oi"})
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if resp.Answer != "resposta" {
		t.Errorf("answer = %q", resp.Answer)
	}
}

func TestCreateAgent_Validation(t *testing.T) {
	svc, _ := newAssistantFixture(nil, &mockAgentCaller{})

	if _, err := svc.CreateAgent(context.Background(), &domain.Agent{Name: " "}); err == nil {
		t.Error("blank name accepted")
	}
	if _, err := svc.CreateAgent(context.Background(), &domain.Agent{Name: "a", Temperature: 3}); err == nil {
		t.Error("temperature 3 accepted")
	}

	created, err := svc.CreateAgent(context.Background(), &domain.Agent{Name: "Novo Agente"})
	if err != nil {
		t.Fatalf("CreateAgent() error: %v", err)
	}
	if created.Model != defaultChatModel {
		t.Errorf("model = %q, want default %q", created.Model, defaultChatModel)
	}
	if !created.IsActive || created.ID == "" {
		t.Errorf("defaults not applied: %+v", created)
	}
}

func TestUsageSummary_AggregatesRows(t *testing.T) {
	caller := &mockAgentCaller{response: &domain.AgentResponse{
		Answer:     "ok",
		TokensUsed: domain.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
		CostUSD:    0.01,
	}}
	svc, _ := newAssistantFixture([]domain.Agent{activeAgent()}, caller)

	for i := 0; i < 3; i++ {
		if _, err := svc.Chat(context.Background(), &domain.ChatRequest{AgentID: "agent-1", Message: "oi"}); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := svc.UsageSummary(context.Background(), "agent-1")
	if err != nil {
		t.Fatalf("UsageSummary() error: %v", err)
	}
	if summary.TotalCalls != 3 || summary.TotalTokens != 450 {
		t.Errorf("summary = %+v, want 3 calls / 450 tokens", summary)
	}
}
