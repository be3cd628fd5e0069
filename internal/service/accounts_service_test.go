package service

import (
	"context"
	"errors"
	"testing"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
	"github.com/amarinho/cs-pulse-bfa-go/internal/infra/observability"

	"go.uber.org/zap"
)

func newAccountsFixture(accounts []domain.Account) (*AccountsService, *mockAccountStore, *mockEventStore, *mockCache) {
	as := &mockAccountStore{accounts: accounts}
	es := &mockEventStore{}
	cache := newMockCache()
	metrics := observability.NewMetrics()
	weights := NewWeightsService(&mockWeightStore{}, as, cache, metrics, zap.NewNop())
	svc := NewAccountsService(as, es, weights, cache, metrics, zap.NewNop())
	return svc, as, es, cache
}

func TestAccountsList_NormalizesAndCaches(t *testing.T) {
	svc, _, _, cache := newAccountsFixture([]domain.Account{
		{ID: "raw", Name: "Cliente Cru", Status: domain.StatusActive, HealthScore: 60},
	})

	out, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	a := out[0]
	if a.Metrics == nil {
		t.Fatal("metrics were not synthesized on read")
	}
	if a.Journey == nil || len(a.Journey.Steps) != 5 {
		t.Fatalf("journey was not merged on read: %+v", a.Journey)
	}
	if a.LastActive == "" {
		t.Error("empty last active must normalize to the never sentinel")
	}
	if _, ok := cache.Get(accountsCacheKey); !ok {
		t.Error("normalized collection was not cached")
	}

	// Second read comes from cache, identical content.
	again, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("second List() error: %v", err)
	}
	if again[0].HealthScore != a.HealthScore {
		t.Error("cached read disagrees with the first read")
	}
}

func TestAccountsGet_NotFound(t *testing.T) {
	svc, _, _, _ := newAccountsFixture(nil)

	_, err := svc.Get(context.Background(), "ghost-id")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAccountsCreate_Defaults(t *testing.T) {
	svc, as, es, _ := newAccountsFixture(nil)

	created, err := svc.Create(context.Background(), &domain.Account{Name: "Empresa Nova"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.ID == "" {
		t.Error("no id assigned")
	}
	if created.Status != domain.StatusNew {
		t.Errorf("status = %s, want New", created.Status)
	}
	if created.LastActive != domain.LastActiveNever {
		t.Errorf("last active = %q, want the never sentinel", created.LastActive)
	}
	if created.Metrics == nil || created.Journey == nil {
		t.Error("metrics/journey were not seeded")
	}
	if len(created.History) != 1 || created.History[0].Type != "created" {
		t.Errorf("history = %+v, want a single created entry", created.History)
	}
	if as.created == nil {
		t.Error("account was not persisted")
	}
	if len(es.events) != 1 || es.events[0].Type != "account_created" {
		t.Errorf("stream events = %+v, want one account_created", es.events)
	}
}

func TestAccountsCreate_RequiresName(t *testing.T) {
	svc, _, _, _ := newAccountsFixture(nil)

	_, err := svc.Create(context.Background(), &domain.Account{})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestAccountsUpdate_StatusChangeEmitsEvents(t *testing.T) {
	svc, as, es, cache := newAccountsFixture([]domain.Account{
		{ID: "u1", Name: "Conta Um", Status: domain.StatusActive, HealthScore: 70},
	})

	risk := domain.StatusRisk
	updated, err := svc.Update(context.Background(), "u1", &domain.AccountUpdate{Status: &risk})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.Status != domain.StatusRisk {
		t.Errorf("status = %s, want Risk", updated.Status)
	}
	if len(updated.History) == 0 || updated.History[0].Type != "status_change" {
		t.Errorf("history = %+v, want status_change first", updated.History)
	}
	if len(es.events) != 1 || es.events[0].Type != "status_change" {
		t.Errorf("stream events = %+v, want one status_change", es.events)
	}
	if as.updated == nil {
		t.Error("update was not persisted")
	}
	if cache.flushes == 0 {
		t.Error("cache was not flushed after update")
	}
}

func TestAccountsUpdate_NoEventsWithoutTransition(t *testing.T) {
	svc, _, es, _ := newAccountsFixture([]domain.Account{
		{ID: "u2", Name: "Conta Dois", Status: domain.StatusActive},
	})

	mrr := 1500.0
	if _, err := svc.Update(context.Background(), "u2", &domain.AccountUpdate{MRR: &mrr}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if len(es.events) != 0 {
		t.Errorf("mrr-only update published events: %+v", es.events)
	}
}

func TestAccountsUpdate_ActivityOnlyOnChange(t *testing.T) {
	svc, _, _, _ := newAccountsFixture([]domain.Account{
		{ID: "u3", Name: "Conta Três", Status: domain.StatusActive, LastActive: domain.LastActiveNow},
	})

	// Re-sending the current value is not activity.
	same := domain.LastActiveNow
	updated, err := svc.Update(context.Background(), "u3", &domain.AccountUpdate{LastActive: &same})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	for _, h := range updated.History {
		if h.Type == "activity" {
			t.Errorf("unchanged last active recorded activity: %+v", updated.History)
		}
	}

	stamp := "2026-08-27T10:00:00Z"
	updated, err = svc.Update(context.Background(), "u3", &domain.AccountUpdate{LastActive: &stamp})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if len(updated.History) == 0 || updated.History[0].Type != "activity" {
		t.Errorf("history = %+v, want activity first after a real change", updated.History)
	}
}

func TestAccountsUpdate_HistoryCap(t *testing.T) {
	history := make([]domain.AccountEvent, domain.MaxHistoryEvents)
	for i := range history {
		history[i] = domain.AccountEvent{ID: "old", Type: "activity"}
	}
	svc, _, _, _ := newAccountsFixture([]domain.Account{
		{ID: "cap", Name: "Cheia", Status: domain.StatusActive, History: history},
	})

	risk := domain.StatusRisk
	updated, err := svc.Update(context.Background(), "cap", &domain.AccountUpdate{Status: &risk})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if len(updated.History) != domain.MaxHistoryEvents {
		t.Errorf("history length = %d, want capped at %d", len(updated.History), domain.MaxHistoryEvents)
	}
	if updated.History[0].Type != "status_change" {
		t.Error("newest entry must come first")
	}
}

func TestToggleJourneyStep_FiresCelebration(t *testing.T) {
	// Saved journey with steps 1-4 done; completing 5 achieves the goal.
	steps := make([]domain.JourneyStep, 0, 4)
	for _, id := range []string{"1", "2", "3", "4"} {
		steps = append(steps, domain.JourneyStep{ID: id, IsCompleted: true})
	}
	svc, _, es, _ := newAccountsFixture([]domain.Account{
		{ID: "j1", Name: "Quase Lá", Status: domain.StatusActive, Journey: &domain.Journey{Steps: steps}},
	})

	updated, err := svc.ToggleJourneyStep(context.Background(), "j1", "5")
	if err != nil {
		t.Fatalf("ToggleJourneyStep() error: %v", err)
	}
	if updated.Journey.Status != domain.JourneyAchieved {
		t.Errorf("journey status = %s, want achieved", updated.Journey.Status)
	}
	found := false
	for _, e := range es.events {
		if e.Type == "journey_achieved" {
			found = true
		}
	}
	if !found {
		t.Errorf("no journey_achieved event in %+v", es.events)
	}
}

func TestToggleJourneyStep_UncompleteDoesNotCelebrate(t *testing.T) {
	steps := []domain.JourneyStep{{ID: "1", IsCompleted: true}}
	svc, _, es, _ := newAccountsFixture([]domain.Account{
		{ID: "j2", Name: "Voltou", Status: domain.StatusActive, Journey: &domain.Journey{Steps: steps}},
	})

	updated, err := svc.ToggleJourneyStep(context.Background(), "j2", "1")
	if err != nil {
		t.Fatalf("ToggleJourneyStep() error: %v", err)
	}
	if updated.Journey.Steps[0].IsCompleted {
		t.Error("step was not toggled off")
	}
	if len(es.events) != 0 {
		t.Errorf("unexpected events: %+v", es.events)
	}
}

func TestAccountsDelete_FlushesCache(t *testing.T) {
	svc, as, _, cache := newAccountsFixture([]domain.Account{{ID: "d1", Name: "Sai", Status: domain.StatusActive}})

	if err := svc.Delete(context.Background(), "d1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if as.deletedID != "d1" {
		t.Errorf("deleted id = %q, want d1", as.deletedID)
	}
	if cache.flushes == 0 {
		t.Error("cache was not flushed after delete")
	}
}
