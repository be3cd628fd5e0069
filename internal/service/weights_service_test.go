package service

import (
	"context"
	"errors"
	"testing"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
	"github.com/amarinho/cs-pulse-bfa-go/internal/infra/observability"
	"github.com/amarinho/cs-pulse-bfa-go/internal/scoring"

	"go.uber.org/zap"
)

func newWeightsFixture(accounts []domain.Account) (*WeightsService, *mockWeightStore, *mockAccountStore, *mockCache) {
	ws := &mockWeightStore{}
	as := &mockAccountStore{accounts: accounts}
	cache := newMockCache()
	svc := NewWeightsService(ws, as, cache, observability.NewMetrics(), zap.NewNop())
	return svc, ws, as, cache
}

func TestWeightsGet_FallsBackToDefault(t *testing.T) {
	svc, _, _, _ := newWeightsFixture(nil)

	w, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if w != domain.DefaultWeights() {
		t.Errorf("Get() = %+v, want default 40/20/30/10", w)
	}
}

func TestApplyWeightChange_NoStaleScores(t *testing.T) {
	// Any observable pair (weights, scores) must be consistent: after the
	// change, every persisted score equals the formula under the new vector.
	accounts := []domain.Account{
		{ID: "a1", Metrics: &domain.HealthMetrics{Engagement: 90, Support: 10, Finance: 50, Risk: 50}},
		{ID: "a2", Metrics: &domain.HealthMetrics{Engagement: 10, Support: 90, Finance: 50, Risk: 50}},
		{ID: "a3"}, // no metrics persisted, must be synthesized
	}
	svc, ws, as, cache := newWeightsFixture(accounts)

	newW := domain.HealthWeights{Engagement: 100}
	got, recomputed, err := svc.ApplyWeightChange(context.Background(), newW)
	if err != nil {
		t.Fatalf("ApplyWeightChange() error: %v", err)
	}
	if got != newW {
		t.Errorf("returned weights %+v, want %+v", got, newW)
	}

	if ws.saved == nil || *ws.saved != newW {
		t.Fatalf("weights were not persisted: %+v", ws.saved)
	}
	if as.savedScores == nil {
		t.Fatal("recomputed scores were not persisted")
	}
	for _, a := range as.savedScores {
		if a.Metrics == nil {
			t.Fatalf("account %s persisted without metrics", a.ID)
		}
		if want := scoring.ComputeScore(*a.Metrics, newW); a.HealthScore != want {
			t.Errorf("account %s persisted score %d, want %d", a.ID, a.HealthScore, want)
		}
	}
	if len(recomputed) != len(accounts) {
		t.Errorf("recomputed %d accounts, want %d", len(recomputed), len(accounts))
	}
	if cache.flushes == 0 {
		t.Error("cache was not flushed after the weight change")
	}
}

func TestSetWeight_SingleFactor(t *testing.T) {
	svc, ws, _, _ := newWeightsFixture(nil)

	w, _, err := svc.SetWeight(context.Background(), "support", 55)
	if err != nil {
		t.Fatalf("SetWeight() error: %v", err)
	}
	if w.Support != 55 {
		t.Errorf("support weight = %v, want 55", w.Support)
	}
	// Untouched factors keep the default values.
	if w.Engagement != 40 || w.Finance != 30 || w.Risk != 10 {
		t.Errorf("other factors drifted: %+v", w)
	}
	if ws.saved == nil {
		t.Error("vector was not persisted")
	}
}

func TestSetWeight_UnknownFactor(t *testing.T) {
	svc, ws, _, _ := newWeightsFixture(nil)

	_, _, err := svc.SetWeight(context.Background(), "vibes", 50)
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if ws.saved != nil {
		t.Error("invalid factor must not persist anything")
	}
}

func TestResetToDefault(t *testing.T) {
	svc, ws, _, _ := newWeightsFixture(nil)
	custom := domain.HealthWeights{Engagement: 1, Support: 1, Finance: 1, Risk: 1}
	if _, _, err := svc.ApplyWeightChange(context.Background(), custom); err != nil {
		t.Fatal(err)
	}

	w, _, err := svc.ResetToDefault(context.Background())
	if err != nil {
		t.Fatalf("ResetToDefault() error: %v", err)
	}
	if w != domain.DefaultWeights() {
		t.Errorf("reset vector = %+v, want default", w)
	}
	if *ws.saved != domain.DefaultWeights() {
		t.Errorf("persisted vector = %+v, want default", *ws.saved)
	}
}
