package scoring

import (
	"math"
	"testing"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
)

func TestComputeScore_WeightedFormula(t *testing.T) {
	cases := []struct {
		name    string
		metrics domain.HealthMetrics
		weights domain.HealthWeights
		want    int
	}{
		{
			name:    "default weights",
			metrics: domain.HealthMetrics{Engagement: 80, Support: 60, Finance: 90, Risk: 40},
			weights: domain.DefaultWeights(),
			// (80*40 + 60*20 + 90*30 + 40*10) / 100 = 75.0
			want: 75,
		},
		{
			name:    "weights not summing to 100 are normalized",
			metrics: domain.HealthMetrics{Engagement: 100, Support: 100, Finance: 100, Risk: 100},
			weights: domain.HealthWeights{Engagement: 7, Support: 3, Finance: 5, Risk: 5},
			want:    100,
		},
		{
			name:    "single non-zero weight selects that metric",
			metrics: domain.HealthMetrics{Engagement: 33, Support: 99, Finance: 1, Risk: 1},
			weights: domain.HealthWeights{Support: 50},
			want:    99,
		},
		{
			name:    "rounds to nearest integer",
			metrics: domain.HealthMetrics{Engagement: 50, Support: 51, Finance: 0, Risk: 0},
			weights: domain.HealthWeights{Engagement: 1, Support: 1},
			want:    51, // 50.5 rounds up
		},
		{
			name:    "zero weight sum guards division by zero",
			metrics: domain.HealthMetrics{Engagement: 100, Support: 100, Finance: 100, Risk: 100},
			weights: domain.HealthWeights{},
			want:    0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeScore(tc.metrics, tc.weights)
			if got != tc.want {
				t.Errorf("ComputeScore() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestComputeScore_MatchesRoundedExpression(t *testing.T) {
	// Property 1: for Σw > 0 the result equals round(Σ m_i·w_i / Σ w_i).
	metrics := []domain.HealthMetrics{
		{Engagement: 13, Support: 87, Finance: 42, Risk: 99},
		{Engagement: 0, Support: 0, Finance: 0, Risk: 0},
		{Engagement: 100, Support: 1, Finance: 50, Risk: 77},
	}
	weights := []domain.HealthWeights{
		domain.DefaultWeights(),
		{Engagement: 1, Support: 2, Finance: 3, Risk: 4},
		{Engagement: 99, Support: 1, Finance: 0, Risk: 0},
	}

	for _, m := range metrics {
		for _, w := range weights {
			want := int(math.Round((m.Engagement*w.Engagement + m.Support*w.Support +
				m.Finance*w.Finance + m.Risk*w.Risk) / w.Sum()))
			if got := ComputeScore(m, w); got != want {
				t.Errorf("ComputeScore(%+v, %+v) = %d, want %d", m, w, got, want)
			}
		}
	}
}

func TestComputeScore_Idempotent(t *testing.T) {
	m := domain.HealthMetrics{Engagement: 71, Support: 44, Finance: 88, Risk: 23}
	w := domain.DefaultWeights()
	if first, second := ComputeScore(m, w), ComputeScore(m, w); first != second {
		t.Errorf("two identical calls disagree: %d vs %d", first, second)
	}
}

func TestRecalculateAll_ReplacesEveryScore(t *testing.T) {
	accounts := []domain.Account{
		{ID: "a1", HealthScore: 10, Metrics: &domain.HealthMetrics{Engagement: 90, Support: 90, Finance: 90, Risk: 90}},
		{ID: "a2", HealthScore: 99, Metrics: &domain.HealthMetrics{Engagement: 10, Support: 10, Finance: 10, Risk: 10}},
	}
	w := domain.DefaultWeights()

	out := RecalculateAll(accounts, w)

	for _, a := range out {
		if want := ComputeScore(*a.Metrics, w); a.HealthScore != want {
			t.Errorf("account %s: score %d, want %d", a.ID, a.HealthScore, want)
		}
	}
	// Input slice must stay untouched.
	if accounts[0].HealthScore != 10 || accounts[1].HealthScore != 99 {
		t.Error("RecalculateAll mutated its input")
	}
}

func TestRecalculateAll_SynthesizesMissingMetrics(t *testing.T) {
	accounts := []domain.Account{{ID: "no-metrics", HealthScore: 60}}
	out := RecalculateAll(accounts, domain.DefaultWeights())

	m := out[0].Metrics
	if m == nil {
		t.Fatal("expected metrics to be synthesized")
	}
	for name, v := range map[string]float64{
		"engagement": m.Engagement, "support": m.Support,
		"finance": m.Finance, "risk": m.Risk,
	} {
		if v < 0 || v > 100 {
			t.Errorf("synthesized %s = %v out of [0,100]", name, v)
		}
		// Jitter stays within the spread around the prior score.
		if math.Abs(v-60) > jitterSpread {
			t.Errorf("synthesized %s = %v strays more than %v from baseline 60", name, v, jitterSpread)
		}
	}
}

func TestRecalculateAll_Deterministic(t *testing.T) {
	// Property 2: two passes with no weight change produce identical output.
	accounts := []domain.Account{
		{ID: "x1", HealthScore: 45},
		{ID: "x2", HealthScore: 0},
		{ID: "x3", Metrics: &domain.HealthMetrics{Engagement: 50, Support: 50, Finance: 50, Risk: 50}},
	}
	w := domain.DefaultWeights()

	first := RecalculateAll(accounts, w)
	second := RecalculateAll(first, w)

	for i := range first {
		if first[i].HealthScore != second[i].HealthScore {
			t.Errorf("account %s: scores drifted between passes: %d vs %d",
				first[i].ID, first[i].HealthScore, second[i].HealthScore)
		}
		if *first[i].Metrics != *second[i].Metrics {
			t.Errorf("account %s: metrics drifted between passes", first[i].ID)
		}
	}
}

func TestRecalculateAll_ZeroWeights(t *testing.T) {
	// Property 10: an all-zero vector floors every score regardless of metrics.
	accounts := []domain.Account{
		{ID: "z1", Metrics: &domain.HealthMetrics{Engagement: 100, Support: 100, Finance: 100, Risk: 100}},
		{ID: "z2", HealthScore: 88},
	}
	for _, a := range RecalculateAll(accounts, domain.HealthWeights{}) {
		if a.HealthScore != 0 {
			t.Errorf("account %s: score %d with zero weights, want 0", a.ID, a.HealthScore)
		}
	}
}

func TestSynthesizeMetrics_StableAcrossCalls(t *testing.T) {
	a := SynthesizeMetrics("acct-7", 55)
	b := SynthesizeMetrics("acct-7", 55)
	if a != b {
		t.Errorf("same seed produced different metrics: %+v vs %+v", a, b)
	}
	if c := SynthesizeMetrics("acct-8", 55); c == a {
		t.Error("different seeds produced identical metrics (suspicious hash)")
	}
}

func TestGlobalScore(t *testing.T) {
	accounts := []domain.Account{
		{ID: "g1", HealthScore: 80},
		{ID: "g2", HealthScore: 61},
		{ID: "test", HealthScore: 0, IsTest: true}, // excluded from the average
	}
	if got := GlobalScore(accounts); got != 71 {
		t.Errorf("GlobalScore() = %d, want 71", got)
	}
	if got := GlobalScore(nil); got != 0 {
		t.Errorf("GlobalScore(empty) = %d, want 0", got)
	}
	if got := GlobalScore([]domain.Account{{ID: "t", IsTest: true, HealthScore: 90}}); got != 0 {
		t.Errorf("GlobalScore(test-only) = %d, want 0", got)
	}
}
