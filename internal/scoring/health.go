package scoring

import (
	"math"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
)

// jitterSpread is the +/- range applied around the baseline when a metrics
// record has to be synthesized for an account that never had one persisted.
const jitterSpread = 15.0

// ComputeScore applies the weighted health formula:
// round(Σ metric_i × weight_i / Σ weight_i). A zero weight sum yields 0
// instead of dividing by zero.
func ComputeScore(m domain.HealthMetrics, w domain.HealthWeights) int {
	sum := w.Sum()
	if sum == 0 {
		return 0
	}
	weighted := m.Engagement*w.Engagement +
		m.Support*w.Support +
		m.Finance*w.Finance +
		m.Risk*w.Risk
	return int(math.Round(weighted / sum))
}

// RecalculateAll re-scores every account against the given weight vector and
// returns a new slice — the input is never mutated, so the caller can swap
// state atomically. Accounts missing a metrics record get one synthesized
// around their previous score before scoring.
func RecalculateAll(accounts []domain.Account, w domain.HealthWeights) []domain.Account {
	out := make([]domain.Account, len(accounts))
	for i, a := range accounts {
		if a.Metrics == nil {
			m := SynthesizeMetrics(a.ID, a.HealthScore)
			a.Metrics = &m
		}
		a.HealthScore = ComputeScore(*a.Metrics, w)
		out[i] = a
	}
	return out
}

// SynthesizeMetrics builds a deterministic baseline metrics record for an
// account that has none persisted: each factor is jittered around the
// account's last known score, seeded by the account id so repeated calls
// agree. A zero prior score falls back to a neutral 70 baseline.
func SynthesizeMetrics(accountID string, priorScore int) domain.HealthMetrics {
	base := float64(priorScore)
	if base == 0 {
		base = 70
	}
	return domain.HealthMetrics{
		Engagement: jitter(accountID+":engagement", base),
		Support:    jitter(accountID+":support", base),
		Finance:    jitter(accountID+":finance", base),
		Risk:       jitter(accountID+":risk", base),
	}
}

func jitter(seed string, base float64) float64 {
	v := base + (seededUnit(seed)-0.5)*2*jitterSpread
	return clamp(math.Round(v), 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// GlobalScore is the population average of HealthScore over non-test
// accounts, rounded; 0 on an empty population.
func GlobalScore(accounts []domain.Account) int {
	var sum, n float64
	for _, a := range accounts {
		if a.IsTest {
			continue
		}
		sum += float64(a.HealthScore)
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / n))
}
