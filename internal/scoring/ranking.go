package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
)

// stageWeights maps journey step id → ranking points. Every completed step
// contributes its own weight (cumulative) — steps 1-3 complete adds
// 100+250+500, not just 500. Product has not asked for this to change.
var stageWeights = map[string]int{
	"1": 100,
	"2": 250,
	"3": 500,
	"4": 800,
	"5": 1000,
}

// Recency bonuses by day-buckets since last access.
const (
	bonusActiveNow  = 150
	bonusWithin1Day = 100
	bonusWithin3Day = 50
	bonusWithin7Day = 20
)

const maxRevenueBonus = 200.0

// EngagementScore is the ranking-only composite: health×2 plus the stage
// weight of every completed step plus a recency bonus plus a revenue bonus
// capped at 200. Additive and unbounded above.
func EngagementScore(a domain.Account, now time.Time) int {
	score := float64(a.HealthScore * 2)

	if a.Journey != nil {
		for _, s := range a.Journey.Steps {
			if s.IsCompleted {
				score += float64(stageWeights[s.ID])
			}
		}
	}

	score += float64(recencyBonus(a.LastActive, now))
	score += math.Min(maxRevenueBonus, a.MRR/10)

	return int(math.Round(score))
}

func recencyBonus(lastActive string, now time.Time) int {
	switch lastActive {
	case domain.LastActiveNow:
		return bonusActiveNow
	case domain.LastActiveNever, "":
		return 0
	}

	t, err := time.Parse(time.RFC3339, lastActive)
	if err != nil {
		return 0
	}

	days := now.Sub(t).Hours() / 24
	switch {
	case days <= 1:
		return bonusWithin1Day
	case days <= 3:
		return bonusWithin3Day
	case days <= 7:
		return bonusWithin7Day
	default:
		return 0
	}
}

// Rank filters out churned and test accounts, scores the rest and returns
// them ordered by score descending with absolute 1-based ranks. The sort is
// stable: equal scores keep their input order (no fairer tie-break has been
// specified by product).
func Rank(accounts []domain.Account, now time.Time) []domain.RankingEntry {
	entries := make([]domain.RankingEntry, 0, len(accounts))
	for _, a := range accounts {
		if a.Status == domain.StatusChurned || a.IsTest {
			continue
		}

		var badge domain.StageBadge
		if a.Journey != nil {
			badge = StageBadge(*a.Journey)
		} else {
			badge = setupBadge
		}

		entries = append(entries, domain.RankingEntry{
			AccountID:  a.ID,
			Name:       a.Name,
			Company:    a.Company,
			Score:      EngagementScore(a, now),
			StageBadge: badge,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
