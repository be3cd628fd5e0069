package domain

// ============================================================
// Health weights & ranking
// ============================================================

// HealthWeights is the tunable weight vector of the health formula.
// Values are 0-100 but the sum is NOT forced to 100 — the aggregator
// normalizes by the actual sum.
type HealthWeights struct {
	Engagement float64 `json:"engagement"`
	Support    float64 `json:"support"`
	Finance    float64 `json:"finance"`
	Risk       float64 `json:"risk"`
}

// DefaultWeights is the documented default vector.
func DefaultWeights() HealthWeights {
	return HealthWeights{Engagement: 40, Support: 20, Finance: 30, Risk: 10}
}

// Sum returns the total of the four weights.
func (w HealthWeights) Sum() float64 {
	return w.Engagement + w.Support + w.Finance + w.Risk
}

// StageBadge identifies the last completed journey stage for display.
type StageBadge struct {
	Label   string `json:"label"`
	StageID string `json:"stage_id"` // "0" for Setup (nothing completed)
}

// RankingEntry is one row of the engagement leaderboard.
type RankingEntry struct {
	Rank       int        `json:"rank"` // absolute, continues across pages
	AccountID  string     `json:"account_id"`
	Name       string     `json:"name"`
	Company    string     `json:"company,omitempty"`
	Score      int        `json:"score"`
	StageBadge StageBadge `json:"stage_badge"`
}

// LeaderboardPage is a paginated slice of the ranking. The first page splits
// into a podium (top 3, null-safe below 3 eligible accounts) and a list.
type LeaderboardPage struct {
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Total    int            `json:"total"`
	Podium   []RankingEntry `json:"podium,omitempty"` // page 1 only
	List     []RankingEntry `json:"list"`
}
