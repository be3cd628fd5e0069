package domain

// ============================================================
// Dashboard analytics
// ============================================================

// DashboardSummary is the headline block of the overview page.
type DashboardSummary struct {
	GlobalScore     int                   `json:"global_score"` // avg health, non-test accounts
	TotalAccounts   int                   `json:"total_accounts"`
	TotalMRR        float64               `json:"total_mrr"`
	ChurnRatePct    float64               `json:"churn_rate_pct"`
	StatusBreakdown map[AccountStatus]int `json:"status_breakdown"`
}

// CohortRetention is retention for one monthly join cohort.
type CohortRetention struct {
	Cohort       string  `json:"cohort"` // "2026-01"
	Joined       int     `json:"joined"`
	Retained     int     `json:"retained"` // still not churned
	RetentionPct float64 `json:"retention_pct"`
}

// ============================================================
// Accelerator (gamified growth-target tracker)
// ============================================================

// GrowthTarget is one Accelerator goal.
type GrowthTarget struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Metric    string  `json:"metric"` // mrr, accounts, global_score
	TargetVal float64 `json:"target_value"`
	Deadline  string  `json:"deadline,omitempty"` // "2026-12-31"
}

// TargetProgress is a target plus its computed progress.
type TargetProgress struct {
	GrowthTarget
	CurrentVal  float64 `json:"current_value"`
	ProgressPct float64 `json:"progress_pct"` // capped at 100
	Achieved    bool    `json:"achieved"`
}
