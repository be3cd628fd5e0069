// Package domain defines the core business entities for the CS Pulse
// dashboard. These models are independent of external services and represent
// the canonical data structures used throughout the backend.
package domain

import "time"

// ============================================================
// Account (the customer "User" tracked by the dashboard)
// ============================================================

// AccountStatus is the lifecycle status of a customer account.
type AccountStatus string

const (
	StatusActive  AccountStatus = "Active"
	StatusRisk    AccountStatus = "Risk"
	StatusChurned AccountStatus = "Churned"
	StatusNew     AccountStatus = "New"
	StatusGhost   AccountStatus = "Ghost"
)

// LastActive sentinel values. Anything else is an RFC3339 timestamp.
const (
	LastActiveNever = "Nunca"
	LastActiveNow   = "Agora"
)

// MaxHistoryEvents caps the per-account audit trail (newest first).
const MaxHistoryEvents = 50

// Account is a customer account in the book of business.
// HealthScore is derived — always recomputable from Metrics + the current
// weight vector, never authoritative on its own.
type Account struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Company     string         `json:"company,omitempty"`
	Email       string         `json:"email,omitempty"`
	Plan        string         `json:"plan,omitempty"`
	Status      AccountStatus  `json:"status"`
	MRR         float64        `json:"mrr"`
	HealthScore int            `json:"health_score"`
	Metrics     *HealthMetrics `json:"metrics,omitempty"`
	Journey     *Journey       `json:"journey,omitempty"`
	LastActive  string         `json:"last_active"` // RFC3339 or "Nunca"/"Agora"
	JoinedAt    time.Time      `json:"joined_at"`
	IsTest      bool           `json:"is_test"`
	History     []AccountEvent `json:"history,omitempty"`
}

// HealthMetrics are the four 0-100 sub-scores feeding the health formula.
type HealthMetrics struct {
	Engagement float64 `json:"engagement"`
	Support    float64 `json:"support"`
	Finance    float64 `json:"finance"`
	Risk       float64 `json:"risk"`
}

// AccountEvent is one timestamped entry in an account's audit trail.
type AccountEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // status_change, plan_change, activity, journey_achieved, ...
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// AccountUpdate is a partial update. Nil fields are left untouched so the
// service can diff old vs new state and emit audit events.
type AccountUpdate struct {
	Name       *string        `json:"name,omitempty"`
	Company    *string        `json:"company,omitempty"`
	Email      *string        `json:"email,omitempty"`
	Plan       *string        `json:"plan,omitempty"`
	Status     *AccountStatus `json:"status,omitempty"`
	MRR        *float64       `json:"mrr,omitempty"`
	Metrics    *HealthMetrics `json:"metrics,omitempty"`
	Journey    *Journey       `json:"journey,omitempty"`
	LastActive *string        `json:"last_active,omitempty"`
	IsTest     *bool          `json:"is_test,omitempty"`
}

// ============================================================
// Journey (fixed 5-step success checklist, independent of health)
// ============================================================

// JourneyStatus is derived from step completion, never stored authoritatively.
type JourneyStatus string

const (
	JourneyNotStarted JourneyStatus = "not_started"
	JourneyInProgress JourneyStatus = "in_progress"
	JourneyAchieved   JourneyStatus = "achieved"
)

// JourneyStep is one step of the checklist. IDs are stable ("1".."5") across
// template updates; labels and descriptions may be refreshed from the template
// without discarding completion flags.
type JourneyStep struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Journey is an account's success journey.
type Journey struct {
	CoreGoal string        `json:"core_goal,omitempty"`
	Status   JourneyStatus `json:"status"`
	Steps    []JourneyStep `json:"steps"`
}

// CompletedCount returns how many steps are completed.
func (j Journey) CompletedCount() int {
	n := 0
	for _, s := range j.Steps {
		if s.IsCompleted {
			n++
		}
	}
	return n
}

// ============================================================
// Global event stream (append-only, feeds the activity feed)
// ============================================================

// StreamEvent is one row of the global event stream.
type StreamEvent struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
