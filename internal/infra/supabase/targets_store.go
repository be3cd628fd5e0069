package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
)

// ============================================================
// Accelerator growth targets — cs_targets
// ============================================================

type targetRow struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Metric    string  `json:"metric"`
	TargetVal float64 `json:"target_value"`
	Deadline  string  `json:"deadline"`
}

// ListTargets returns every growth target.
func (c *Client) ListTargets(ctx context.Context) ([]domain.GrowthTarget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTargets")
	defer span.End()

	body, err := c.doRequest(ctx, http.MethodGet, "cs_targets?order=deadline.asc")
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/targets", Err: err}
	}

	rows := []targetRow{}
	if body != nil && string(body) != "[]" {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode targets: %w", err)
		}
	}

	targets := make([]domain.GrowthTarget, 0, len(rows))
	for _, r := range rows {
		targets = append(targets, domain.GrowthTarget{
			ID:        r.ID,
			Label:     r.Label,
			Metric:    r.Metric,
			TargetVal: r.TargetVal,
			Deadline:  r.Deadline,
		})
	}
	return targets, nil
}

// CreateTarget inserts a new growth target.
func (c *Client) CreateTarget(ctx context.Context, t *domain.GrowthTarget) (*domain.GrowthTarget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTarget")
	defer span.End()

	cols := map[string]any{
		"id":           t.ID,
		"label":        t.Label,
		"metric":       t.Metric,
		"target_value": t.TargetVal,
		"deadline":     t.Deadline,
	}
	body, err := c.doPost(ctx, "cs_targets", cols)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/targets", Err: err}
	}

	var rows []targetRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created target: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase returned no representation for created target")
	}
	r := rows[0]
	return &domain.GrowthTarget{ID: r.ID, Label: r.Label, Metric: r.Metric, TargetVal: r.TargetVal, Deadline: r.Deadline}, nil
}

// DeleteTarget removes a growth target.
func (c *Client) DeleteTarget(ctx context.Context, targetID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTarget")
	defer span.End()

	if err := c.doDelete(ctx, fmt.Sprintf("cs_targets?id=eq.%s", targetID)); err != nil {
		return &domain.ErrExternalService{Service: "supabase/targets", Err: err}
	}
	return nil
}
