package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Health weights — singleton row in cs_health_weights
// ============================================================

// weightsRowID pins the vector to one row; the table never grows.
const weightsRowID = 1

type weightsRow struct {
	ID         int     `json:"id"`
	Engagement float64 `json:"engagement"`
	Support    float64 `json:"support"`
	Finance    float64 `json:"finance"`
	Risk       float64 `json:"risk"`
}

// GetWeights fetches the persisted weight vector. ErrNotFound means no
// vector was ever saved and the caller should fall back to defaults.
func (c *Client) GetWeights(ctx context.Context) (domain.HealthWeights, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetWeights")
	defer span.End()

	path := fmt.Sprintf("cs_health_weights?id=eq.%d&limit=1", weightsRowID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return domain.HealthWeights{}, &domain.ErrExternalService{Service: "supabase/weights", Err: err}
	}

	var rows []weightsRow
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return domain.HealthWeights{}, fmt.Errorf("decode weights: %w", err)
		}
	}
	if len(rows) == 0 {
		return domain.HealthWeights{}, &domain.ErrNotFound{Resource: "weights", ID: "singleton"}
	}

	r := rows[0]
	return domain.HealthWeights{
		Engagement: r.Engagement,
		Support:    r.Support,
		Finance:    r.Finance,
		Risk:       r.Risk,
	}, nil
}

// SaveWeights upserts the singleton vector row.
func (c *Client) SaveWeights(ctx context.Context, w domain.HealthWeights) error {
	ctx, span := tracer.Start(ctx, "Supabase.SaveWeights")
	defer span.End()

	cols := map[string]any{
		"engagement": w.Engagement,
		"support":    w.Support,
		"finance":    w.Finance,
		"risk":       w.Risk,
	}

	// PATCH first; when the row does not exist yet, insert it.
	err := c.doPatch(ctx, fmt.Sprintf("cs_health_weights?id=eq.%d", weightsRowID), cols)
	if err == nil {
		if _, getErr := c.GetWeights(ctx); getErr == nil {
			return nil
		}
	}

	cols["id"] = weightsRowID
	if _, err := c.doPost(ctx, "cs_health_weights", cols); err != nil {
		return &domain.ErrExternalService{Service: "supabase/weights", Err: err}
	}

	c.logger.Info("supabase: weight vector saved",
		zap.Float64("engagement", w.Engagement),
		zap.Float64("support", w.Support),
		zap.Float64("finance", w.Finance),
		zap.Float64("risk", w.Risk),
	)
	return nil
}
