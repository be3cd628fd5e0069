package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
)

// ============================================================
// Global event stream — append-only cs_events
// ============================================================

// AppendEvent inserts one stream row.
func (c *Client) AppendEvent(ctx context.Context, e *domain.StreamEvent) error {
	ctx, span := tracer.Start(ctx, "Supabase.AppendEvent")
	defer span.End()

	cols := map[string]any{
		"id":         e.ID,
		"account_id": e.AccountID,
		"type":       e.Type,
		"message":    e.Message,
		"created_at": e.CreatedAt,
	}
	if _, err := c.doPost(ctx, "cs_events", cols); err != nil {
		return &domain.ErrExternalService{Service: "supabase/events", Err: err}
	}
	return nil
}

// ListEvents returns the newest events first.
func (c *Client) ListEvents(ctx context.Context, limit int) ([]domain.StreamEvent, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListEvents")
	defer span.End()

	path := fmt.Sprintf("cs_events?order=created_at.desc&limit=%d", limit)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/events", Err: err}
	}

	events := []domain.StreamEvent{}
	if body != nil && string(body) != "[]" {
		if err := json.Unmarshal(body, &events); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
	}
	return events, nil
}
