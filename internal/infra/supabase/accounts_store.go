package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
	"github.com/amarinho/cs-pulse-bfa-go/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Accounts — CRUD over cs_accounts via PostgREST
// ============================================================
//
// metrics, journey and history live in jsonb columns whose shape matches
// the domain JSON tags, so rows decode straight into domain.Account.

// ListAccounts fetches the whole book, oldest first.
func (c *Client) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAccounts")
	defer span.End()

	var accounts []domain.Account

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doRequest(ctx, http.MethodGet, "cs_accounts?order=joined_at.asc")
			if err != nil {
				return err
			}
			if body == nil || string(body) == "[]" {
				accounts = []domain.Account{}
				return nil
			}
			if err := json.Unmarshal(body, &accounts); err != nil {
				return fmt.Errorf("decode accounts: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts", Err: err}
	}
	return accounts, nil
}

// GetAccount fetches one account by id.
func (c *Client) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	path := fmt.Sprintf("cs_accounts?id=eq.%s&limit=1", accountID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts", Err: err}
	}

	var rows []domain.Account
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
	}
	return &rows[0], nil
}

// CreateAccount inserts a new account row.
func (c *Client) CreateAccount(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateAccount")
	defer span.End()

	body, err := c.doPost(ctx, "cs_accounts", accountColumns(a))
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts", Err: err}
	}

	var rows []domain.Account
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created account: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase returned no representation for created account")
	}

	c.logger.Info("supabase: account created", zap.String("account_id", rows[0].ID))
	return &rows[0], nil
}

// UpdateAccount overwrites the full row for the given account.
func (c *Client) UpdateAccount(ctx context.Context, a *domain.Account) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", a.ID))

	cols := accountColumns(a)
	delete(cols, "id")
	if err := c.doPatch(ctx, fmt.Sprintf("cs_accounts?id=eq.%s", a.ID), cols); err != nil {
		return &domain.ErrExternalService{Service: "supabase/accounts", Err: err}
	}
	return nil
}

// DeleteAccount removes the row permanently.
func (c *Client) DeleteAccount(ctx context.Context, accountID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	if err := c.doDelete(ctx, fmt.Sprintf("cs_accounts?id=eq.%s", accountID)); err != nil {
		return &domain.ErrExternalService{Service: "supabase/accounts", Err: err}
	}
	return nil
}

// SaveHealthScores persists recomputed scores and metrics after a weight
// change, one PATCH per account. PostgREST has no batch update, so a partial
// failure aborts and surfaces the error — the next recompute heals the rest.
func (c *Client) SaveHealthScores(ctx context.Context, accounts []domain.Account) error {
	ctx, span := tracer.Start(ctx, "Supabase.SaveHealthScores")
	defer span.End()
	span.SetAttributes(attribute.Int("accounts.count", len(accounts)))

	for _, a := range accounts {
		cols := map[string]any{
			"health_score": a.HealthScore,
			"metrics":      a.Metrics,
		}
		if err := c.doPatch(ctx, fmt.Sprintf("cs_accounts?id=eq.%s", a.ID), cols); err != nil {
			return &domain.ErrExternalService{Service: "supabase/accounts", Err: err}
		}
	}

	c.logger.Info("supabase: health scores persisted", zap.Int("count", len(accounts)))
	return nil
}

func accountColumns(a *domain.Account) map[string]any {
	return map[string]any{
		"id":           a.ID,
		"name":         a.Name,
		"company":      a.Company,
		"email":        a.Email,
		"plan":         a.Plan,
		"status":       a.Status,
		"mrr":          a.MRR,
		"health_score": a.HealthScore,
		"metrics":      a.Metrics,
		"journey":      a.Journey,
		"history":      a.History,
		"last_active":  a.LastActive,
		"joined_at":    a.JoinedAt,
		"is_test":      a.IsTest,
	}
}
