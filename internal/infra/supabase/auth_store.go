package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"

	"github.com/google/uuid"
)

// ============================================================
// AuthStore implementation — dashboard users + refresh tokens
// ============================================================

// userRow maps cs_users columns; the bcrypt hash never leaves this package
// inside a domain struct.
type userRow struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Role         string     `json:"role"`
	PasswordHash string     `json:"password_hash"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
}

// GetUserByEmail fetches a dashboard user and their password hash.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.DashboardUser, string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByEmail")
	defer span.End()

	path := fmt.Sprintf("cs_users?email=eq.%s&limit=1", email)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, "", &domain.ErrExternalService{Service: "supabase/users", Err: err}
	}

	var rows []userRow
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, "", fmt.Errorf("decode cs_users: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, "", &domain.ErrNotFound{Resource: "user", ID: email}
	}

	r := rows[0]
	return &domain.DashboardUser{
		ID:        r.ID,
		Email:     r.Email,
		FullName:  r.FullName,
		Role:      r.Role,
		CreatedAt: r.CreatedAt,
		LastLogin: r.LastLogin,
	}, r.PasswordHash, nil
}

// UpdateLastLogin stamps the login time on the user row.
func (c *Client) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateLastLogin")
	defer span.End()

	path := fmt.Sprintf("cs_users?id=eq.%s", userID)
	return c.doPatch(ctx, path, map[string]any{"last_login": at.Format(time.RFC3339)})
}

// --- Refresh tokens ---

func (c *Client) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.StoreRefreshToken")
	defer span.End()

	data := map[string]any{
		"id":         uuid.New().String(),
		"user_id":    userID,
		"token_hash": tokenHash,
		"expires_at": expiresAt.Format(time.RFC3339),
		"revoked":    false,
	}

	_, err := c.doPost(ctx, "cs_refresh_tokens", data)
	return err
}

func (c *Client) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetRefreshToken")
	defer span.End()

	path := fmt.Sprintf("cs_refresh_tokens?token_hash=eq.%s&revoked=eq.false&limit=1", tokenHash)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "refresh_token", ID: "presented"}
	}

	var rows []domain.AuthRefreshToken
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode cs_refresh_tokens: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "refresh_token", ID: "presented"}
	}
	return &rows[0], nil
}

func (c *Client) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeRefreshToken")
	defer span.End()

	path := fmt.Sprintf("cs_refresh_tokens?token_hash=eq.%s", tokenHash)
	return c.doPatch(ctx, path, map[string]any{"revoked": true})
}
