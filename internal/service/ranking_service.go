package service

import (
	"context"
	"time"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
	"github.com/amarinho/cs-pulse-bfa-go/internal/scoring"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var rankingTracer = otel.Tracer("service/ranking")

// leaderboardPageSize is fixed by the dashboard layout.
const leaderboardPageSize = 10

// RankingService serves the engagement leaderboard. It reads accounts
// through AccountsService so entries always reflect normalized state.
type RankingService struct {
	accounts *AccountsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewRankingService creates the ranking service with dependencies injected.
func NewRankingService(accounts *AccountsService, logger *zap.Logger) *RankingService {
	return &RankingService{
		accounts: accounts,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Leaderboard returns one page of the ranking. Page 1 splits into the podium
// (up to 3 entries) and a list holding the remainder of the page; ranks stay
// absolute across pages. Pages below 1 are treated as page 1.
func (s *RankingService) Leaderboard(ctx context.Context, page int) (*domain.LeaderboardPage, error) {
	ctx, span := rankingTracer.Start(ctx, "RankingService.Leaderboard")
	defer span.End()

	if page < 1 {
		page = 1
	}
	span.SetAttributes(attribute.Int("leaderboard.page", page))

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := scoring.Rank(accounts, s.now())

	out := &domain.LeaderboardPage{
		Page:     page,
		PageSize: leaderboardPageSize,
		Total:    len(entries),
	}

	start := (page - 1) * leaderboardPageSize
	if page == 1 {
		podiumEnd := min(3, len(entries))
		out.Podium = entries[:podiumEnd]
		// The podium entries are not repeated in the list.
		start = podiumEnd
	}

	end := min(page*leaderboardPageSize, len(entries))
	if start >= end {
		out.List = []domain.RankingEntry{}
		return out, nil
	}
	out.List = entries[start:end]
	return out, nil
}

// FullRanking returns the complete ordered ranking, for exports.
func (s *RankingService) FullRanking(ctx context.Context) ([]domain.RankingEntry, error) {
	ctx, span := rankingTracer.Start(ctx, "RankingService.FullRanking")
	defer span.End()

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	return scoring.Rank(accounts, s.now()), nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
