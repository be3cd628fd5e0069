package handler

import (
	"net/http"

	"github.com/amarinho/cs-pulse-bfa-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Ranking de engajamento
// ============================================================

func leaderboardHandler(svc *service.RankingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/ranking")
		defer span.End()

		page := parseIntQuery(r, "page", 1)
		span.SetAttributes(attribute.Int("leaderboard.page", page))

		board, err := svc.Leaderboard(ctx, page)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, board)
	}
}

func fullRankingHandler(svc *service.RankingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/ranking/full")
		defer span.End()

		entries, err := svc.FullRanking(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("ranking.total", len(entries)))
		writeJSON(w, http.StatusOK, entries)
	}
}
