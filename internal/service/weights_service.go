package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
	"github.com/amarinho/cs-pulse-bfa-go/internal/infra/observability"
	"github.com/amarinho/cs-pulse-bfa-go/internal/port"
	"github.com/amarinho/cs-pulse-bfa-go/internal/scoring"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var weightsTracer = otel.Tracer("service/weights")

// WeightsService owns the health weight vector lifecycle. Any mutation of
// the vector recomputes every account's health score in the same use case,
// so a reader never observes "new weights, old scores".
type WeightsService struct {
	weights  port.WeightStore
	accounts port.AccountStore
	cache    port.Cache[[]domain.Account]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewWeightsService creates the weights service with dependencies injected.
func NewWeightsService(
	weights port.WeightStore,
	accounts port.AccountStore,
	cache port.Cache[[]domain.Account],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *WeightsService {
	return &WeightsService{
		weights:  weights,
		accounts: accounts,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

// Get returns the persisted weight vector, falling back to the documented
// default (40/20/30/10) when none was ever saved.
func (s *WeightsService) Get(ctx context.Context) (domain.HealthWeights, error) {
	ctx, span := weightsTracer.Start(ctx, "WeightsService.Get")
	defer span.End()

	w, err := s.weights.GetWeights(ctx)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return domain.DefaultWeights(), nil
		}
		return domain.HealthWeights{}, fmt.Errorf("get weights: %w", err)
	}
	return w, nil
}

// ApplyWeightChange persists the new vector and recomputes every account's
// health score against it as one logical transition. Values are not clamped
// server-side — input validation is the caller's concern.
func (s *WeightsService) ApplyWeightChange(ctx context.Context, w domain.HealthWeights) (domain.HealthWeights, []domain.Account, error) {
	ctx, span := weightsTracer.Start(ctx, "WeightsService.ApplyWeightChange")
	defer span.End()
	span.SetAttributes(attribute.Float64("weights.sum", w.Sum()))

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return domain.HealthWeights{}, nil, fmt.Errorf("list accounts for recompute: %w", err)
	}

	recomputed := scoring.RecalculateAll(accounts, w)

	if err := s.weights.SaveWeights(ctx, w); err != nil {
		return domain.HealthWeights{}, nil, fmt.Errorf("save weights: %w", err)
	}
	if err := s.accounts.SaveHealthScores(ctx, recomputed); err != nil {
		return domain.HealthWeights{}, nil, fmt.Errorf("save recomputed scores: %w", err)
	}

	// Drop any cached snapshot so the next read sees the new scores.
	s.cache.Flush()
	s.metrics.IncrScoreRecompute()

	s.logger.Info("weight vector applied",
		zap.Float64("engagement", w.Engagement),
		zap.Float64("support", w.Support),
		zap.Float64("finance", w.Finance),
		zap.Float64("risk", w.Risk),
		zap.Int("accounts_recomputed", len(recomputed)),
	)

	return w, recomputed, nil
}

// SetWeight adjusts a single factor and applies the change.
func (s *WeightsService) SetWeight(ctx context.Context, factor string, value float64) (domain.HealthWeights, []domain.Account, error) {
	ctx, span := weightsTracer.Start(ctx, "WeightsService.SetWeight")
	defer span.End()

	w, err := s.Get(ctx)
	if err != nil {
		return domain.HealthWeights{}, nil, err
	}

	switch factor {
	case "engagement":
		w.Engagement = value
	case "support":
		w.Support = value
	case "finance":
		w.Finance = value
	case "risk":
		w.Risk = value
	default:
		return domain.HealthWeights{}, nil, &domain.ErrValidation{Field: "factor", Message: "fator de peso desconhecido"}
	}

	return s.ApplyWeightChange(ctx, w)
}

// ResetToDefault restores 40/20/30/10 and recomputes the collection.
func (s *WeightsService) ResetToDefault(ctx context.Context) (domain.HealthWeights, []domain.Account, error) {
	ctx, span := weightsTracer.Start(ctx, "WeightsService.ResetToDefault")
	defer span.End()

	return s.ApplyWeightChange(ctx, domain.DefaultWeights())
}
