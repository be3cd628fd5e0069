package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
	"github.com/amarinho/cs-pulse-bfa-go/internal/port"
	"github.com/amarinho/cs-pulse-bfa-go/internal/scoring"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var analyticsTracer = otel.Tracer("service/analytics")

// AnalyticsService computes the overview numbers and the Accelerator
// target progress from the normalized account collection.
type AnalyticsService struct {
	accounts *AccountsService
	targets  port.TargetStore
	logger   *zap.Logger
}

// NewAnalyticsService creates the analytics service with dependencies injected.
func NewAnalyticsService(accounts *AccountsService, targets port.TargetStore, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		accounts: accounts,
		targets:  targets,
		logger:   logger,
	}
}

// Summary computes the headline dashboard block. Test accounts are out of
// the global score and out of every other aggregate too.
func (s *AnalyticsService) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.Summary")
	defer span.End()

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}

	out := &domain.DashboardSummary{
		GlobalScore:     scoring.GlobalScore(accounts),
		StatusBreakdown: make(map[domain.AccountStatus]int),
	}

	churned := 0
	for _, a := range accounts {
		if a.IsTest {
			continue
		}
		out.TotalAccounts++
		out.TotalMRR += a.MRR
		out.StatusBreakdown[a.Status]++
		if a.Status == domain.StatusChurned {
			churned++
		}
	}
	if out.TotalAccounts > 0 {
		out.ChurnRatePct = round1(float64(churned) / float64(out.TotalAccounts) * 100)
	}
	return out, nil
}

// CohortRetention groups non-test accounts by join month and reports how
// many of each cohort have not churned, oldest cohort first.
func (s *AnalyticsService) CohortRetention(ctx context.Context) ([]domain.CohortRetention, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.CohortRetention")
	defer span.End()

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}

	type bucket struct{ joined, retained int }
	byMonth := make(map[string]*bucket)
	for _, a := range accounts {
		if a.IsTest || a.JoinedAt.IsZero() {
			continue
		}
		key := a.JoinedAt.UTC().Format("2006-01")
		b, ok := byMonth[key]
		if !ok {
			b = &bucket{}
			byMonth[key] = b
		}
		b.joined++
		if a.Status != domain.StatusChurned {
			b.retained++
		}
	}

	cohorts := make([]domain.CohortRetention, 0, len(byMonth))
	for key, b := range byMonth {
		cohorts = append(cohorts, domain.CohortRetention{
			Cohort:       key,
			Joined:       b.joined,
			Retained:     b.retained,
			RetentionPct: round1(float64(b.retained) / float64(b.joined) * 100),
		})
	}
	sort.Slice(cohorts, func(i, j int) bool { return cohorts[i].Cohort < cohorts[j].Cohort })
	return cohorts, nil
}

// AcceleratorProgress loads targets and accounts concurrently, then scores
// each target against the current aggregate for its metric.
func (s *AnalyticsService) AcceleratorProgress(ctx context.Context) ([]domain.TargetProgress, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.AcceleratorProgress")
	defer span.End()

	var (
		targets  []domain.GrowthTarget
		accounts []domain.Account
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		targets, err = s.targets.ListTargets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		accounts, err = s.accounts.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("accelerator progress: %w", err)
	}

	out := make([]domain.TargetProgress, 0, len(targets))
	for _, t := range targets {
		current := s.currentValue(t.Metric, accounts)
		p := domain.TargetProgress{GrowthTarget: t, CurrentVal: current}
		if t.TargetVal > 0 {
			p.ProgressPct = round1(math.Min(100, current/t.TargetVal*100))
			p.Achieved = current >= t.TargetVal
		}
		out = append(out, p)
	}
	return out, nil
}

// CreateTarget registers a new Accelerator goal.
func (s *AnalyticsService) CreateTarget(ctx context.Context, t *domain.GrowthTarget) (*domain.GrowthTarget, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.CreateTarget")
	defer span.End()

	if t.Label == "" {
		return nil, &domain.ErrValidation{Field: "label", Message: "rótulo é obrigatório"}
	}
	switch t.Metric {
	case "mrr", "accounts", "global_score":
	default:
		return nil, &domain.ErrValidation{Field: "metric", Message: "métrica desconhecida"}
	}

	t.ID = uuid.NewString()
	created, err := s.targets.CreateTarget(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create target: %w", err)
	}
	s.logger.Info("growth target created",
		zap.String("target_id", created.ID),
		zap.String("metric", created.Metric),
	)
	return created, nil
}

// DeleteTarget removes an Accelerator goal.
func (s *AnalyticsService) DeleteTarget(ctx context.Context, targetID string) error {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.DeleteTarget")
	defer span.End()
	return s.targets.DeleteTarget(ctx, targetID)
}

func (s *AnalyticsService) currentValue(metric string, accounts []domain.Account) float64 {
	switch metric {
	case "mrr":
		var total float64
		for _, a := range accounts {
			if !a.IsTest {
				total += a.MRR
			}
		}
		return total
	case "accounts":
		n := 0
		for _, a := range accounts {
			if !a.IsTest && a.Status != domain.StatusChurned {
				n++
			}
		}
		return float64(n)
	case "global_score":
		return float64(scoring.GlobalScore(accounts))
	default:
		return 0
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
