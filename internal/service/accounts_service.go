package service

import (
	"context"
	"fmt"
	"time"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
	"github.com/amarinho/cs-pulse-bfa-go/internal/infra/observability"
	"github.com/amarinho/cs-pulse-bfa-go/internal/port"
	"github.com/amarinho/cs-pulse-bfa-go/internal/scoring"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var accountsTracer = otel.Tracer("service/accounts")

const accountsCacheKey = "accounts:all"

// AccountsService manages the book of business. Reads normalize every
// account before it leaves the service: missing metrics are synthesized,
// the journey is re-merged against the current template and the health
// score is recomputed against the current weight vector.
type AccountsService struct {
	store   port.AccountStore
	events  port.EventStore
	weights *WeightsService
	cache   port.Cache[[]domain.Account]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAccountsService creates the accounts service with dependencies injected.
func NewAccountsService(
	store port.AccountStore,
	events port.EventStore,
	weights *WeightsService,
	cache port.Cache[[]domain.Account],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AccountsService {
	return &AccountsService{
		store:   store,
		events:  events,
		weights: weights,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// List returns every account, normalized, served from cache when warm.
func (s *AccountsService) List(ctx context.Context) ([]domain.Account, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.List")
	defer span.End()

	if cached, ok := s.cache.Get(accountsCacheKey); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.metrics.IncrCacheHit("accounts")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("accounts")

	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	w, err := s.weights.Get(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		s.normalize(&accounts[i], w)
	}

	s.cache.Set(accountsCacheKey, accounts)
	span.SetAttributes(attribute.Int("accounts.count", len(accounts)))
	return accounts, nil
}

// Get returns a single account, normalized.
func (s *AccountsService) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	a, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	w, err := s.weights.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.normalize(a, w)
	return a, nil
}

// Create registers a new account with sensible defaults: status New,
// never active, a synthesized metrics baseline and a seeded journey.
func (s *AccountsService) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.Create")
	defer span.End()

	if a.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "nome é obrigatório"}
	}

	now := time.Now().UTC()
	a.ID = uuid.NewString()
	if a.Status == "" {
		a.Status = domain.StatusNew
	}
	if a.LastActive == "" {
		a.LastActive = domain.LastActiveNever
	}
	a.JoinedAt = now

	w, err := s.weights.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.normalize(a, w)

	a.History = []domain.AccountEvent{{
		ID:        uuid.NewString(),
		Type:      "created",
		Message:   fmt.Sprintf("Conta %s criada", a.Name),
		Timestamp: now,
	}}

	created, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.publishEvent(ctx, created.ID, "account_created",
		fmt.Sprintf("Nova conta no book: %s", created.Name))
	s.cache.Flush()

	s.logger.Info("account created",
		zap.String("account_id", created.ID),
		zap.String("status", string(created.Status)),
	)
	return created, nil
}

// Update applies a partial update and emits audit events for the state
// transitions it can observe (status, plan, activity).
func (s *AccountsService) Update(ctx context.Context, accountID string, upd *domain.AccountUpdate) (*domain.Account, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	a, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	prevStatus := a.Status
	prevPlan := a.Plan
	prevLastActive := a.LastActive

	applyUpdate(a, upd)

	if a.Status != prevStatus {
		s.recordHistory(a, "status_change",
			fmt.Sprintf("Status alterado de %s para %s", prevStatus, a.Status), now)
		s.publishEvent(ctx, a.ID, "status_change",
			fmt.Sprintf("%s mudou de %s para %s", a.Name, prevStatus, a.Status))
	}
	if a.Plan != prevPlan && a.Plan != "" {
		s.recordHistory(a, "plan_change",
			fmt.Sprintf("Plano alterado para %s", a.Plan), now)
		s.publishEvent(ctx, a.ID, "plan_change",
			fmt.Sprintf("%s migrou para o plano %s", a.Name, a.Plan))
	}
	if upd.LastActive != nil && a.LastActive != prevLastActive {
		s.recordHistory(a, "activity", "Atividade registrada", now)
	}

	// Metrics or status may have shifted; re-derive before persisting.
	w, err := s.weights.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.normalize(a, w)

	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	s.cache.Flush()
	return a, nil
}

// Delete removes an account permanently.
func (s *AccountsService) Delete(ctx context.Context, accountID string) error {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	if err := s.store.DeleteAccount(ctx, accountID); err != nil {
		return err
	}
	s.cache.Flush()
	s.logger.Info("account deleted", zap.String("account_id", accountID))
	return nil
}

// ToggleJourneyStep flips one checklist step. Reaching the fifth completed
// step fires the journey-achieved celebration into the event stream.
func (s *AccountsService) ToggleJourneyStep(ctx context.Context, accountID, stepID string) (*domain.Account, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.ToggleJourneyStep")
	defer span.End()
	span.SetAttributes(
		attribute.String("account.id", accountID),
		attribute.String("journey.step_id", stepID),
	)

	a, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	prevStatus := a.Journey.Status
	next := scoring.ToggleStep(*a.Journey, stepID, now)
	a.Journey = &next

	if next.Status == domain.JourneyAchieved && prevStatus != domain.JourneyAchieved {
		s.recordHistory(a, "journey_achieved", "Jornada de sucesso concluída", now)
		s.publishEvent(ctx, a.ID, "journey_achieved",
			fmt.Sprintf("%s concluiu a jornada de sucesso 🎉", a.Name))
	}

	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return nil, fmt.Errorf("update journey: %w", err)
	}
	s.cache.Flush()
	return a, nil
}

// Feed returns the newest entries of the global event stream.
func (s *AccountsService) Feed(ctx context.Context, limit int) ([]domain.StreamEvent, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.Feed")
	defer span.End()

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	events, err := s.events.ListEvents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// normalize makes an account presentable: metrics synthesized when absent,
// journey re-merged against the template, score and journey status derived.
func (s *AccountsService) normalize(a *domain.Account, w domain.HealthWeights) {
	if a.Metrics == nil {
		m := scoring.SynthesizeMetrics(a.ID, a.HealthScore)
		a.Metrics = &m
	}
	merged := scoring.MergeJourney(a.Journey, a.ID, a.Status)
	a.Journey = &merged
	a.HealthScore = scoring.ComputeScore(*a.Metrics, w)
	if a.LastActive == "" {
		a.LastActive = domain.LastActiveNever
	}
}

// recordHistory prepends an audit entry, newest first, capped.
func (s *AccountsService) recordHistory(a *domain.Account, eventType, message string, at time.Time) {
	entry := domain.AccountEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: at,
	}
	a.History = append([]domain.AccountEvent{entry}, a.History...)
	if len(a.History) > domain.MaxHistoryEvents {
		a.History = a.History[:domain.MaxHistoryEvents]
	}
}

// publishEvent appends to the global stream, best effort. A feed miss must
// never fail the account operation itself.
func (s *AccountsService) publishEvent(ctx context.Context, accountID, eventType, message string) {
	e := &domain.StreamEvent{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Type:      eventType,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.events.AppendEvent(ctx, e); err != nil {
		s.logger.Warn("failed to publish stream event",
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}

func applyUpdate(a *domain.Account, upd *domain.AccountUpdate) {
	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.Company != nil {
		a.Company = *upd.Company
	}
	if upd.Email != nil {
		a.Email = *upd.Email
	}
	if upd.Plan != nil {
		a.Plan = *upd.Plan
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	if upd.MRR != nil {
		a.MRR = *upd.MRR
	}
	if upd.Metrics != nil {
		a.Metrics = upd.Metrics
	}
	if upd.Journey != nil {
		a.Journey = upd.Journey
	}
	if upd.LastActive != nil {
		a.LastActive = *upd.LastActive
	}
	if upd.IsTest != nil {
		a.IsTest = *upd.IsTest
	}
}
