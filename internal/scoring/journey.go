package scoring

import (
	"time"

	"github.com/amarinho/cs-pulse-bfa-go/internal/domain"
)

// stepTemplate is the authoritative shape of the 5-step journey. IDs are
// stable across product releases; labels and descriptions may be reworded
// here and are refreshed into saved journeys on merge.
var stepTemplate = []domain.JourneyStep{
	{ID: "1", Label: "Ativação", Description: "Conta configurada e primeiro login realizado"},
	{ID: "2", Label: "Método", Description: "Metodologia implantada com o time do cliente"},
	{ID: "3", Label: "Execução", Description: "Rotina de uso recorrente estabelecida"},
	{ID: "4", Label: "Valor Gerado", Description: "Primeiro resultado mensurável entregue"},
	{ID: "5", Label: "Escala", Description: "Expansão para novos times ou unidades"},
}

// setupBadge is shown while no step is completed.
var setupBadge = domain.StageBadge{Label: "Setup", StageID: "0"}

// StepTemplate returns a copy of the current journey template.
func StepTemplate() []domain.JourneyStep {
	steps := make([]domain.JourneyStep, len(stepTemplate))
	copy(steps, stepTemplate)
	return steps
}

// MergeJourney reconciles a saved journey with the current template.
//
// With no saved journey, one is synthesized: a completion depth is picked
// from the account's seeded unit value, bucketed by lifecycle status, so a
// brand-new account renders a plausible journey without anything persisted.
// With a saved journey, steps merge by id — template text wins, saved
// completion flags and timestamps survive, ids outside the template are
// dropped. Status is re-derived from the merged completion count either way.
func MergeJourney(saved *domain.Journey, seedID string, status domain.AccountStatus) domain.Journey {
	steps := StepTemplate()

	if saved == nil {
		depth := synthDepth(seedID, status)
		for i := range steps {
			steps[i].IsCompleted = i < depth
		}
		return domain.Journey{
			Status: deriveStatus(countCompleted(steps)),
			Steps:  steps,
		}
	}

	byID := make(map[string]domain.JourneyStep, len(saved.Steps))
	for _, s := range saved.Steps {
		byID[s.ID] = s
	}
	for i := range steps {
		if prev, ok := byID[steps[i].ID]; ok {
			steps[i].IsCompleted = prev.IsCompleted
			steps[i].CompletedAt = prev.CompletedAt
		}
	}

	return domain.Journey{
		CoreGoal: saved.CoreGoal,
		Status:   deriveStatus(countCompleted(steps)),
		Steps:    steps,
	}
}

// synthDepth picks how many leading steps a synthesized journey completes.
func synthDepth(seedID string, status domain.AccountStatus) int {
	u := seededUnit(seedID)
	switch status {
	case domain.StatusActive:
		switch {
		case u < 0.25:
			return 5
		case u < 0.60:
			return 4
		default:
			return 3
		}
	case domain.StatusRisk:
		return 1
	case domain.StatusNew:
		if u < 0.5 {
			return 1
		}
		return 0
	case domain.StatusChurned:
		if u < 0.5 {
			return 2
		}
		return 0
	default: // Ghost and anything unexpected start from zero
		return 0
	}
}

func countCompleted(steps []domain.JourneyStep) int {
	n := 0
	for _, s := range steps {
		if s.IsCompleted {
			n++
		}
	}
	return n
}

func deriveStatus(completed int) domain.JourneyStatus {
	switch {
	case completed == 0:
		return domain.JourneyNotStarted
	case completed >= len(stepTemplate):
		return domain.JourneyAchieved
	default:
		return domain.JourneyInProgress
	}
}

// StageBadge returns the badge of the last completed step — the highest id
// among completed steps — or the Setup badge when nothing is completed.
func StageBadge(j domain.Journey) domain.StageBadge {
	badge := setupBadge
	for _, s := range j.Steps {
		if s.IsCompleted {
			badge = domain.StageBadge{Label: s.Label, StageID: s.ID}
		}
	}
	return badge
}

// ToggleStep flips a step's completion and returns a new journey; the input
// is untouched so callers can diff old vs new state (e.g. to emit the
// journey-achieved celebration event). CompletedAt is stamped on the
// false→true transition and cleared on the way back.
func ToggleStep(j domain.Journey, stepID string, now time.Time) domain.Journey {
	steps := make([]domain.JourneyStep, len(j.Steps))
	copy(steps, j.Steps)

	for i := range steps {
		if steps[i].ID != stepID {
			continue
		}
		if steps[i].IsCompleted {
			steps[i].IsCompleted = false
			steps[i].CompletedAt = nil
		} else {
			steps[i].IsCompleted = true
			ts := now
			steps[i].CompletedAt = &ts
		}
		break
	}

	return domain.Journey{
		CoreGoal: j.CoreGoal,
		Status:   deriveStatus(countCompleted(steps)),
		Steps:    steps,
	}
}
