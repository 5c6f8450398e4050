// Package selection implements the 9-stage storylet selection pipeline
// of spec §4.6, stages 1 through 7 (precondition filtering through
// weighted sampling). Stage 8 (effect application) lives in
// internal/effects and stage 9 (history recording) in internal/history;
// Director wires all three together per tick.
package selection

import (
	"context"
	"fmt"
	"sort"

	"github.com/pj4239460/story-graph-assistant/internal/condition"
	"github.com/pj4239460/story-graph-assistant/internal/history"
	"github.com/pj4239460/story-graph-assistant/internal/model"
	"github.com/pj4239460/story-graph-assistant/internal/state"
)

// candidate is a storylet still alive in the pipeline, carrying its
// working weight and the rationale fragments accumulated so far.
type candidate struct {
	Storylet  *model.Storylet
	Weight    float64
	Rationale []string
}

func sprintfStage(stage int, format string, args ...interface{}) string {
	return fmt.Sprintf("stage %d: %s", stage, fmt.Sprintf(format, args...))
}

// Rejection is one storylet's elimination from the candidate set, with
// the stage and reason it was cut, returned in Outcome.Rejected;
// Director.Tick does not copy rejections into the TickRecord.
type Rejection struct {
	StoryletID string
	Reasons    []string
}

// Selected is one storylet chosen by stage 7, in application order.
type Selected struct {
	Storylet  *model.Storylet
	Rationale string
}

// Outcome is the result of running stages 1-7.
type Outcome struct {
	Selected      []Selected
	Rejected      []Rejection
	UsedFallback  bool
	NLEvaluations []model.NLEvaluation
}

// Pipeline runs stages 1-7 of storylet selection.
type Pipeline struct {
	Evaluator *condition.HybridEvaluator
}

// New wires a selection pipeline around a hybrid condition evaluator.
func New(evaluator *condition.HybridEvaluator) *Pipeline {
	return &Pipeline{Evaluator: evaluator}
}

// Select runs the full stage 1-7 pipeline against store for tickIndex,
// drawing candidates from pool and consulting hist for ordering,
// cooldown, fallback, and diversity decisions.
func (p *Pipeline) Select(ctx context.Context, store *state.Store, pool []*model.Storylet, hist *history.History, cfg model.DirectorConfig, tickIndex int) (Outcome, error) {
	byID := make(map[string]*model.Storylet, len(pool))
	var regular, fallback []*model.Storylet
	for _, s := range pool {
		byID[s.ID] = s
		if s.IsFallback {
			fallback = append(fallback, s)
		} else {
			regular = append(regular, s)
		}
	}

	rejected := make(map[string][]string)
	var nlEvals []model.NLEvaluation

	regularCandidates, err := p.filterStages1to3(ctx, store, regular, hist, tickIndex, rejected, &nlEvals)
	if err != nil {
		return Outcome{}, err
	}

	candidates := regularCandidates
	usedFallback := false
	if len(candidates) == 0 && hist.IdleCount >= cfg.FallbackAfterIdleTicks {
		fallbackCandidates, err := p.filterStages1to3(ctx, store, fallback, hist, tickIndex, rejected, &nlEvals)
		if err != nil {
			return Outcome{}, err
		}
		if len(fallbackCandidates) > 0 {
			candidates = fallbackCandidates
			usedFallback = true
		}
	} else {
		for _, s := range fallback {
			rejected[s.ID] = append(rejected[s.ID], sprintfStage(4, "fallback not eligible: idle_count=%d < fallback_after_idle_ticks=%d or regular candidates available", hist.IdleCount, cfg.FallbackAfterIdleTicks))
		}
	}

	recentIDs := hist.RecentSelectedIDs(cfg.DiversityWindow)
	applyDiversityPenalty(candidates, recentIDs, byID, cfg.DiversityPenalty, cfg.DiversityWindow)
	applyPacingAdjustment(candidates, store.State.World.Intensity, cfg.PacingPreference, cfg.PacingScale)

	k := cfg.EventsPerTick
	if k > len(candidates) {
		k = len(candidates)
	}
	rng := NewTickRNG(cfg.RNGSeed, tickIndex)
	chosen := weightedSampleWithoutReplacement(candidates, k, rng)

	var selected []Selected
	chosenSet := make(map[string]bool, len(chosen))
	for _, c := range chosen {
		chosenSet[c.Storylet.ID] = true
		rationale := fmt.Sprintf("selected: weight %.6f after stages 5-6 (%s)", c.Weight, joinReasons(c.Rationale))
		selected = append(selected, Selected{Storylet: c.Storylet, Rationale: rationale})
	}
	for _, c := range candidates {
		if !chosenSet[c.Storylet.ID] {
			rejected[c.Storylet.ID] = append(rejected[c.Storylet.ID], sprintfStage(7, "not drawn in weighted sample (final weight %.6f)", c.Weight))
		}
	}

	var rejections []Rejection
	ids := make([]string, 0, len(rejected))
	for id := range rejected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rejections = append(rejections, Rejection{StoryletID: id, Reasons: rejected[id]})
	}

	return Outcome{Selected: selected, Rejected: rejections, UsedFallback: usedFallback, NLEvaluations: nlEvals}, nil
}

// filterStages1to3 runs precondition filtering, ordering constraints,
// and cooldown/once against pool, returning surviving candidates with
// their base weight. Rejections are appended into rejected.
func (p *Pipeline) filterStages1to3(ctx context.Context, store *state.Store, pool []*model.Storylet, hist *history.History, tickIndex int, rejected map[string][]string, nlEvals *[]model.NLEvaluation) ([]*candidate, error) {
	var out []*candidate
	for _, s := range pool {
		ok, reason, err := p.evaluatePreconditions(ctx, store, s, nlEvals)
		if err != nil {
			return nil, err
		}
		if !ok {
			rejected[s.ID] = append(rejected[s.ID], sprintfStage(1, "%s", reason))
			continue
		}

		if reason, ok := orderingViolation(s, hist); !ok {
			rejected[s.ID] = append(rejected[s.ID], sprintfStage(2, "%s", reason))
			continue
		}

		if reason, ok := cooldownViolation(s, hist, tickIndex); !ok {
			rejected[s.ID] = append(rejected[s.ID], sprintfStage(3, "%s", reason))
			continue
		}

		weight := s.Weight
		out = append(out, &candidate{Storylet: s, Weight: weight})
	}
	return out, nil
}

func (p *Pipeline) evaluatePreconditions(ctx context.Context, store *state.Store, s *model.Storylet, nlEvals *[]model.NLEvaluation) (bool, string, error) {
	for _, c := range s.Preconditions {
		outcome, err := p.Evaluator.Evaluate(ctx, store, c)
		if err != nil {
			return false, "", err
		}
		if outcome.NLEval != nil {
			*nlEvals = append(*nlEvals, *outcome.NLEval)
		}
		if !outcome.Result.Satisfied {
			return false, outcome.Result.Reason, nil
		}
	}
	return true, "", nil
}

func orderingViolation(s *model.Storylet, hist *history.History) (string, bool) {
	for _, req := range s.RequiresFired {
		if !hist.HasFiredEver(req) {
			return fmt.Sprintf("requires %q which has not fired", req), false
		}
	}
	for _, forb := range s.ForbidsFired {
		if hist.HasFiredEver(forb) {
			return fmt.Sprintf("forbidden by prior firing of %q", forb), false
		}
	}
	return "", true
}

func cooldownViolation(s *model.Storylet, hist *history.History, tickIndex int) (string, bool) {
	if s.Once && hist.HasFiredEver(s.ID) {
		return "once-storylet already fired", false
	}
	if elapsed, fired := hist.TicksSinceFired(s.ID, tickIndex); fired && elapsed < s.Cooldown {
		return fmt.Sprintf("cooling down: %d ticks since last fire < cooldown %d", elapsed, s.Cooldown), false
	}
	return "", true
}

func joinReasons(reasons []string) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += "; "
		}
		out += r
	}
	return out
}
