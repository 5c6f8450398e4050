package condition

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pj4239460/story-graph-assistant/internal/model"
	"github.com/pj4239460/story-graph-assistant/internal/state"
)

// HybridEvaluator orchestrates typed-condition evaluation and NLJudge
// delegation across the three modes of spec §4.4:
//
//   - deterministic: NL conditions are never judged — each evaluates as
//     unsatisfied with an explanatory reason, not as an error.
//   - ai_assisted: typed conditions evaluate normally; NL conditions
//     delegate to the judge, decorated with the rendered state context.
//   - ai_primary: every condition — typed or NL — is delegated to the
//     judge; a typed condition is first serialized into its
//     natural-language form (see serializeTypedCondition).
type HybridEvaluator struct {
	Typed *TypedEvaluator
	Judge NLJudge
	Mode  model.EvalMode
}

// NewHybridEvaluator wires a typed evaluator and an NLJudge behind the
// given mode. judge may be nil only when mode is ModeDeterministic.
func NewHybridEvaluator(mode model.EvalMode, judge NLJudge) *HybridEvaluator {
	return &HybridEvaluator{
		Typed: NewTypedEvaluator(),
		Judge: judge,
		Mode:  mode,
	}
}

// EvalOutcome is the full result of evaluating one condition, including
// the NL evaluation record (nil for typed conditions) to append to
// TickRecord.NLEvaluations.
type EvalOutcome struct {
	Result Result
	NLEval *model.NLEvaluation
}

// Evaluate dispatches c to the typed evaluator or the judge depending
// on its shape and the evaluator's mode.
func (h *HybridEvaluator) Evaluate(ctx context.Context, store *state.Store, c model.Condition) (EvalOutcome, error) {
	if h.Mode == model.ModeAIPrimary {
		return h.evaluateViaJudge(ctx, store, conditionText(c))
	}

	if !c.IsNL() {
		result, err := h.Typed.Evaluate(store, c)
		if err != nil {
			return EvalOutcome{}, err
		}
		return EvalOutcome{Result: result}, nil
	}

	if h.Mode == model.ModeDeterministic {
		return EvalOutcome{Result: Result{
			Satisfied: false,
			Reason:    fmt.Sprintf("nl_text condition %q skipped: director mode is deterministic", c.NLText),
		}}, nil
	}

	return h.evaluateViaJudge(ctx, store, c.NLText)
}

// evaluateViaJudge renders the current state context and submits
// conditionText to the configured judge. It snapshots cache membership
// before calling Judge.Judge: a CachedJudge/TieredJudge inserts the
// verdict into its cache as part of that very call, so checking
// membership afterward would always report a hit, even on the first,
// uncached invocation.
func (h *HybridEvaluator) evaluateViaJudge(ctx context.Context, store *state.Store, text string) (EvalOutcome, error) {
	if h.Judge == nil {
		return EvalOutcome{}, fmt.Errorf("condition %q requires an NLJudge but none is configured", text)
	}

	stateContext := RenderStateContext(store)
	_, cacheHit := h.cacheHit(text, stateContext)

	judgment, err := h.Judge.Judge(ctx, text, stateContext)
	if err != nil {
		return EvalOutcome{
			Result: Result{Satisfied: false, Reason: fmt.Sprintf("judge failure for %q: %v", text, err)},
			NLEval: &model.NLEvaluation{
				ConditionText: text,
				Satisfied:     false,
				Reason:        err.Error(),
			},
		}, nil
	}

	return EvalOutcome{
		Result: Result{Satisfied: judgment.Satisfied, Reason: judgment.Reason},
		NLEval: &model.NLEvaluation{
			ConditionText: text,
			Satisfied:     judgment.Satisfied,
			Confidence:    judgment.Confidence,
			Reason:        judgment.Reason,
			CacheHit:      cacheHit,
		},
	}, nil
}

// cacheHit reports whether a CachedJudge or TieredJudge in the chain
// already held this verdict *before* the call above, purely for
// TickRecord auditability — it never affects the result itself.
func (h *HybridEvaluator) cacheHit(conditionText, stateContext string) (Judgment, bool) {
	key := Key(conditionText, stateContext)
	switch j := h.Judge.(type) {
	case *CachedJudge:
		return j.Cache.Get(key)
	case *TieredJudge:
		return j.Local.Get(key)
	default:
		return Judgment{}, false
	}
}

// conditionText returns the text submitted to the judge: an NL
// condition's own text unchanged, or a typed condition serialized into
// an equivalent natural-language sentence for ai_primary mode.
func conditionText(c model.Condition) string {
	if c.IsNL() {
		return c.NLText
	}
	return serializeTypedCondition(c)
}

var conditionVerbs = map[model.ConditionOp]string{
	model.OpEqual:     "equals",
	model.OpNotEqual:  "does not equal",
	model.OpLess:      "is less than",
	model.OpLessEq:    "is at most",
	model.OpGreater:   "is greater than",
	model.OpGreaterEq: "is at least",
	model.OpIn:        "is one of",
	model.OpNotIn:     "is none of",
	model.OpContains:  "contains",
	model.OpHasTag:    "has the tag",
	model.OpLacksTag:  "lacks the tag",
}

// serializeTypedCondition renders a typed precondition as the plain
// sentence an ai_primary judge is asked to confirm, e.g.
// `world.vars.gold is at least 50`.
func serializeTypedCondition(c model.Condition) string {
	verb, ok := conditionVerbs[c.Op]
	if !ok {
		verb = string(c.Op)
	}
	return fmt.Sprintf("%s %s %v", c.Path, verb, c.Value)
}

// RenderStateContext produces a deterministic textual summary of the
// current state for judge prompts and cache keys. It is intentionally
// terse: only tags, vars, and character moods/statuses, sorted for
// stable hashing (spec §4.3's requirement that the cache key be a
// content hash of the judge's input, not a random prompt rendering).
func RenderStateContext(store *state.Store) string {
	s := store.State
	var b strings.Builder

	b.WriteString("world.intensity=")
	fmt.Fprintf(&b, "%.3f\n", s.World.Intensity)

	tags := append([]string(nil), s.World.TagList...)
	sort.Strings(tags)
	b.WriteString("world.tags=" + strings.Join(tags, ",") + "\n")

	for _, k := range s.World.Vars.Keys {
		v, _ := s.World.Vars.Get(k)
		fmt.Fprintf(&b, "world.vars.%s=%v\n", k, v)
	}

	ids := make([]string, 0, len(s.Characters))
	for id := range s.Characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c := s.Characters[id]
		fmt.Fprintf(&b, "characters.%s.mood=%s\n", id, c.Mood)
		fmt.Fprintf(&b, "characters.%s.status=%s\n", id, c.Status)
	}

	return b.String()
}
