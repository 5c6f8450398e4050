package condition

import (
	"context"
	"strings"
)

// Judgment is one NLJudge verdict, recorded verbatim into
// model.NLEvaluation by the HybridEvaluator.
type Judgment struct {
	Satisfied  bool    `json:"satisfied"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// NLJudge decides a natural-language precondition against a textual
// rendering of relevant state. Implementations must be deterministic
// with respect to their input bytes when CachedJudge wraps them (spec §4.3:
// "the cache key is a content hash of the judge's input").
type NLJudge interface {
	Judge(ctx context.Context, conditionText string, stateContext string) (Judgment, error)
}

// StubJudge is a deterministic, offline NLJudge used in tests and in
// scenarios with mode=deterministic where NL conditions should never
// actually be reached. It satisfies any condition whose text contains
// one of a configured set of substrings, and is otherwise unsatisfied.
type StubJudge struct {
	SatisfyContains []string
}

// NewStubJudge returns a StubJudge that satisfies conditions containing
// any of the given substrings.
func NewStubJudge(satisfyContains ...string) *StubJudge {
	return &StubJudge{SatisfyContains: satisfyContains}
}

// Judge implements NLJudge deterministically from conditionText alone.
func (j *StubJudge) Judge(_ context.Context, conditionText string, _ string) (Judgment, error) {
	for _, needle := range j.SatisfyContains {
		if needle != "" && strings.Contains(conditionText, needle) {
			return Judgment{Satisfied: true, Confidence: 1.0, Reason: "stub judge matched " + needle}, nil
		}
	}
	return Judgment{Satisfied: false, Confidence: 1.0, Reason: "stub judge found no configured match"}, nil
}
