package model

import "time"

// SelectedStorylet is one entry of TickRecord.Selected: the storylet
// that fired, why the pipeline chose it, and the effects it applied.
type SelectedStorylet struct {
	StoryletID     string          `json:"storylet_id"`
	Rationale      string          `json:"rationale"`
	EffectsApplied []Effect        `json:"effects_applied"`
	PerEffectDiff  []Diff          `json:"per_effect_diff"`
}

// Diff is one before/after path mutation, used both for per-effect
// diffs and the tick-level diff list.
type Diff struct {
	Path   string `json:"path"`
	Before Scalar `json:"before"`
	After  Scalar `json:"after"`
}

// NLEvaluation records one NLJudge call made during a tick, for
// auditability per spec §3 TickRecord.nl_evaluations.
type NLEvaluation struct {
	ConditionText string  `json:"condition_text"`
	Satisfied     bool    `json:"satisfied"`
	Confidence    float64 `json:"confidence"`
	Reason        string  `json:"reason"`
	CacheHit      bool    `json:"cache_hit"`
}

// TickRecord is the immutable, reproducible output of one Director.Tick
// call.
type TickRecord struct {
	TickIndex int       `json:"tick_index"`
	Timestamp time.Time `json:"timestamp"`

	Selected []SelectedStorylet `json:"selected"`

	StateBeforeHash string `json:"state_before_hash"`
	StateAfterHash  string `json:"state_after_hash"`

	Diffs []Diff `json:"diffs"`

	IntensityBefore float64 `json:"intensity_before"`
	IntensityAfter  float64 `json:"intensity_after"`

	IdleTickCountAfter int `json:"idle_tick_count_after"`

	NLEvaluations []NLEvaluation `json:"nl_evaluations,omitempty"`
}

// RejectedStorylet records why a candidate did not make it into
// Selected. It is not part of the canonical TickRecord encoding, and
// neither Director.Tick nor Director.Explain produces it.
type RejectedStorylet struct {
	StoryletID string   `json:"storylet_id"`
	Reasons    []string `json:"reasons"`
}
