// Package director implements the public façade of spec §4.7: Tick,
// Replay, and Explain, wiring StateStore, SelectionPipeline,
// EffectApplier, and TickHistory together for one story thread at a
// time.
package director

import (
	"context"
	"fmt"
	"time"

	"github.com/pj4239460/story-graph-assistant/internal/canon"
	"github.com/pj4239460/story-graph-assistant/internal/condition"
	"github.com/pj4239460/story-graph-assistant/internal/direrr"
	"github.com/pj4239460/story-graph-assistant/internal/effects"
	"github.com/pj4239460/story-graph-assistant/internal/history"
	"github.com/pj4239460/story-graph-assistant/internal/logger"
	"github.com/pj4239460/story-graph-assistant/internal/model"
	"github.com/pj4239460/story-graph-assistant/internal/selection"
	"github.com/pj4239460/story-graph-assistant/internal/state"
)

// Director is a per-thread-registry façade over the tick pipeline. A
// single Director may safely drive many threads concurrently as long
// as distinct goroutines never touch the same thread id at once — the
// registry only guards its own map, not the state inside a Thread
// (spec §5: "nothing in the core is shared and mutable across
// threads").
type Director struct {
	Threads  *Registry
	Applier  *effects.Applier
	Log      *logger.Logger
	newJudge func(mode model.EvalMode) condition.NLJudge
}

// New returns a Director. judgeFactory builds the NLJudge to use for a
// given mode (deterministic mode never calls it); pass nil to disable
// NL conditions entirely, which is valid only for projects whose
// storylets carry no nl_text preconditions.
func New(judgeFactory func(mode model.EvalMode) condition.NLJudge) *Director {
	return &Director{
		Threads:  NewRegistry(),
		Applier:  effects.New(),
		Log:      logger.Default(),
		newJudge: judgeFactory,
	}
}

// Tick advances threadID by exactly one tick against project, per spec
// §4.7. It returns the appended TickRecord, or a *direrr.TickAbortedError
// if effect application failed — in which case no record is appended
// and the thread's state is left exactly as it was before the call.
func (d *Director) Tick(ctx context.Context, project *model.Project, threadID string) (model.TickRecord, error) {
	thread := d.Threads.GetOrCreate(threadID, project.SeedState)
	tickIndex := thread.History.NextTickIndex()

	store := state.New(thread.State.Clone())
	intensityBefore := store.State.World.Intensity
	beforeHash := canon.Hash(store.State)

	var judge condition.NLJudge
	if project.Config.Mode != model.ModeDeterministic && d.newJudge != nil {
		judge = d.newJudge(project.Config.Mode)
	}
	evaluator := condition.NewHybridEvaluator(project.Config.Mode, judge)
	pipeline := selection.New(evaluator)

	outcome, err := pipeline.Select(ctx, store, project.Storylets, thread.History, project.Config, tickIndex)
	if err != nil {
		return model.TickRecord{}, fmt.Errorf("selection failed: %w", err)
	}

	byID := make(map[string]*model.Storylet, len(project.Storylets))
	for _, s := range project.Storylets {
		byID[s.ID] = s
	}

	var selectedRecords []model.SelectedStorylet
	var allDiffs []model.Diff
	sumDelta := 0.0
	anyRegularFired := false

	for _, sel := range outcome.Selected {
		applyResult, err := d.Applier.Apply(store, sel.Storylet.ID, sel.Storylet.Effects)
		if err != nil {
			d.Log.ErrorContext(ctx, "tick aborted", "thread_id", threadID, "tick_index", tickIndex, "storylet_id", sel.Storylet.ID, "error", err)
			return model.TickRecord{}, err
		}
		selectedRecords = append(selectedRecords, model.SelectedStorylet{
			StoryletID:     sel.Storylet.ID,
			Rationale:      sel.Rationale,
			EffectsApplied: sel.Storylet.Effects,
			PerEffectDiff:  applyResult.Diffs,
		})
		allDiffs = append(allDiffs, applyResult.Diffs...)
		sumDelta += sel.Storylet.IntensityDelta
		if !sel.Storylet.IsFallback {
			anyRegularFired = true
		}
	}

	store.State.World.Intensity = effects.NextIntensity(intensityBefore, sumDelta, project.Config.IntensityDecay)
	afterHash := canon.Hash(store.State)

	record := model.TickRecord{
		TickIndex:       tickIndex,
		Timestamp:       tickTimestamp(ctx),
		Selected:        selectedRecords,
		StateBeforeHash: beforeHash,
		StateAfterHash:  afterHash,
		Diffs:           allDiffs,
		IntensityBefore: intensityBefore,
		IntensityAfter:  store.State.World.Intensity,
		NLEvaluations:   outcome.NLEvaluations,
	}

	thread.History.Append(record, anyRegularFired)
	record.IdleTickCountAfter = thread.History.IdleCount
	thread.State = store.State

	return record, nil
}

// tickTimestamp is a seam so Replay can stamp reconstructed records
// with the moment of reconstruction without this package reaching for
// time.Now() in the middle of deterministic logic tests rely on. In
// production it is always time.Now().
var tickTimestamp = func(_ context.Context) time.Time { return time.Now() }

// Replay ticks a fresh scratch thread, seeded from project.SeedState,
// from tick 0 and returns the records for [fromTick, toTick] inclusive. Per spec
// §4.7/§8 invariant 9, replaying an identical (project, seed, config)
// must reproduce the original sequence bit-for-bit; Replay achieves
// this by constructing a fresh thread and re-ticking rather than
// reading stored records, so it also serves as the reference
// implementation other storage layers validate their cache against.
func (d *Director) Replay(ctx context.Context, project *model.Project, fromTick, toTick int) ([]model.TickRecord, error) {
	if fromTick < 0 || toTick < fromTick {
		return nil, fmt.Errorf("invalid replay range [%d,%d]", fromTick, toTick)
	}

	scratchID := fmt.Sprintf("__replay__%p", project)
	d.Threads.Delete(scratchID)
	defer d.Threads.Delete(scratchID)

	var records []model.TickRecord
	for i := 0; i <= toTick; i++ {
		rec, err := d.Tick(ctx, project, scratchID)
		if err != nil {
			return nil, fmt.Errorf("replay failed at tick %d: %w", i, err)
		}
		if i >= fromTick {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Explain evaluates every precondition of storyletID against state
// without mutating anything, per spec §4.7.
func (d *Director) Explain(ctx context.Context, storylet *model.Storylet, mode model.EvalMode, judge condition.NLJudge, snapshot *model.State) ([]string, error) {
	store := state.New(snapshot.Clone())
	evaluator := condition.NewHybridEvaluator(mode, judge)

	var reasons []string
	for _, c := range storylet.Preconditions {
		outcome, err := evaluator.Evaluate(ctx, store, c)
		if err != nil {
			if _, ok := err.(*direrr.PathNotFoundError); ok {
				reasons = append(reasons, err.Error())
				continue
			}
			return nil, err
		}
		status := "FAIL"
		if outcome.Result.Satisfied {
			status = "PASS"
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", status, outcome.Result.Reason))
	}
	return reasons, nil
}
