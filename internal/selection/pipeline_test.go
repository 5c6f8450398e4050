package selection_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pj4239460/story-graph-assistant/internal/condition"
	"github.com/pj4239460/story-graph-assistant/internal/history"
	"github.com/pj4239460/story-graph-assistant/internal/model"
	"github.com/pj4239460/story-graph-assistant/internal/selection"
	"github.com/pj4239460/story-graph-assistant/internal/state"
)

func deterministicConfig() model.DirectorConfig {
	return model.DirectorConfig{
		EventsPerTick:   1,
		PacingPreference: model.PacingBalanced,
		Mode:            model.ModeDeterministic,
		RNGSeed:         0,
	}
}

func TestPipeline_Select_CooldownScenario(t *testing.T) {
	t.Parallel()

	pool := []*model.Storylet{
		{ID: "A", Weight: 1, Cooldown: 2},
		{ID: "B", Weight: 0},
	}
	evaluator := condition.NewHybridEvaluator(model.ModeDeterministic, nil)
	pipeline := selection.New(evaluator)
	hist := history.New()
	store := state.New(model.NewState())
	cfg := deterministicConfig()

	for tick := 0; tick < 4; tick++ {
		outcome, err := pipeline.Select(context.Background(), store, pool, hist, cfg, tick)
		require.NoError(t, err)

		var ids []string
		for _, s := range outcome.Selected {
			ids = append(ids, s.Storylet.ID)
		}

		switch tick {
		case 0, 2:
			assert.Equal(t, []string{"A"}, ids, "tick %d", tick)
		case 1, 3:
			assert.Empty(t, ids, "tick %d: A is cooling down and B has zero weight", tick)
		}

		anyRegular := len(outcome.Selected) > 0
		hist.Append(model.TickRecord{
			TickIndex: tick,
			Selected:  toSelectedStorylets(outcome.Selected),
		}, anyRegular)
	}
}

func TestPipeline_Select_OrderingScenario(t *testing.T) {
	t.Parallel()

	pool := []*model.Storylet{
		{ID: "S1", Weight: 1, Once: true},
		{ID: "S2", Weight: 1, RequiresFired: []string{"S1"}},
	}
	evaluator := condition.NewHybridEvaluator(model.ModeDeterministic, nil)
	pipeline := selection.New(evaluator)
	hist := history.New()
	store := state.New(model.NewState())
	cfg := deterministicConfig()

	outcome, err := pipeline.Select(context.Background(), store, pool, hist, cfg, 0)
	require.NoError(t, err)
	require.Len(t, outcome.Selected, 1)
	assert.Equal(t, "S1", outcome.Selected[0].Storylet.ID)
	hist.Append(model.TickRecord{TickIndex: 0, Selected: toSelectedStorylets(outcome.Selected)}, true)

	outcome, err = pipeline.Select(context.Background(), store, pool, hist, cfg, 1)
	require.NoError(t, err)
	require.Len(t, outcome.Selected, 1)
	assert.Equal(t, "S2", outcome.Selected[0].Storylet.ID, "S2 only becomes eligible once S1 has fired")
}

func TestPipeline_Select_OnceStoryletNeverFiresTwice(t *testing.T) {
	t.Parallel()

	pool := []*model.Storylet{
		{ID: "Intro", Weight: 1, Once: true},
		{ID: "Ambient", Weight: 1, IsFallback: true},
	}
	evaluator := condition.NewHybridEvaluator(model.ModeDeterministic, nil)
	pipeline := selection.New(evaluator)
	hist := history.New()
	store := state.New(model.NewState())
	cfg := deterministicConfig()
	cfg.FallbackAfterIdleTicks = 0

	outcome, err := pipeline.Select(context.Background(), store, pool, hist, cfg, 0)
	require.NoError(t, err)
	require.Len(t, outcome.Selected, 1)
	assert.Equal(t, "Intro", outcome.Selected[0].Storylet.ID)
	hist.Append(model.TickRecord{TickIndex: 0, Selected: toSelectedStorylets(outcome.Selected)}, true)

	outcome, err = pipeline.Select(context.Background(), store, pool, hist, cfg, 1)
	require.NoError(t, err)
	require.Len(t, outcome.Selected, 1)
	assert.Equal(t, "Ambient", outcome.Selected[0].Storylet.ID, "Intro already fired once; fallback takes over")
}

func TestPipeline_Select_ForbidsFiredExcludesCandidate(t *testing.T) {
	t.Parallel()

	pool := []*model.Storylet{
		{ID: "Peace", Weight: 1, Once: true},
		{ID: "War", Weight: 1, ForbidsFired: []string{"Peace"}},
	}
	evaluator := condition.NewHybridEvaluator(model.ModeDeterministic, nil)
	pipeline := selection.New(evaluator)
	hist := history.New()
	store := state.New(model.NewState())
	cfg := deterministicConfig()
	cfg.EventsPerTick = 2

	outcome, err := pipeline.Select(context.Background(), store, pool, hist, cfg, 0)
	require.NoError(t, err)
	hist.Append(model.TickRecord{TickIndex: 0, Selected: toSelectedStorylets(outcome.Selected)}, true)

	outcome, err = pipeline.Select(context.Background(), store, pool, hist, cfg, 1)
	require.NoError(t, err)

	var ids []string
	for _, s := range outcome.Selected {
		ids = append(ids, s.Storylet.ID)
	}
	assert.NotContains(t, ids, "War", "War cannot fire once Peace is in prior history")
}

func toSelectedStorylets(sel []selection.Selected) []model.SelectedStorylet {
	out := make([]model.SelectedStorylet, 0, len(sel))
	for _, s := range sel {
		out = append(out, model.SelectedStorylet{StoryletID: s.Storylet.ID, Rationale: s.Rationale})
	}
	return out
}
