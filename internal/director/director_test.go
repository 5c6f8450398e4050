package director_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pj4239460/story-graph-assistant/internal/director"
	"github.com/pj4239460/story-graph-assistant/internal/model"
)

func cooldownProject() *model.Project {
	return &model.Project{
		ID: "p1",
		Storylets: []*model.Storylet{
			{ID: "A", Weight: 1, Cooldown: 2},
			{ID: "B", Weight: 0},
		},
		Config: model.DirectorConfig{
			EventsPerTick:    1,
			PacingPreference: model.PacingBalanced,
			Mode:             model.ModeDeterministic,
			RNGSeed:          0,
		},
	}
}

func TestDirector_Tick_AppendsHistoryAndAdvancesIndex(t *testing.T) {
	t.Parallel()

	d := director.New(nil)
	project := cooldownProject()

	rec, err := d.Tick(context.Background(), project, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, 0, rec.TickIndex)
	require.Len(t, rec.Selected, 1)
	assert.Equal(t, "A", rec.Selected[0].StoryletID)

	rec, err = d.Tick(context.Background(), project, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.TickIndex)
	assert.Empty(t, rec.Selected, "A is cooling down on tick 1")
}

func TestDirector_Tick_AbortedEffectLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	project := &model.Project{
		Storylets: []*model.Storylet{
			{
				ID:     "Bad",
				Weight: 1,
				Effects: []model.Effect{
					{Path: "characters.alice.mood", Op: model.EffectAdd, Value: 1.0},
				},
			},
		},
		Config: model.DirectorConfig{
			EventsPerTick:    1,
			PacingPreference: model.PacingBalanced,
			Mode:             model.ModeDeterministic,
		},
	}

	d := director.New(nil)
	_, err := d.Tick(context.Background(), project, "thread-1")
	assert.Error(t, err)

	thread, ok := d.Threads.Get("thread-1")
	require.True(t, ok)
	assert.Equal(t, 0, thread.History.NextTickIndex(), "an aborted tick must not be appended to history")
}

func TestDirector_Replay_ReproducesHashSequence(t *testing.T) {
	t.Parallel()

	project := cooldownProject()
	d := director.New(nil)

	first, err := d.Replay(context.Background(), project, 0, 3)
	require.NoError(t, err)

	second, err := d.Replay(context.Background(), project, 0, 3)
	require.NoError(t, err)

	require.Len(t, first, len(second))
	for i := range first {
		assert.Equal(t, first[i].StateAfterHash, second[i].StateAfterHash, "tick %d", i)
		assert.Equal(t, first[i].Selected, second[i].Selected, "tick %d", i)
	}
}

func TestDirector_Explain_ReportsPassAndFail(t *testing.T) {
	t.Parallel()

	storylet := &model.Storylet{
		ID: "Gated",
		Preconditions: []model.Condition{
			{Path: "world.vars.gold", Op: model.OpGreaterEq, Value: 10.0},
		},
	}

	d := director.New(nil)
	snapshot := model.NewState()
	snapshot.World.Vars.Set("gold", 5.0)

	reasons, err := d.Explain(context.Background(), storylet, model.ModeDeterministic, nil, snapshot)
	require.NoError(t, err)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "FAIL")
}
