package effects_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pj4239460/story-graph-assistant/internal/direrr"
	"github.com/pj4239460/story-graph-assistant/internal/effects"
	"github.com/pj4239460/story-graph-assistant/internal/model"
	"github.com/pj4239460/story-graph-assistant/internal/state"
)

func mustParse(t *testing.T, raw string) state.Path {
	t.Helper()
	p, err := state.Parse(raw)
	require.NoError(t, err)
	return p
}

func TestApplier_Apply_RecordsDiffsInOrder(t *testing.T) {
	t.Parallel()

	store := state.New(model.NewState())
	a := effects.New()

	result, err := a.Apply(store, "intro", []model.Effect{
		{Path: "world.vars.gold", Op: model.EffectSet, Value: 10.0},
		{Path: "world.vars.gold", Op: model.EffectAdd, Value: 5.0},
	})
	require.NoError(t, err)
	require.Len(t, result.Diffs, 2)

	assert.Nil(t, result.Diffs[0].Before)
	assert.Equal(t, 10.0, result.Diffs[0].After)
	assert.Equal(t, 10.0, result.Diffs[1].Before)
	assert.Equal(t, 15.0, result.Diffs[1].After)
}

func TestApplier_Apply_AbortsOnFirstFailure(t *testing.T) {
	t.Parallel()

	store := state.New(model.NewState())
	require.NoError(t, store.Set(mustParse(t, "world.vars.name"), "alice"))
	a := effects.New()

	_, err := a.Apply(store, "bad", []model.Effect{
		{Path: "world.vars.gold", Op: model.EffectSet, Value: 1.0},
		{Path: "world.vars.name", Op: model.EffectAdd, Value: 1.0},
		{Path: "world.vars.gold", Op: model.EffectSet, Value: 2.0},
	})
	require.Error(t, err)

	var aborted *direrr.TickAbortedError
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, "bad", aborted.StoryletID)
	assert.Equal(t, 1, aborted.EffectIndex)

	v, getErr := store.Get(mustParse(t, "world.vars.gold"))
	require.NoError(t, getErr)
	assert.Equal(t, 1.0, v, "the effect after the failing one must never apply")
}

func TestNextIntensity_EmptyTickDecaysTowardHalf(t *testing.T) {
	t.Parallel()

	got := effects.NextIntensity(0.8, 0, 0.1)
	assert.InDelta(t, 0.8-0.1*0.3, got, 1e-9)
}

func TestNextIntensity_ClampsToUnitRange(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, effects.NextIntensity(0.9, 0.5, 0))
	assert.Equal(t, 0.0, effects.NextIntensity(0.1, -0.5, 0))
}
