package condition_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pj4239460/story-graph-assistant/internal/condition"
	"github.com/pj4239460/story-graph-assistant/internal/model"
	"github.com/pj4239460/story-graph-assistant/internal/state"
)

func TestHybridEvaluator_Deterministic_NLConditionAlwaysUnsatisfied(t *testing.T) {
	t.Parallel()

	h := condition.NewHybridEvaluator(model.ModeDeterministic, nil)
	s := state.New(model.NewState())

	out, err := h.Evaluate(context.Background(), s, model.Condition{NLText: "the king is dead"})
	require.NoError(t, err)
	assert.False(t, out.Result.Satisfied)
	assert.Nil(t, out.NLEval, "deterministic mode never records an NL evaluation")
}

func TestHybridEvaluator_Deterministic_TypedConditionStillEvaluates(t *testing.T) {
	t.Parallel()

	h := condition.NewHybridEvaluator(model.ModeDeterministic, nil)
	s := state.New(model.NewState())
	require.NoError(t, s.Set(mustParse(t, "world.vars.gold"), 10.0))

	out, err := h.Evaluate(context.Background(), s, model.Condition{Path: "world.vars.gold", Op: model.OpEqual, Value: 10.0})
	require.NoError(t, err)
	assert.True(t, out.Result.Satisfied)
}

func TestHybridEvaluator_AIAssisted_DelegatesToJudge(t *testing.T) {
	t.Parallel()

	judge := condition.NewStubJudge("king is dead")
	h := condition.NewHybridEvaluator(model.ModeAIAssisted, judge)
	s := state.New(model.NewState())

	out, err := h.Evaluate(context.Background(), s, model.Condition{NLText: "the king is dead"})
	require.NoError(t, err)
	require.NotNil(t, out.NLEval)
	assert.True(t, out.Result.Satisfied)
	assert.True(t, out.NLEval.Satisfied)
	assert.Equal(t, "the king is dead", out.NLEval.ConditionText)
}

func TestHybridEvaluator_NoJudgeConfigured_NonDeterministicMode_Errors(t *testing.T) {
	t.Parallel()

	h := condition.NewHybridEvaluator(model.ModeAIAssisted, nil)
	s := state.New(model.NewState())

	_, err := h.Evaluate(context.Background(), s, model.Condition{NLText: "anything"})
	assert.Error(t, err)
}

func TestHybridEvaluator_CachedJudge_RecordsCacheHit(t *testing.T) {
	t.Parallel()

	inner := condition.NewStubJudge("harvest")
	cached := condition.NewCachedJudge(inner, 10)
	h := condition.NewHybridEvaluator(model.ModeAIPrimary, cached)
	s := state.New(model.NewState())

	out, err := h.Evaluate(context.Background(), s, model.Condition{NLText: "the harvest failed"})
	require.NoError(t, err)
	require.NotNil(t, out.NLEval)
	assert.False(t, out.NLEval.CacheHit, "first call is never a cache hit")

	out, err = h.Evaluate(context.Background(), s, model.Condition{NLText: "the harvest failed"})
	require.NoError(t, err)
	require.NotNil(t, out.NLEval)
	assert.True(t, out.NLEval.CacheHit, "second call with identical text and state must hit the cache")
}

func TestHybridEvaluator_AIPrimary_SerializesTypedConditionToJudge(t *testing.T) {
	t.Parallel()

	judge := condition.NewStubJudge("is at least 50")
	h := condition.NewHybridEvaluator(model.ModeAIPrimary, judge)
	s := state.New(model.NewState())
	require.NoError(t, s.Set(mustParse(t, "world.vars.gold"), 100.0))

	out, err := h.Evaluate(context.Background(), s, model.Condition{
		Path: "world.vars.gold", Op: model.OpGreaterEq, Value: 50.0,
	})
	require.NoError(t, err)
	require.NotNil(t, out.NLEval, "ai_primary must delegate typed conditions to the judge too")
	assert.True(t, out.Result.Satisfied)
	assert.Equal(t, "world.vars.gold is at least 50", out.NLEval.ConditionText)
}

func TestHybridEvaluator_AIPrimary_TypedConditionWithNoJudgeErrors(t *testing.T) {
	t.Parallel()

	h := condition.NewHybridEvaluator(model.ModeAIPrimary, nil)
	s := state.New(model.NewState())

	_, err := h.Evaluate(context.Background(), s, model.Condition{Path: "world.vars.gold", Op: model.OpEqual, Value: 1.0})
	assert.Error(t, err, "ai_primary has no deterministic fallback; a typed condition still requires a judge")
}

func TestRenderStateContext_Deterministic(t *testing.T) {
	t.Parallel()

	s := state.New(model.NewState())
	require.NoError(t, s.Set(mustParse(t, "world.vars.gold"), 5.0))
	require.NoError(t, s.Append(mustParse(t, "world.tags"), "storm"))

	a := condition.RenderStateContext(s)
	b := condition.RenderStateContext(s)
	assert.Equal(t, a, b, "rendering the same state twice must produce byte-identical output")
}
