package condition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pj4239460/story-graph-assistant/internal/condition"
	"github.com/pj4239460/story-graph-assistant/internal/model"
	"github.com/pj4239460/story-graph-assistant/internal/state"
)

func mustParse(t *testing.T, raw string) state.Path {
	t.Helper()
	p, err := state.Parse(raw)
	require.NoError(t, err)
	return p
}

func newStoreWithGold(gold float64) *state.Store {
	s := state.New(model.NewState())
	path, _ := state.Parse("world.vars.gold")
	_ = s.Set(path, gold)
	return s
}

func TestTypedEvaluator_NumericCompare(t *testing.T) {
	t.Parallel()

	e := condition.NewTypedEvaluator()
	s := newStoreWithGold(10)

	cases := []struct {
		op   model.ConditionOp
		val  float64
		want bool
	}{
		{model.OpLess, 20, true},
		{model.OpLess, 5, false},
		{model.OpLessEq, 10, true},
		{model.OpGreater, 5, true},
		{model.OpGreaterEq, 10, true},
		{model.OpEqual, 10, true},
		{model.OpNotEqual, 10, false},
	}

	for _, c := range cases {
		res, err := e.Evaluate(s, model.Condition{Path: "world.vars.gold", Op: c.op, Value: c.val})
		require.NoError(t, err)
		assert.Equal(t, c.want, res.Satisfied, "op %s %v", c.op, c.val)
	}
}

func TestTypedEvaluator_HasTagLacksTag_AbsentPathIsEmptySet(t *testing.T) {
	t.Parallel()

	e := condition.NewTypedEvaluator()
	s := state.New(model.NewState())

	res, err := e.Evaluate(s, model.Condition{Path: "world.tags", Op: model.OpHasTag, Value: "storm"})
	require.NoError(t, err)
	assert.False(t, res.Satisfied)

	res, err = e.Evaluate(s, model.Condition{Path: "world.tags", Op: model.OpLacksTag, Value: "storm"})
	require.NoError(t, err)
	assert.True(t, res.Satisfied)
}

func TestTypedEvaluator_HasTag_Present(t *testing.T) {
	t.Parallel()

	e := condition.NewTypedEvaluator()
	s := state.New(model.NewState())
	require.NoError(t, s.Append(mustParse(t, "world.tags"), "storm"))

	res, err := e.Evaluate(s, model.Condition{Path: "world.tags", Op: model.OpHasTag, Value: "storm"})
	require.NoError(t, err)
	assert.True(t, res.Satisfied)
}

func TestTypedEvaluator_In(t *testing.T) {
	t.Parallel()

	e := condition.NewTypedEvaluator()
	s := state.New(model.NewState())
	require.NoError(t, s.Set(mustParse(t, "world.vars.faction"), "rebels"))

	res, err := e.Evaluate(s, model.Condition{
		Path: "world.vars.faction", Op: model.OpIn,
		Value: []model.Scalar{"rebels", "empire"},
	})
	require.NoError(t, err)
	assert.True(t, res.Satisfied)
}

func TestTypedEvaluator_NotIn_AbsentPathIsEmptySet(t *testing.T) {
	t.Parallel()

	e := condition.NewTypedEvaluator()
	s := state.New(model.NewState())

	res, err := e.Evaluate(s, model.Condition{
		Path: "characters.alice.traits", Op: model.OpNotIn, Value: "coward",
	})
	require.NoError(t, err)
	assert.True(t, res.Satisfied, "absent list treated as empty set, so not_in always holds")
}

func TestTypedEvaluator_Contains(t *testing.T) {
	t.Parallel()

	e := condition.NewTypedEvaluator()
	s := state.New(model.NewState())
	require.NoError(t, s.Append(mustParse(t, "characters.alice.traits"), "brave"))

	res, err := e.Evaluate(s, model.Condition{
		Path: "characters.alice.traits", Op: model.OpContains, Value: "brave",
	})
	require.NoError(t, err)
	assert.True(t, res.Satisfied)
}

func TestTypedEvaluator_MissingPath_NonSetOp_Unsatisfied(t *testing.T) {
	t.Parallel()

	e := condition.NewTypedEvaluator()
	s := state.New(model.NewState())

	res, err := e.Evaluate(s, model.Condition{Path: "world.vars.missing", Op: model.OpEqual, Value: 1.0})
	require.NoError(t, err)
	assert.False(t, res.Satisfied)
}

func TestTypedEvaluator_NonNumericOperand_Errors(t *testing.T) {
	t.Parallel()

	e := condition.NewTypedEvaluator()
	s := newStoreWithGold(10)

	_, err := e.Evaluate(s, model.Condition{Path: "world.vars.gold", Op: model.OpLess, Value: "not-a-number"})
	assert.Error(t, err)
}
