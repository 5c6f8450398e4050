package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pj4239460/story-graph-assistant/internal/model"
)

func validConfig() model.DirectorConfig {
	return model.DirectorConfig{
		EventsPerTick:    1,
		DiversityPenalty: 0.2,
		DiversityWindow:  3,
		PacingScale:      0.5,
		PacingPreference: model.PacingBalanced,
		IntensityDecay:   0.1,
		Mode:             model.ModeDeterministic,
	}
}

func TestProject_Validate_DuplicateStoryletID(t *testing.T) {
	t.Parallel()

	p := &model.Project{
		Storylets: []*model.Storylet{
			{ID: "A", Weight: 1},
			{ID: "A", Weight: 1},
		},
		Config: validConfig(),
	}

	err := p.Validate()
	require.Error(t, err)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestProject_Validate_UnknownRequiresFiredReference(t *testing.T) {
	t.Parallel()

	p := &model.Project{
		Storylets: []*model.Storylet{
			{ID: "A", Weight: 1, RequiresFired: []string{"ghost"}},
		},
		Config: validConfig(),
	}

	err := p.Validate()
	assert.Error(t, err)
}

func TestProject_Validate_HappyPath(t *testing.T) {
	t.Parallel()

	p := &model.Project{
		Storylets: []*model.Storylet{
			{ID: "A", Weight: 1},
			{ID: "B", Weight: 1, RequiresFired: []string{"A"}},
		},
		Config: validConfig(),
	}

	assert.NoError(t, p.Validate())
}

func TestStorylet_Validate_NegativeWeight(t *testing.T) {
	t.Parallel()

	s := &model.Storylet{ID: "A", Weight: -1}
	assert.Error(t, s.Validate())
}

func TestStorylet_Validate_IntensityDeltaOutOfRange(t *testing.T) {
	t.Parallel()

	s := &model.Storylet{ID: "A", Weight: 1, IntensityDelta: 2}
	assert.Error(t, s.Validate())
}

func TestStorylet_Validate_ConditionWithBothNLAndTypedForm(t *testing.T) {
	t.Parallel()

	s := &model.Storylet{
		ID:     "A",
		Weight: 1,
		Preconditions: []model.Condition{
			{NLText: "it is raining", Path: "world.vars.gold", Op: model.OpGreater, Value: 1.0},
		},
	}
	assert.Error(t, s.Validate())
}

func TestStorylet_Validate_UnknownEffectOperator(t *testing.T) {
	t.Parallel()

	s := &model.Storylet{
		ID:      "A",
		Weight:  1,
		Effects: []model.Effect{{Path: "world.vars.gold", Op: "frobnicate", Value: 1.0}},
	}
	assert.Error(t, s.Validate())
}

func TestDirectorConfig_Validate_RejectsUnknownPacingPreference(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.PacingPreference = "frantic"
	assert.Error(t, cfg.Validate())
}

func TestDirectorConfig_Validate_RejectsDiversityPenaltyOutOfRange(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.DiversityPenalty = 1.5
	assert.Error(t, cfg.Validate())
}
