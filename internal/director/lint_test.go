package director_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pj4239460/story-graph-assistant/internal/director"
	"github.com/pj4239460/story-graph-assistant/internal/model"
)

func findingFor(findings []director.LintFinding, id string) []director.LintFinding {
	var out []director.LintFinding
	for _, f := range findings {
		if f.StoryletID == id {
			out = append(out, f)
		}
	}
	return out
}

func TestLint_SelfContradictoryOrdering(t *testing.T) {
	t.Parallel()

	project := &model.Project{
		Storylets: []*model.Storylet{
			{ID: "A", Weight: 1, RequiresFired: []string{"B"}, ForbidsFired: []string{"B"}},
			{ID: "B", Weight: 1},
		},
	}

	findings := director.Lint(project)
	assert.NotEmpty(t, findingFor(findings, "A"))
}

func TestLint_UnreachableRequirement(t *testing.T) {
	t.Parallel()

	project := &model.Project{
		Storylets: []*model.Storylet{
			{ID: "A", Weight: 1, RequiresFired: []string{"ghost"}},
		},
	}

	findings := director.Lint(project)
	assert.NotEmpty(t, findingFor(findings, "A"))
}

func TestLint_ZeroWeightNonFallback(t *testing.T) {
	t.Parallel()

	project := &model.Project{
		Storylets: []*model.Storylet{
			{ID: "Dead", Weight: 0},
			{ID: "Fallback", Weight: 0, IsFallback: true},
		},
	}

	findings := director.Lint(project)
	assert.NotEmpty(t, findingFor(findings, "Dead"))
	assert.Empty(t, findingFor(findings, "Fallback"))
}

func TestLint_OrderingCycle(t *testing.T) {
	t.Parallel()

	project := &model.Project{
		Storylets: []*model.Storylet{
			{ID: "A", Weight: 1, RequiresFired: []string{"B"}},
			{ID: "B", Weight: 1, RequiresFired: []string{"A"}},
		},
	}

	findings := director.Lint(project)
	assert.NotEmpty(t, findingFor(findings, "A"))
	assert.NotEmpty(t, findingFor(findings, "B"))
}

func TestLint_ImpossibleIntensityThreshold(t *testing.T) {
	t.Parallel()

	project := &model.Project{
		Storylets: []*model.Storylet{
			{
				ID:     "NeverFires",
				Weight: 1,
				Preconditions: []model.Condition{
					{Path: "world.intensity", Op: model.OpGreater, Value: 1.5},
				},
			},
			{
				ID:     "CanFire",
				Weight: 1,
				Preconditions: []model.Condition{
					{Path: "world.intensity", Op: model.OpGreater, Value: 0.5},
				},
			},
		},
	}

	findings := director.Lint(project)
	assert.NotEmpty(t, findingFor(findings, "NeverFires"))
	assert.Empty(t, findingFor(findings, "CanFire"))
}

func TestLint_CleanProjectHasNoFindings(t *testing.T) {
	t.Parallel()

	project := &model.Project{
		Storylets: []*model.Storylet{
			{ID: "A", Weight: 1},
			{ID: "B", Weight: 1, RequiresFired: []string{"A"}},
		},
	}

	findings := director.Lint(project)
	assert.Empty(t, findings)
}
