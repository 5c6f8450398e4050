package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pj4239460/story-graph-assistant/internal/model"
)

func TestDiversityMultiplier_NoRecentHits(t *testing.T) {
	t.Parallel()

	s := &model.Storylet{Tags: []string{"economic"}}
	mult := diversityMultiplier(s, map[string]int{}, 0.5)
	assert.Equal(t, 1.0, mult)
}

func TestDiversityMultiplier_PenalizesRepeatedTagHits(t *testing.T) {
	t.Parallel()

	s := &model.Storylet{Tags: []string{"economic"}}
	mult := diversityMultiplier(s, map[string]int{"economic": 3}, 0.5)
	assert.InDelta(t, 0.125, mult, 1e-9)
}

func TestApplyDiversityPenalty_ClampsToFloorInsteadOfZero(t *testing.T) {
	t.Parallel()

	candidates := []*candidate{
		{Storylet: &model.Storylet{ID: "A", Tags: []string{"economic"}}, Weight: 1},
	}
	recentIDs := make([]string, 50)
	byID := map[string]*model.Storylet{"A": candidates[0].Storylet}
	for i := range recentIDs {
		recentIDs[i] = "A"
		byID["A"].Tags = []string{"economic"}
	}

	applyDiversityPenalty(candidates, recentIDs, byID, 0.5, 50)
	assert.Greater(t, candidates[0].Weight, 0.0, "a heavily-penalized candidate must stay sampleable, never exactly zero")
}

func TestApplyDiversityPenalty_ZeroWindowIsNoOp(t *testing.T) {
	t.Parallel()

	candidates := []*candidate{
		{Storylet: &model.Storylet{ID: "A", Tags: []string{"economic"}}, Weight: 1},
	}
	applyDiversityPenalty(candidates, []string{"A", "A", "A"}, map[string]*model.Storylet{"A": candidates[0].Storylet}, 0.5, 0)
	assert.Equal(t, 1.0, candidates[0].Weight)
}
