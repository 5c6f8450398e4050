package selection

import "github.com/pj4239460/story-graph-assistant/internal/model"

const minSampleableWeight = 1e-9

// tagCounts tallies how many times each tag appears across a slice of
// recently-selected storylet ids, per spec §4.6 stage 5.
func tagCounts(recentIDs []string, byID map[string]*model.Storylet) map[string]int {
	counts := make(map[string]int)
	for _, id := range recentIDs {
		s, ok := byID[id]
		if !ok {
			continue
		}
		for _, tag := range s.Tags {
			counts[tag]++
		}
	}
	return counts
}

// diversityMultiplier returns (1 - penalty)^k where k is the sum, over
// s's own tags, of how many times each tag occurred in recentIDs.
func diversityMultiplier(s *model.Storylet, counts map[string]int, penalty float64) float64 {
	k := 0
	for _, tag := range s.Tags {
		k += counts[tag]
	}
	mult := 1.0
	factor := 1 - penalty
	for i := 0; i < k; i++ {
		mult *= factor
	}
	return mult
}

// applyDiversityPenalty multiplies each candidate's weight in place and
// clamps the floor so a candidate never becomes unsampleable outright.
func applyDiversityPenalty(candidates []*candidate, recentIDs []string, byID map[string]*model.Storylet, penalty float64, window int) {
	if window <= 0 {
		return
	}
	counts := tagCounts(recentIDs, byID)
	for _, c := range candidates {
		mult := diversityMultiplier(c.Storylet, counts, penalty)
		before := c.Weight
		c.Weight *= mult
		if c.Weight < minSampleableWeight && before > 0 {
			c.Weight = minSampleableWeight
		}
		if mult < 1 {
			c.Rationale = append(c.Rationale, ratioDiversity(c.Storylet, counts, mult))
		}
	}
}

func ratioDiversity(s *model.Storylet, counts map[string]int, mult float64) string {
	k := 0
	for _, tag := range s.Tags {
		k += counts[tag]
	}
	return sprintfStage(5, "diversity %.4f after %d recent tag hits", mult, k)
}
