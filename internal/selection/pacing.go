package selection

import "github.com/pj4239460/story-graph-assistant/internal/model"

// pacingMultiplier implements spec §4.6 stage 6: multiply weight by
// 1 + pacingScale*sign(drive)*intensityDelta, then the caller clamps to
// >= 0. drive = target - currentIntensity.
func pacingMultiplier(s *model.Storylet, drive, pacingScale float64) float64 {
	return 1 + pacingScale*sign(drive)*s.IntensityDelta
}

func sign(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}

// applyPacingAdjustment multiplies each candidate's weight in place.
func applyPacingAdjustment(candidates []*candidate, currentIntensity float64, pref model.PacingPreference, pacingScale float64) {
	target := model.PacingTarget(pref)
	drive := target - currentIntensity
	for _, c := range candidates {
		mult := pacingMultiplier(c.Storylet, drive, pacingScale)
		c.Weight *= mult
		if c.Weight < 0 {
			c.Weight = 0
		}
		c.Rationale = append(c.Rationale, sprintfStage(6, "pacing drive %.3f, multiplier %.3f", drive, mult))
	}
}
