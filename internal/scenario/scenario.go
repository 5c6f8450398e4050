// Package scenario loads the YAML fixtures under testdata/scenarios
// into model.Project values, so the six literal pipeline scenarios of
// spec §8 can be authored as data rather than hand-built in Go, the
// way the teacher keeps example workflow definitions as fixture files
// rather than inline struct literals.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pj4239460/story-graph-assistant/internal/model"
)

// Scenario is the YAML shape authors write: a named test case with a
// storylet pool, a director config, and the expected per-tick
// selection outcome it documents (informational for humans reading the
// fixture; tests assert behavior independently).
type Scenario struct {
	Name      string           `yaml:"name"`
	Storylets []storyletYAML   `yaml:"storylets"`
	Config    configYAML       `yaml:"config"`
	Expect    []expectationRow `yaml:"expect"`
}

type storyletYAML struct {
	ID             string   `yaml:"id"`
	Weight         float64  `yaml:"weight"`
	Cooldown       int      `yaml:"cooldown"`
	Once           bool     `yaml:"once"`
	IsFallback     bool     `yaml:"is_fallback"`
	IntensityDelta float64  `yaml:"intensity_delta"`
	Tags           []string `yaml:"tags"`
	RequiresFired  []string `yaml:"requires_fired"`
	ForbidsFired   []string `yaml:"forbids_fired"`
}

type configYAML struct {
	EventsPerTick          int     `yaml:"events_per_tick"`
	DiversityPenalty       float64 `yaml:"diversity_penalty"`
	DiversityWindow        int     `yaml:"diversity_window"`
	PacingScale            float64 `yaml:"pacing_scale"`
	PacingPreference       string  `yaml:"pacing_preference"`
	IntensityDecay         float64 `yaml:"intensity_decay"`
	FallbackAfterIdleTicks int     `yaml:"fallback_after_idle_ticks"`
	Mode                   string  `yaml:"mode"`
	RNGSeed                int64   `yaml:"rng_seed"`
	InitialIntensity       float64 `yaml:"initial_intensity"`
}

// expectationRow documents one tick's expected selection for humans
// reading the fixture; Load decodes it into Expect, but ToProject
// ignores it and no test asserts against it.
type expectationRow struct {
	Tick      int      `yaml:"tick"`
	Selected  []string `yaml:"selected"`
	MinWins   []string `yaml:"min_wins,omitempty"`
	MinCount  int      `yaml:"min_count,omitempty"`
	OverTicks int      `yaml:"over_ticks,omitempty"`
}

// Load reads and decodes the YAML scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return &s, nil
}

// ToProject converts the fixture into a model.Project with default
// pacing of "balanced" and "deterministic" mode unless overridden.
func (s *Scenario) ToProject() (*model.Project, error) {
	storylets := make([]*model.Storylet, 0, len(s.Storylets))
	for _, sl := range s.Storylets {
		storylets = append(storylets, &model.Storylet{
			ID:             sl.ID,
			Weight:         sl.Weight,
			Cooldown:       sl.Cooldown,
			Once:           sl.Once,
			IsFallback:     sl.IsFallback,
			IntensityDelta: sl.IntensityDelta,
			Tags:           sl.Tags,
			RequiresFired:  sl.RequiresFired,
			ForbidsFired:   sl.ForbidsFired,
		})
	}

	pacing := model.PacingPreference(s.Config.PacingPreference)
	if pacing == "" {
		pacing = model.PacingBalanced
	}
	mode := model.EvalMode(s.Config.Mode)
	if mode == "" {
		mode = model.ModeDeterministic
	}

	seed := model.NewState()
	if s.Config.InitialIntensity != 0 {
		seed.World.Intensity = s.Config.InitialIntensity
	}

	project := &model.Project{
		ID:        s.Name,
		Name:      s.Name,
		Storylets: storylets,
		SeedState: seed,
		Config: model.DirectorConfig{
			EventsPerTick:          s.Config.EventsPerTick,
			DiversityPenalty:       s.Config.DiversityPenalty,
			DiversityWindow:        s.Config.DiversityWindow,
			PacingScale:            s.Config.PacingScale,
			PacingPreference:       pacing,
			IntensityDecay:         s.Config.IntensityDecay,
			FallbackAfterIdleTicks: s.Config.FallbackAfterIdleTicks,
			Mode:                   mode,
			RNGSeed:                s.Config.RNGSeed,
		},
	}

	if project.Config.EventsPerTick == 0 {
		project.Config.EventsPerTick = 1
	}

	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s produced invalid project: %w", s.Name, err)
	}
	return project, nil
}
