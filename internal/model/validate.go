package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// ValidationError mirrors the teacher's domain error family: it names
// the offending field so load-time rejections are actionable. Per spec
// §7, ValidationError is surfaced only at load, never at tick time.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks a Project for load-time errors: struct-tag
// constraints, enum values, id uniqueness, and out-of-range numerics.
// It never mutates the project.
func (p *Project) Validate() error {
	seen := make(map[string]bool, len(p.Storylets))
	for _, s := range p.Storylets {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.ID] {
			return newValidationError("storylets", "duplicate storylet id %q", s.ID)
		}
		seen[s.ID] = true
	}

	// Ordering constraints must reference ids that exist in the pool.
	for _, s := range p.Storylets {
		for _, req := range s.RequiresFired {
			if !seen[req] {
				return newValidationError("requires_fired", "storylet %q requires unknown storylet %q", s.ID, req)
			}
		}
		for _, forb := range s.ForbidsFired {
			if !seen[forb] {
				return newValidationError("forbids_fired", "storylet %q forbids unknown storylet %q", s.ID, forb)
			}
		}
	}

	return p.Config.Validate()
}

// Validate checks a single storylet's shape.
func (s *Storylet) Validate() error {
	if err := structValidator.Struct(s); err != nil {
		return newValidationError("id", "storylet failed validation: %v", err)
	}
	if s.ID == "" {
		return newValidationError("id", "storylet id is required")
	}
	if s.Weight < 0 {
		return newValidationError("weight", "storylet %q has negative weight %v", s.ID, s.Weight)
	}
	if s.Cooldown < 0 {
		return newValidationError("cooldown", "storylet %q has negative cooldown %d", s.ID, s.Cooldown)
	}
	if s.IntensityDelta < -1 || s.IntensityDelta > 1 {
		return newValidationError("intensity_delta", "storylet %q intensity_delta %v out of [-1,1]", s.ID, s.IntensityDelta)
	}

	for i, c := range s.Preconditions {
		if err := c.validate(); err != nil {
			return newValidationError("preconditions", "storylet %q precondition %d: %v", s.ID, i, err)
		}
	}
	for i, e := range s.Effects {
		if err := e.validate(); err != nil {
			return newValidationError("effects", "storylet %q effect %d: %v", s.ID, i, err)
		}
	}
	return nil
}

func (c Condition) validate() error {
	typed := c.Path != "" || c.Op != "" || c.Scope != ""
	if c.IsNL() && typed {
		return fmt.Errorf("condition has both nl_text and a typed form")
	}
	if !c.IsNL() {
		if c.Path == "" {
			return fmt.Errorf("typed condition missing path")
		}
		if !ValidConditionOps[c.Op] {
			return fmt.Errorf("unknown operator %q", c.Op)
		}
	}
	return nil
}

func (e Effect) validate() error {
	if !ValidEffectOps[e.Op] {
		return fmt.Errorf("unknown effect operator %q", e.Op)
	}
	if e.Path == "" {
		return fmt.Errorf("effect missing path")
	}
	return nil
}

// Validate checks a DirectorConfig for range and enum errors.
func (c *DirectorConfig) Validate() error {
	if c.EventsPerTick < 0 {
		return newValidationError("events_per_tick", "must be >= 0, got %d", c.EventsPerTick)
	}
	if c.DiversityPenalty < 0 || c.DiversityPenalty > 1 {
		return newValidationError("diversity_penalty", "must be in [0,1], got %v", c.DiversityPenalty)
	}
	if c.DiversityWindow < 0 {
		return newValidationError("diversity_window", "must be >= 0, got %d", c.DiversityWindow)
	}
	if c.PacingScale < 0 || c.PacingScale > 1 {
		return newValidationError("pacing_scale", "must be in [0,1], got %v", c.PacingScale)
	}
	switch c.PacingPreference {
	case PacingCalm, PacingBalanced, PacingIntense:
	default:
		return newValidationError("pacing_preference", "unknown value %q", c.PacingPreference)
	}
	if c.IntensityDecay < 0 || c.IntensityDecay > 1 {
		return newValidationError("intensity_decay", "must be in [0,1], got %v", c.IntensityDecay)
	}
	if c.FallbackAfterIdleTicks < 0 {
		return newValidationError("fallback_after_idle_ticks", "must be >= 0, got %d", c.FallbackAfterIdleTicks)
	}
	switch c.Mode {
	case ModeDeterministic, ModeAIAssisted, ModeAIPrimary:
	default:
		return newValidationError("mode", "unknown value %q", c.Mode)
	}
	return nil
}
