package director

import (
	"fmt"

	"github.com/pj4239460/story-graph-assistant/internal/condition"
	"github.com/pj4239460/story-graph-assistant/internal/model"
)

// LintFinding is one authoring-time warning about a storylet that can
// structurally never fire, independent of any particular run's state.
type LintFinding struct {
	StoryletID string
	Reason     string
}

// Lint performs read-only static analysis over a project's storylet
// catalog, flagging storylets that no tick can ever select regardless
// of world state — mirroring the authoring tool's editor-side warnings
// without depending on any editor code. It never mutates project or
// touches any thread's history.
func Lint(project *model.Project) []LintFinding {
	var findings []LintFinding

	byID := make(map[string]*model.Storylet, len(project.Storylets))
	for _, s := range project.Storylets {
		byID[s.ID] = s
	}

	predicates := condition.NewExprCache(64)

	for _, s := range project.Storylets {
		if reason, bad := selfContradictoryOrdering(s); bad {
			findings = append(findings, LintFinding{StoryletID: s.ID, Reason: reason})
		}
		if reason, bad := unreachableRequirement(s, byID); bad {
			findings = append(findings, LintFinding{StoryletID: s.ID, Reason: reason})
		}
		if reason, bad := zeroWeightNonFallback(s); bad {
			findings = append(findings, LintFinding{StoryletID: s.ID, Reason: reason})
		}
		for _, reason := range impossibleIntensityThresholds(s, predicates) {
			findings = append(findings, LintFinding{StoryletID: s.ID, Reason: reason})
		}
	}

	findings = append(findings, findOrderingCycles(project.Storylets)...)

	return findings
}

// selfContradictoryOrdering flags a storylet that both requires and
// forbids the same prior storylet, or requires/forbids itself.
func selfContradictoryOrdering(s *model.Storylet) (string, bool) {
	forbids := make(map[string]bool, len(s.ForbidsFired))
	for _, id := range s.ForbidsFired {
		forbids[id] = true
		if id == s.ID {
			return "forbids_fired references itself, which is always true once it has fired", true
		}
	}
	for _, req := range s.RequiresFired {
		if req == s.ID {
			return "requires_fired references itself, which can never be satisfied before first firing", true
		}
		if forbids[req] {
			return fmt.Sprintf("requires_fired and forbids_fired both reference %q: can never fire", req), true
		}
	}
	return "", false
}

// unreachableRequirement flags a requires_fired or forbids_fired
// reference to a storylet id absent from the pool (load-time validation
// should have already caught this, but Lint is defensive since it may
// run against a project that skipped Validate in a test harness). It
// does not inspect the referenced storylet's once or cooldown settings.
func unreachableRequirement(s *model.Storylet, byID map[string]*model.Storylet) (string, bool) {
	for _, req := range s.RequiresFired {
		if _, ok := byID[req]; !ok {
			return fmt.Sprintf("requires_fired references unknown storylet %q", req), true
		}
	}
	for _, forb := range s.ForbidsFired {
		if _, ok := byID[forb]; !ok {
			return fmt.Sprintf("forbids_fired references unknown storylet %q", forb), true
		}
	}
	return "", false
}

// zeroWeightNonFallback flags a regular storylet with weight 0 and no
// preconditions that could ever change that — it is dead weight in the
// catalog, distinct from an intentionally-gated event.
func zeroWeightNonFallback(s *model.Storylet) (string, bool) {
	if !s.IsFallback && s.Weight == 0 && len(s.Preconditions) == 0 {
		return "weight is 0 with no preconditions: can never be drawn by weighted sampling", true
	}
	return "", false
}

// impossibleIntensityThresholds flags a numeric comparison against
// world.intensity whose threshold falls entirely outside the clamped
// [0,1] range the scalar can ever hold, using expr-lang to evaluate
// the comparison at both boundary values rather than hardcoding the
// monotonicity argument per operator.
func impossibleIntensityThresholds(s *model.Storylet, predicates *condition.ExprCache) []string {
	var out []string
	for _, c := range s.Preconditions {
		if c.IsNL() || c.Path != "world.intensity" {
			continue
		}
		switch c.Op {
		case model.OpLess, model.OpLessEq, model.OpGreater, model.OpGreaterEq:
		default:
			continue
		}
		value, ok := c.Value.(float64)
		if !ok {
			continue
		}
		source := fmt.Sprintf("(lo %s value) || (hi %s value)", c.Op, c.Op)
		reachable, err := predicates.EvalPredicate(source, map[string]interface{}{
			"lo": 0.0, "hi": 1.0, "value": value,
		})
		if err != nil {
			continue
		}
		if !reachable {
			out = append(out, fmt.Sprintf(
				"precondition world.intensity %s %v can never be satisfied: intensity is clamped to [0,1]",
				c.Op, value))
		}
	}
	return out
}

// findOrderingCycles detects cycles in the requires_fired graph, which
// can never be satisfied since a storylet cannot require its own prior
// firing transitively.
func findOrderingCycles(storylets []*model.Storylet) []LintFinding {
	graph := make(map[string][]string, len(storylets))
	for _, s := range storylets {
		graph[s.ID] = s.RequiresFired
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(storylets))
	var findings []LintFinding

	flagged := make(map[string]bool)
	var visit func(id string, path []string)
	visit = func(id string, path []string) {
		switch state[id] {
		case done:
			return
		case visiting:
			for i, p := range path {
				if p != id {
					continue
				}
				for _, member := range path[i:] {
					if !flagged[member] {
						flagged[member] = true
						findings = append(findings, LintFinding{
							StoryletID: member,
							Reason:     "participates in a requires_fired cycle: no storylet in the cycle can ever fire first",
						})
					}
				}
				break
			}
			return
		}
		state[id] = visiting
		for _, dep := range graph[id] {
			visit(dep, append(path, id))
		}
		state[id] = done
	}

	for _, s := range storylets {
		if state[s.ID] == unvisited {
			visit(s.ID, nil)
		}
	}
	return findings
}
