package condition

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprCache compiles and caches the boolean expr-lang predicates that
// authoring-time storylet linting uses to flag preconditions that can
// never be satisfied regardless of runtime state (e.g. a threshold
// outside world.intensity's clamped [0,1] range), mirroring the
// teacher's ConditionCache but over predicate expressions rather than
// edge conditions.
type ExprCache struct {
	cache *programCache
}

// NewExprCache returns an expr-lang predicate cache with the given
// program-cache capacity.
func NewExprCache(capacity int) *ExprCache {
	return &ExprCache{cache: newProgramCache(capacity)}
}

// EvalPredicate compiles (if needed) and runs a boolean expr-lang
// expression against env, used by authoring-time storylet linting to
// flag preconditions that can never be satisfied.
func (c *ExprCache) EvalPredicate(source string, env map[string]interface{}) (bool, error) {
	program, err := c.compile(source, env)
	if err != nil {
		return false, err
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("expr evaluation failed for %q: %w", source, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q did not evaluate to a bool", source)
	}
	return b, nil
}

func (c *ExprCache) compile(source string, env map[string]interface{}) (*vm.Program, error) {
	if program, found := c.cache.Get(source); found {
		return program, nil
	}
	program, err := expr.Compile(source, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression %q: %w", source, err)
	}
	c.cache.Put(source, program)
	return program, nil
}
