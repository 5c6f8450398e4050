package condition

import "testing"

func TestExprCache_CompilesAndCachesPredicate(t *testing.T) {
	t.Parallel()

	c := NewExprCache(4)
	env := map[string]interface{}{"lo": 0.0, "hi": 1.0, "value": 1.5}

	ok, err := c.EvalPredicate("(lo > value) || (hi > value)", env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected predicate to be false: neither 0.0 nor 1.0 is greater than 1.5")
	}

	if _, found := c.cache.Get("(lo > value) || (hi > value)"); !found {
		t.Fatalf("expected the compiled program to be cached after the first evaluation")
	}

	ok, err = c.EvalPredicate("(lo > value) || (hi > value)", env)
	if err != nil {
		t.Fatalf("unexpected error on cached call: %v", err)
	}
	if ok {
		t.Fatalf("cached predicate must evaluate identically")
	}
}

func TestExprCache_NonBoolExpressionErrors(t *testing.T) {
	t.Parallel()

	c := NewExprCache(4)
	_, err := c.EvalPredicate("value + 1", map[string]interface{}{"value": 1.0})
	if err == nil {
		t.Fatalf("expected an error compiling a non-bool expression with expr.AsBool()")
	}
}
