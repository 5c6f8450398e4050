// Package condition implements precondition evaluation: the typed
// operator set of spec §4.2, the NLJudge delegation path of §4.3, and
// the HybridEvaluator orchestration of §4.4.
package condition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pj4239460/story-graph-assistant/internal/direrr"
	"github.com/pj4239460/story-graph-assistant/internal/model"
	"github.com/pj4239460/story-graph-assistant/internal/state"
)

// Result is the outcome of evaluating one condition: whether it held,
// and a human-readable reason referencing the evaluated value, used as
// the selection pipeline's stage-1 rejection reason and in
// Director.Explain's per-condition output.
type Result struct {
	Satisfied bool
	Reason    string
}

// TypedEvaluator evaluates the 11 typed operators of spec §4.2 against
// a state.Store. It holds no state of its own; every call is pure
// given (store, condition).
type TypedEvaluator struct{}

// NewTypedEvaluator returns a stateless typed-condition evaluator.
func NewTypedEvaluator() *TypedEvaluator {
	return &TypedEvaluator{}
}

// Evaluate resolves c.Path against store and applies c.Op. A missing
// path is not an error: has_tag/lacks_tag/not_in treat it as an empty
// set (spec §4.2); every other operator treats it as unsatisfied.
func (e *TypedEvaluator) Evaluate(store *state.Store, c model.Condition) (Result, error) {
	path, err := state.Parse(c.Path)
	if err != nil {
		return Result{}, err
	}

	switch c.Op {
	case model.OpHasTag, model.OpLacksTag, model.OpNotIn:
		list := store.GetOrEmptySet(path)
		return e.evalSetOp(c, list)
	}

	value, err := store.Get(path)
	if err != nil {
		if _, ok := err.(*direrr.PathNotFoundError); ok {
			return Result{Satisfied: false, Reason: fmt.Sprintf("%s is absent", c.Path)}, nil
		}
		return Result{}, err
	}

	switch c.Op {
	case model.OpEqual:
		ok := scalarEqual(value, c.Value)
		return Result{Satisfied: ok, Reason: fmt.Sprintf("%s == %v is %v (actual %v)", c.Path, c.Value, ok, value)}, nil
	case model.OpNotEqual:
		ok := !scalarEqual(value, c.Value)
		return Result{Satisfied: ok, Reason: fmt.Sprintf("%s != %v is %v (actual %v)", c.Path, c.Value, ok, value)}, nil
	case model.OpLess, model.OpLessEq, model.OpGreater, model.OpGreaterEq:
		return e.evalNumericCompare(c, value)
	case model.OpIn:
		return e.evalIn(c, value)
	case model.OpContains:
		return e.evalContains(c, value)
	default:
		return Result{}, fmt.Errorf("operator %q is not a scalar operator", c.Op)
	}
}

func (e *TypedEvaluator) evalSetOp(c model.Condition, raw model.Scalar) (Result, error) {
	list, _ := toStringSlice(raw)
	switch c.Op {
	case model.OpHasTag:
		tag, _ := c.Value.(string)
		ok := contains(list, tag)
		return Result{Satisfied: ok, Reason: fmt.Sprintf("%s has_tag %q is %v (tags: %v)", c.Path, tag, ok, list)}, nil
	case model.OpLacksTag:
		tag, _ := c.Value.(string)
		ok := !contains(list, tag)
		return Result{Satisfied: ok, Reason: fmt.Sprintf("%s lacks_tag %q is %v (tags: %v)", c.Path, tag, ok, list)}, nil
	case model.OpNotIn:
		ok := !containsScalar(raw, c.Value)
		return Result{Satisfied: ok, Reason: fmt.Sprintf("%s not_in %v is %v (actual %v)", c.Path, c.Value, ok, raw)}, nil
	}
	return Result{}, fmt.Errorf("unreachable set op %q", c.Op)
}

func (e *TypedEvaluator) evalNumericCompare(c model.Condition, value model.Scalar) (Result, error) {
	lhs, err := toFloat(value)
	if err != nil {
		return Result{Satisfied: false, Reason: fmt.Sprintf("%s is not numeric (actual %v)", c.Path, value)}, nil
	}
	rhs, err := toFloat(c.Value)
	if err != nil {
		return Result{}, fmt.Errorf("condition on %s has non-numeric operand %v", c.Path, c.Value)
	}
	var ok bool
	switch c.Op {
	case model.OpLess:
		ok = lhs < rhs
	case model.OpLessEq:
		ok = lhs <= rhs
	case model.OpGreater:
		ok = lhs > rhs
	case model.OpGreaterEq:
		ok = lhs >= rhs
	}
	return Result{Satisfied: ok, Reason: fmt.Sprintf("%s %s %v is %v (actual %v)", c.Path, c.Op, c.Value, ok, lhs)}, nil
}

func (e *TypedEvaluator) evalIn(c model.Condition, value model.Scalar) (Result, error) {
	options, err := toStringSlice(c.Value)
	if err != nil {
		return Result{}, fmt.Errorf("condition on %s: in requires a list operand", c.Path)
	}
	str := fmt.Sprintf("%v", value)
	ok := contains(options, str)
	return Result{Satisfied: ok, Reason: fmt.Sprintf("%s in %v is %v (actual %v)", c.Path, options, ok, value)}, nil
}

func (e *TypedEvaluator) evalContains(c model.Condition, value model.Scalar) (Result, error) {
	ok := containsScalar(value, c.Value)
	return Result{Satisfied: ok, Reason: fmt.Sprintf("%s contains %v is %v (actual %v)", c.Path, c.Value, ok, value)}, nil
}

func toFloat(v model.Scalar) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("value %v is not a number", v)
	}
}

func toStringSlice(v model.Scalar) ([]string, error) {
	switch l := v.(type) {
	case []string:
		out := append([]string(nil), l...)
		sort.Strings(out)
		return out, nil
	case []model.Scalar:
		out := make([]string, 0, len(l))
		for _, item := range l {
			out = append(out, fmt.Sprintf("%v", item))
		}
		sort.Strings(out)
		return out, nil
	default:
		return nil, fmt.Errorf("value %v is not a list", v)
	}
}

func contains(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}

func containsScalar(list model.Scalar, target model.Scalar) bool {
	switch l := list.(type) {
	case []string:
		str, _ := target.(string)
		return contains(l, str)
	case []model.Scalar:
		for _, v := range l {
			if scalarEqual(v, target) {
				return true
			}
		}
		return false
	case string:
		str, _ := target.(string)
		return strings.Contains(l, str)
	default:
		return false
	}
}

func scalarEqual(a, b model.Scalar) bool {
	af, aerr := toFloat(a)
	bf, berr := toFloat(b)
	if aerr == nil && berr == nil {
		return af == bf
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
