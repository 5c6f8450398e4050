// Package effects implements ordered, atomic effect application
// (spec §4.5): applying a storylet's authored effect list to a cloned
// state, recording a per-path diff for each mutation, and aborting the
// entire tick if any effect fails.
package effects

import (
	"fmt"

	"github.com/pj4239460/story-graph-assistant/internal/direrr"
	"github.com/pj4239460/story-graph-assistant/internal/model"
	"github.com/pj4239460/story-graph-assistant/internal/state"
)

// Applier applies storylet effects to a state.Store.
type Applier struct{}

// New returns a stateless effect applier.
func New() *Applier {
	return &Applier{}
}

// ApplyResult is the outcome of applying one storylet's effect list:
// the diffs produced, in authored order.
type ApplyResult struct {
	Diffs []model.Diff
}

// Apply runs storyletID's effects against store in order. On the first
// failing effect it returns a *direrr.TickAbortedError identifying the
// storylet and effect index; per spec §4.5 the caller must then discard
// the entire cloned state and record no TickRecord for this tick — a
// partially-applied storylet is never observable.
func (a *Applier) Apply(store *state.Store, storyletID string, effectList []model.Effect) (ApplyResult, error) {
	result := ApplyResult{Diffs: make([]model.Diff, 0, len(effectList))}

	for i, eff := range effectList {
		diff, err := a.applyOne(store, eff)
		if err != nil {
			return ApplyResult{}, &direrr.TickAbortedError{
				StoryletID:  storyletID,
				EffectIndex: i,
				Reason:      err.Error(),
				Cause:       err,
			}
		}
		result.Diffs = append(result.Diffs, diff)
	}

	return result, nil
}

func (a *Applier) applyOne(store *state.Store, eff model.Effect) (model.Diff, error) {
	path, err := state.Parse(eff.Path)
	if err != nil {
		return model.Diff{}, err
	}

	before, beforeErr := store.Get(path)
	if beforeErr != nil {
		before = nil // absent path: recorded as nil in the diff, not an error yet
	}

	var applyErr error
	switch eff.Op {
	case model.EffectSet:
		applyErr = store.Set(path, eff.Value)
	case model.EffectAdd:
		applyErr = store.Add(path, eff.Value)
	case model.EffectMultiply:
		applyErr = store.Multiply(path, eff.Value)
	case model.EffectAppend:
		applyErr = store.Append(path, eff.Value)
	case model.EffectRemove:
		applyErr = store.Remove(path, eff.Value)
	default:
		applyErr = fmt.Errorf("unknown effect operator %q", eff.Op)
	}
	if applyErr != nil {
		return model.Diff{}, applyErr
	}

	after, err := store.Get(path)
	if err != nil {
		return model.Diff{}, fmt.Errorf("effect on %s applied but path unreadable afterward: %w", eff.Path, err)
	}

	return model.Diff{Path: eff.Path, Before: before, After: after}, nil
}
