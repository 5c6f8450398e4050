// Package history implements TickHistory (spec §3/§4.6 stage 9): the
// append-only per-thread log of ticks plus the derived indices the
// selection pipeline consults at its ordering, cooldown, fallback and
// diversity stages.
package history

import "github.com/pj4239460/story-graph-assistant/internal/model"

// History is the append-only tick log for one story thread.
type History struct {
	Records       []model.TickRecord
	LastTriggered map[string]int
	FiredEver     map[string]bool
	IdleCount     int
}

// New returns an empty history with zero idle count.
func New() *History {
	return &History{
		LastTriggered: make(map[string]int),
		FiredEver:     make(map[string]bool),
	}
}

// NextTickIndex is the 0-based index the next Append call will use.
func (h *History) NextTickIndex() int {
	return len(h.Records)
}

// HasFiredEver reports whether id has ever been selected.
func (h *History) HasFiredEver(id string) bool {
	return h.FiredEver[id]
}

// TicksSinceFired returns the number of ticks since id last fired, and
// whether it has ever fired at all. currentTick is the tick about to
// run, so a storylet that fired at currentTick-1 has TicksSinceFired==1.
func (h *History) TicksSinceFired(id string, currentTick int) (int, bool) {
	last, ok := h.LastTriggered[id]
	if !ok {
		return 0, false
	}
	return currentTick - last, true
}

// RecentSelectedIDs returns the storylet ids selected (including
// fallbacks) across the last window ticks, oldest first, with
// repetition — used by the diversity-penalty stage to count recent tag
// occurrences. window <= 0 yields no history at all.
func (h *History) RecentSelectedIDs(window int) []string {
	if window <= 0 || len(h.Records) == 0 {
		return nil
	}
	start := len(h.Records) - window
	if start < 0 {
		start = 0
	}
	var ids []string
	for _, rec := range h.Records[start:] {
		for _, sel := range rec.Selected {
			ids = append(ids, sel.StoryletID)
		}
	}
	return ids
}

// Append records one tick's outcome, updating LastTriggered, FiredEver,
// and IdleCount per spec §4.6 stage 9: idle count resets to 0 if any
// non-fallback storylet fired this tick, else increments.
func (h *History) Append(record model.TickRecord, anyRegularFired bool) {
	for _, sel := range record.Selected {
		h.LastTriggered[sel.StoryletID] = record.TickIndex
		h.FiredEver[sel.StoryletID] = true
	}
	if anyRegularFired {
		h.IdleCount = 0
	} else {
		h.IdleCount++
	}
	record.IdleTickCountAfter = h.IdleCount
	h.Records = append(h.Records, record)
}

// Truncate discards every record with TickIndex >= keepBefore and
// rebuilds the derived indices from the retained prefix.
func (h *History) Truncate(keepBefore int) {
	if keepBefore >= len(h.Records) {
		return
	}
	if keepBefore < 0 {
		keepBefore = 0
	}
	h.Records = h.Records[:keepBefore]
	h.rebuildIndices()
}

func (h *History) rebuildIndices() {
	h.LastTriggered = make(map[string]int)
	h.FiredEver = make(map[string]bool)
	h.IdleCount = 0
	for _, rec := range h.Records {
		for _, sel := range rec.Selected {
			h.LastTriggered[sel.StoryletID] = rec.TickIndex
			h.FiredEver[sel.StoryletID] = true
		}
		h.IdleCount = rec.IdleTickCountAfter
	}
}

// Clone returns a deep, independent copy.
func (h *History) Clone() *History {
	out := &History{
		Records:       append([]model.TickRecord(nil), h.Records...),
		LastTriggered: make(map[string]int, len(h.LastTriggered)),
		FiredEver:     make(map[string]bool, len(h.FiredEver)),
		IdleCount:     h.IdleCount,
	}
	for k, v := range h.LastTriggered {
		out.LastTriggered[k] = v
	}
	for k, v := range h.FiredEver {
		out.FiredEver[k] = v
	}
	return out
}
