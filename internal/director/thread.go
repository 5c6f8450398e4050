package director

import (
	"sync"

	"github.com/pj4239460/story-graph-assistant/internal/history"
	"github.com/pj4239460/story-graph-assistant/internal/model"
)

// Thread owns one story thread's mutable state: its world/character
// snapshot and its tick history. Director never shares a Thread across
// goroutines without the caller's own synchronization — per spec §5,
// "nothing in the core is shared and mutable across threads" — but the
// registry below that maps thread ids to Threads is itself safe for
// concurrent access, the way the teacher's ExecutionState guards its
// node-tracking maps.
type Thread struct {
	ID      string
	State   *model.State
	History *history.History
}

// NewThread returns a thread seeded from project's seed state, or an
// empty state if the project carries none.
func NewThread(id string, seed *model.State) *Thread {
	st := seed
	if st == nil {
		st = model.NewState()
	} else {
		st = st.Clone()
	}
	return &Thread{ID: id, State: st, History: history.New()}
}

// Registry is a concurrency-safe map of thread id to Thread, mirroring
// the teacher's pattern of a mutex-guarded map with paired
// getter/setter methods.
type Registry struct {
	mu      sync.RWMutex
	threads map[string]*Thread
}

// NewRegistry returns an empty thread registry.
func NewRegistry() *Registry {
	return &Registry{threads: make(map[string]*Thread)}
}

// Get returns the thread for id, and whether it was found.
func (r *Registry) Get(id string) (*Thread, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.threads[id]
	return t, ok
}

// GetOrCreate returns the existing thread for id, or creates and stores
// a new one seeded from seed.
func (r *Registry) GetOrCreate(id string, seed *model.State) *Thread {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.threads[id]; ok {
		return t
	}
	t := NewThread(id, seed)
	r.threads[id] = t
	return t
}

// Set stores t under its own ID, overwriting any existing thread.
func (r *Registry) Set(t *Thread) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.threads[t.ID] = t
}

// Delete removes a thread from the registry.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.threads, id)
}
