package condition

import (
	"container/list"
	"sync"

	"github.com/expr-lang/expr/vm"
)

// programCache is a thread-safe LRU cache for compiled expr-lang
// programs, adapted from the workflow engine's condition cache to
// cache authoring-lint predicates instead of DAG edge conditions.
type programCache struct {
	capacity int
	cache    map[string]*list.Element
	lruList  *list.List
	mu       sync.RWMutex
}

type programCacheEntry struct {
	key     string
	program *vm.Program
}

func newProgramCache(capacity int) *programCache {
	if capacity <= 0 {
		capacity = 100
	}
	return &programCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lruList:  list.New(),
	}
}

func (c *programCache) Get(source string) (*vm.Program, bool) {
	// Get reorders the LRU list, so it needs the write lock.
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, found := c.cache[source]; found {
		c.lruList.MoveToFront(element)
		return element.Value.(*programCacheEntry).program, true
	}
	return nil, false
}

func (c *programCache) Put(source string, program *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, found := c.cache[source]; found {
		c.lruList.MoveToFront(element)
		element.Value.(*programCacheEntry).program = program
		return
	}

	entry := &programCacheEntry{key: source, program: program}
	element := c.lruList.PushFront(entry)
	c.cache[source] = element

	if c.lruList.Len() > c.capacity {
		c.evictOldest()
	}
}

func (c *programCache) evictOldest() {
	oldest := c.lruList.Back()
	if oldest == nil {
		return
	}
	c.lruList.Remove(oldest)
	entry := oldest.Value.(*programCacheEntry)
	delete(c.cache, entry.key)
}

func (c *programCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lruList.Len()
}
