package condition

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// JudgeCache is a thread-safe LRU cache of NLJudge verdicts, keyed by a
// content hash of (conditionText, stateContext) per spec §4.3: "the
// cache key is a content hash of the judge's input, not the tick
// index" — so a verdict survives across ticks and reloads as long as
// the input bytes are unchanged.
type JudgeCache struct {
	capacity int
	cache    map[string]*list.Element
	lruList  *list.List
	mu       sync.RWMutex

	hits   int64
	misses int64
}

type judgeCacheEntry struct {
	key   string
	value Judgment
}

// NewJudgeCache returns an LRU judge-result cache with the given
// capacity; capacity <= 0 falls back to a sane default.
func NewJudgeCache(capacity int) *JudgeCache {
	if capacity <= 0 {
		capacity = 500
	}
	return &JudgeCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lruList:  list.New(),
	}
}

// Key computes the content-hash cache key for a judge call.
func Key(conditionText, stateContext string) string {
	h := sha256.New()
	h.Write([]byte(conditionText))
	h.Write([]byte{0})
	h.Write([]byte(stateContext))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached judgment for key, if present.
func (c *JudgeCache) Get(key string) (Judgment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, found := c.cache[key]; found {
		c.lruList.MoveToFront(element)
		c.hits++
		return element.Value.(*judgeCacheEntry).value, true
	}
	c.misses++
	return Judgment{}, false
}

// Put stores value under key, evicting the least recently used entry
// if the cache is over capacity.
func (c *JudgeCache) Put(key string, value Judgment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, found := c.cache[key]; found {
		c.lruList.MoveToFront(element)
		element.Value.(*judgeCacheEntry).value = value
		return
	}

	entry := &judgeCacheEntry{key: key, value: value}
	element := c.lruList.PushFront(entry)
	c.cache[key] = element

	if c.lruList.Len() > c.capacity {
		c.evictOldest()
	}
}

func (c *JudgeCache) evictOldest() {
	oldest := c.lruList.Back()
	if oldest == nil {
		return
	}
	c.lruList.Remove(oldest)
	entry := oldest.Value.(*judgeCacheEntry)
	delete(c.cache, entry.key)
}

// Len returns the number of cached entries.
func (c *JudgeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lruList.Len()
}

// Stats returns (hits, misses) observed so far, used by tests asserting
// cache behavior.
func (c *JudgeCache) Stats() (hits int64, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Clear empties the cache.
func (c *JudgeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*list.Element)
	c.lruList = list.New()
}

// CachedJudge wraps an NLJudge with a JudgeCache, so repeated
// evaluations of the same (conditionText, stateContext) pair across
// ticks never re-invoke the underlying judge.
type CachedJudge struct {
	Inner NLJudge
	Cache *JudgeCache
}

// NewCachedJudge wraps inner with an LRU cache of the given capacity.
func NewCachedJudge(inner NLJudge, capacity int) *CachedJudge {
	return &CachedJudge{Inner: inner, Cache: NewJudgeCache(capacity)}
}

// Judge satisfies NLJudge: a cache hit short-circuits the inner judge
// entirely, so a flaky or slow external judge is only ever consulted
// once per distinct (conditionText, stateContext) pair.
func (c *CachedJudge) Judge(ctx context.Context, conditionText, stateContext string) (Judgment, error) {
	key := Key(conditionText, stateContext)
	if cached, ok := c.Cache.Get(key); ok {
		return cached, nil
	}
	result, err := c.Inner.Judge(ctx, conditionText, stateContext)
	if err != nil {
		return Judgment{}, err
	}
	c.Cache.Put(key, result)
	return result, nil
}
