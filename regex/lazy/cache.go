package lazy

import "sync"

// Cache stores determinized states keyed by the NFA state set (plus
// look-around context) they close over. When full it is cleared and
// rebuilt rather than evicting individual entries, matching the lazy
// DFA's "clear and continue" strategy.
type Cache struct {
	mu        sync.RWMutex
	states    map[StateKey]*State
	maxStates uint32
	nextID    StateID

	clearCount int
	hits       uint64
	misses     uint64

	// stateSaverKey/stateSaver hold the one state that must survive a
	// ClearKeepMemory call: the state the in-flight search is currently
	// sitting on. Without this, clearing mid-search would invalidate the
	// caller's current *State pointer along with everything else.
	stateSaverKey   StateKey
	stateSaver      *State
	hasStateSaver   bool
}

func NewCache(maxStates uint32) *Cache {
	return &Cache{
		states:    make(map[StateKey]*State, maxStates),
		maxStates: maxStates,
		nextID:    StartState,
	}
}

func (c *Cache) Get(key StateKey) (*State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.states[key]
	if ok {
		c.hits++
	}
	return s, ok
}

func (c *Cache) Insert(key StateKey, state *State) (StateID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.states[key]; ok {
		c.hits++
		return existing.ID(), nil
	}
	if uint32(len(c.states)) >= c.maxStates {
		c.misses++
		return InvalidState, ErrCacheFull
	}
	if state.id == InvalidState {
		state.id = c.nextID
		c.nextID++
	}
	c.states[key] = state
	c.misses++
	return state.ID(), nil
}

func (c *Cache) GetOrInsert(key StateKey, state *State) (*State, bool, error) {
	if existing, ok := c.Get(key); ok {
		return existing, true, nil
	}
	id, err := c.Insert(key, state)
	if err != nil {
		return nil, false, err
	}
	c.mu.RLock()
	inserted := c.states[key]
	c.mu.RUnlock()
	if inserted.ID() != id {
		panic("lazy: cache state ID mismatch")
	}
	return inserted, false, nil
}

func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.states)
}

func (c *Cache) IsFull() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return uint32(len(c.states)) >= c.maxStates
}

// SaveState designates the state the caller is currently sitting on so it
// survives the next ClearKeepMemory.
func (c *Cache) SaveState(key StateKey, state *State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateSaverKey = key
	c.stateSaver = state
	c.hasStateSaver = true
}

// ClearKeepMemory clears every cached state except the saved one (if any),
// which is reinserted under a fresh ID. It returns that state's new ID so
// the caller can resume the search without restarting from byte zero.
func (c *Cache) ClearKeepMemory() (savedID StateID, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.states {
		delete(c.states, k)
	}
	c.nextID = StartState
	c.clearCount++

	if c.hasStateSaver {
		c.stateSaver.id = c.nextID
		c.nextID++
		c.states[c.stateSaverKey] = c.stateSaver
		return c.stateSaver.id, true
	}
	return InvalidState, false
}

func (c *Cache) ClearCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clearCount
}

func (c *Cache) ResetClearCount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearCount = 0
	c.hasStateSaver = false
}

// CacheMetrics is a point-in-time snapshot of cache performance, exposed
// so callers can size MaxStates for their workload.
type CacheMetrics struct {
	Size       int
	MaxStates  uint32
	Hits       uint64
	Misses     uint64
	HitRate    float64
	ClearCount int
}

func (c *Cache) Metrics() CacheMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := c.hits + c.misses
	var rate float64
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return CacheMetrics{
		Size:       len(c.states),
		MaxStates:  c.maxStates,
		Hits:       c.hits,
		Misses:     c.misses,
		HitRate:    rate,
		ClearCount: c.clearCount,
	}
}
