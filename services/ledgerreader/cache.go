package ledgerreader

import "sync"

type cacheEntry struct {
	cycle   uint64
	outcome *ReadOutcome
}

// ReadCache holds read outcomes keyed by descriptor, scoped to a single refresh cycle.
// Starting a newer cycle invalidates everything older; a cycle only ever sees its own entries.
type ReadCache struct {
	mu struct {
		sync.Mutex
		newestCycle uint64
		entries     map[string]*cacheEntry
	}
}

func NewReadCache() *ReadCache {
	c := &ReadCache{}
	c.mu.entries = make(map[string]*cacheEntry)
	return c
}

// BeginCycle drops entries older than cycle. Beginning a cycle older than the newest is a no-op.
func (c *ReadCache) BeginCycle(cycle uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cycle <= c.mu.newestCycle {
		return
	}
	c.mu.newestCycle = cycle
	for key, entry := range c.mu.entries {
		if entry.cycle < cycle {
			delete(c.mu.entries, key)
		}
	}
}

// Put is ignored for cycles that were already superseded
func (c *ReadCache) Put(cycle uint64, d *ReadDescriptor, outcome *ReadOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cycle < c.mu.newestCycle {
		return
	}
	c.mu.entries[d.Key()] = &cacheEntry{cycle: cycle, outcome: outcome}
}

func (c *ReadCache) Get(cycle uint64, d *ReadDescriptor) (*ReadOutcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.mu.entries[d.Key()]
	if !found || entry.cycle != cycle {
		return nil, false
	}
	return entry.outcome, true
}

func (c *ReadCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mu.entries)
}
