package reminder

import (
	"context"
	"sync"
)

// PlanCache persists the per-user plan map between syncs so a fixed due
// date keeps producing the same fire time. Losing the cache only costs that
// stability, never correctness, so implementations may fail soft.
//
// Save has replace-all semantics: the stored map becomes exactly the given
// one.
type PlanCache interface {
	Load(ctx context.Context, userID string) (map[string]Plan, error)
	Save(ctx context.Context, userID string, plans map[string]Plan) error
}

// MemoryPlanCache is a process-local PlanCache. It backs tests and runs
// when no Redis address is configured.
type MemoryPlanCache struct {
	mu    sync.RWMutex
	plans map[string]map[string]Plan
}

func NewMemoryPlanCache() *MemoryPlanCache {
	return &MemoryPlanCache{plans: make(map[string]map[string]Plan)}
}

func (c *MemoryPlanCache) Load(_ context.Context, userID string) (map[string]Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]Plan, len(c.plans[userID]))
	for id, p := range c.plans[userID] {
		out[id] = p
	}
	return out, nil
}

func (c *MemoryPlanCache) Save(_ context.Context, userID string, plans map[string]Plan) error {
	copied := make(map[string]Plan, len(plans))
	for id, p := range plans {
		copied[id] = p
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans[userID] = copied
	return nil
}
