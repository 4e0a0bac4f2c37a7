package fsimport

import (
	"sync"

	"github.com/google/uuid"
)

// requestCache deduplicates fund/description lookups within one Reconcile
// call. It is a latency optimization only: correctness against concurrent
// batches rests on the database's natural-key constraints. Never shared
// across invocations.
type requestCache struct {
	mu    sync.RWMutex
	funds map[string]uuid.UUID
	descs map[string]uuid.UUID
}

func newRequestCache() *requestCache {
	return &requestCache{
		funds: make(map[string]uuid.UUID),
		descs: make(map[string]uuid.UUID),
	}
}

func fundKey(archiveID uuid.UUID, fundCode string) string {
	return archiveID.String() + "|" + fundCode
}

func descKey(archiveID uuid.UUID, fundCode, descCode string) string {
	return fundKey(archiveID, fundCode) + "|" + descCode
}

func (c *requestCache) setFund(key string, id uuid.UUID) {
	c.mu.Lock()
	c.funds[key] = id
	c.mu.Unlock()
}

func (c *requestCache) fund(key string) (uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.funds[key]
	return id, ok
}

func (c *requestCache) setDescription(key string, id uuid.UUID) {
	c.mu.Lock()
	c.descs[key] = id
	c.mu.Unlock()
}

func (c *requestCache) description(key string) (uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.descs[key]
	return id, ok
}

func (c *requestCache) purge() {
	c.mu.Lock()
	c.funds = make(map[string]uuid.UUID)
	c.descs = make(map[string]uuid.UUID)
	c.mu.Unlock()
}
