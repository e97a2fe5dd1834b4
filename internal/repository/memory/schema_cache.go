package memory

import (
	"sync"
	"time"

	"pattern-sphere-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SchemaCache remembers the resolved feature set of each template. Services
// flush it whenever a feature, template or association changes, and so does
// the relay when another instance reports such a change.
//
// Every Flush starts a new generation. A reader that loaded a feature set
// under an older generation may not store it.
type SchemaCache struct {
	cache *cache.Cache

	mu  sync.Mutex
	gen uint64
}

func NewSchemaCache(ttl time.Duration) *SchemaCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SchemaCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

// Generation is captured before loading a feature set and handed to
// SetIfCurrent afterwards.
func (c *SchemaCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetIfCurrent stores features unless the cache was flushed since gen.
func (c *SchemaCache) SetIfCurrent(templateId uuid.UUID, features []*entity.Feature, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.set(templateId, features)
	return true
}

func (c *SchemaCache) Set(templateId uuid.UUID, features []*entity.Feature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(templateId, features)
}

func (c *SchemaCache) set(templateId uuid.UUID, features []*entity.Feature) {
	rows := make([]entity.Feature, len(features))
	for i, f := range features {
		rows[i] = *f
	}
	c.cache.Set(templateId.String(), rows, cache.DefaultExpiration)
}

// Get returns fresh copies so callers may modify them.
func (c *SchemaCache) Get(templateId uuid.UUID) ([]*entity.Feature, bool) {
	x, found := c.cache.Get(templateId.String())
	if !found {
		return nil, false
	}
	rows := x.([]entity.Feature)
	out := make([]*entity.Feature, len(rows))
	for i := range rows {
		f := rows[i]
		out[i] = &f
	}
	return out, true
}

func (c *SchemaCache) Delete(templateId uuid.UUID) {
	c.cache.Delete(templateId.String())
}

func (c *SchemaCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.cache.Flush()
}
