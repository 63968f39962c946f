package compensation

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/ignatzorin/shiftboard-backend/internal/domain/compensation"
	"github.com/ignatzorin/shiftboard-backend/internal/domain/valueobject"
)

// Cache хранит рассчитанную оплату с TTL. Ключ включает updated_at цели,
// поэтому любое изменение цели даёт новый ключ и старое значение просто истекает.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	result    *domain.Result
	expiresAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{entries: make(map[string]cacheEntry), ttl: ttl}
}

func cacheKey(kind valueobject.TargetKind, id uuid.UUID, updatedAt time.Time) string {
	return string(kind) + ":" + id.String() + ":" + strconv.FormatInt(updatedAt.UnixNano(), 10)
}

func (c *Cache) Get(key string) (*domain.Result, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.result, true
}

func (c *Cache) Set(key string, res *domain.Result) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{result: res, expiresAt: time.Now().Add(c.ttl)}
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup удаляет истёкшие записи раз в interval до отмены ctx.
func (c *Cache) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.evictExpired(time.Now())
		}
	}
}

func (c *Cache) evictExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
