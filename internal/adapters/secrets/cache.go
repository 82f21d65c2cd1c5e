// Package secrets provides backends for the merchant credentials: AWS
// Secrets Manager and HashiCorp Vault. Credentials resolved here feed
// the gateway security hashes, so a wrong value surfaces as a rejected
// hash rather than an obvious startup failure; both providers fail
// loudly on any lookup problem.
package secrets

import (
	"sync"
	"time"
)

// secretCache is a TTL cache shared by the providers. Credentials are
// read on every hash computation path at startup and on config reload,
// not per request, so a short TTL is enough.
type secretCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

func newSecretCache(ttl time.Duration) *secretCache {
	return &secretCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *secretCache) get(key string) (string, bool) {
	if c.ttl <= 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return entry.value, true
}

func (c *secretCache) set(key, value string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiresAt: time.Now().Add(c.ttl)}
}
