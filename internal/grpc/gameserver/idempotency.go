package gameserver

import (
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

const (
	idempotencyTTL        = 24 * time.Hour
	idempotencyMaxEntries = 1000
)

// idempotencyKey identifies one move request of one player
type idempotencyKey struct {
	playerID  string
	requestID string
}

// idempotencyEntry stores a cached response with timestamp
type idempotencyEntry struct {
	response  *structpb.Struct
	createdAt time.Time
}

// IdempotencyManager remembers move responses by request id so a retried
// request does not move twice
type IdempotencyManager struct {
	cache map[idempotencyKey]*idempotencyEntry
	mu    sync.RWMutex
	now   func() time.Time
}

// NewIdempotencyManager creates an empty cache
func NewIdempotencyManager() *IdempotencyManager {
	return &IdempotencyManager{
		cache: make(map[idempotencyKey]*idempotencyEntry),
		now:   time.Now,
	}
}

// Check returns the cached response for the request, or nil. Requests
// without an id are never cached.
func (im *IdempotencyManager) Check(playerID, requestID string) *structpb.Struct {
	if requestID == "" {
		return nil
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	entry, ok := im.cache[idempotencyKey{playerID, requestID}]
	if !ok || im.now().Sub(entry.createdAt) > idempotencyTTL {
		return nil
	}
	return entry.response
}

// Store caches resp for the request
func (im *IdempotencyManager) Store(playerID, requestID string, resp *structpb.Struct) {
	if requestID == "" {
		return
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	im.cache[idempotencyKey{playerID, requestID}] = &idempotencyEntry{
		response:  resp,
		createdAt: im.now(),
	}

	if len(im.cache) > idempotencyMaxEntries {
		im.evictExpiredLocked()
	}
}

// Len returns the number of cached responses
func (im *IdempotencyManager) Len() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return len(im.cache)
}

// evictExpiredLocked drops entries older than the TTL. Must be called with mu held.
func (im *IdempotencyManager) evictExpiredLocked() {
	cutoff := im.now().Add(-idempotencyTTL)
	for key, entry := range im.cache {
		if entry.createdAt.Before(cutoff) {
			delete(im.cache, key)
		}
	}
}
