// ABOUTME: Bounded list of revoked session ids that forgets entries once they expire
// ABOUTME: Backs logout so a signed token stops working before its natural expiry

package auth

import (
	"container/list"
	"sync"
	"time"
)

// defaultMaxRevocations caps memory for revoked sessions. Revocations are only
// kept until the token would have expired anyway.
const defaultMaxRevocations = 10000

type revocation struct {
	expiresAt time.Time
	element   *list.Element
}

// revocationList tracks revoked token ids until their expiry. Entries are
// kept in insertion order; since every session has the same lifetime this is
// also expiry order, so the oldest entry is the first one safe to forget.
type revocationList struct {
	mu      sync.RWMutex
	entries map[string]*revocation
	order   *list.List // ids, oldest at front
	maxSize int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// newRevocationList creates a list and starts its background sweeper.
func newRevocationList(maxSize int, now func() time.Time) *revocationList {
	r := &revocationList{
		entries: make(map[string]*revocation),
		order:   list.New(),
		maxSize: maxSize,
		now:     now,
		done:    make(chan struct{}),
	}
	go r.cleanup()
	return r
}

// Revoke records id as revoked until expiresAt. Already-expired ids are ignored.
func (r *revocationList) Revoke(id string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !expiresAt.After(now) {
		return
	}

	if entry, ok := r.entries[id]; ok {
		if expiresAt.After(entry.expiresAt) {
			entry.expiresAt = expiresAt
		}
		return
	}

	if len(r.entries) >= r.maxSize {
		r.sweepLocked(now)
	}
	if len(r.entries) >= r.maxSize {
		r.evictOldest()
	}

	r.entries[id] = &revocation{
		expiresAt: expiresAt,
		element:   r.order.PushBack(id),
	}
}

// IsRevoked reports whether id was revoked and has not yet expired.
func (r *revocationList) IsRevoked(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return false
	}
	return r.now().Before(entry.expiresAt)
}

// Len returns the number of tracked revocations, expired or not.
func (r *revocationList) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// evictOldest removes the front entry. Must be called with mu held.
func (r *revocationList) evictOldest() {
	front := r.order.Front()
	if front == nil {
		return
	}
	id, _ := front.Value.(string)
	r.order.Remove(front)
	delete(r.entries, id)
}

func (r *revocationList) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.done:
			return
		}
	}
}

// sweep drops every expired entry.
func (r *revocationList) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(r.now())
}

func (r *revocationList) sweepLocked(now time.Time) {
	for id, entry := range r.entries {
		if !now.Before(entry.expiresAt) {
			r.order.Remove(entry.element)
			delete(r.entries, id)
		}
	}
}

// Close stops the sweeper. It is safe to call multiple times.
func (r *revocationList) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		close(r.done)
		r.closed = true
	}
}
