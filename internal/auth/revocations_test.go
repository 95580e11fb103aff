// ABOUTME: Tests for the revoked-session list
// ABOUTME: Checks expiry, sweeping, capacity eviction, and Close

package auth

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRevocationList_RevokeAndExpire(t *testing.T) {
	clock := newFakeClock()
	r := newRevocationList(10, clock.Now)
	defer r.Close()

	r.Revoke("a", clock.Now().Add(time.Hour))
	assert.True(t, r.IsRevoked("a"))
	assert.False(t, r.IsRevoked("b"))

	clock.Advance(time.Hour)
	assert.False(t, r.IsRevoked("a"), "revocation ends when the token would have expired")
	assert.Equal(t, 1, r.Len())

	r.sweep()
	assert.Zero(t, r.Len())
}

func TestRevocationList_IgnoresExpired(t *testing.T) {
	clock := newFakeClock()
	r := newRevocationList(10, clock.Now)
	defer r.Close()

	r.Revoke("old", clock.Now().Add(-time.Second))
	assert.Zero(t, r.Len())
}

func TestRevocationList_RevokeTwiceKeepsLaterExpiry(t *testing.T) {
	clock := newFakeClock()
	r := newRevocationList(10, clock.Now)
	defer r.Close()

	r.Revoke("a", clock.Now().Add(2*time.Hour))
	r.Revoke("a", clock.Now().Add(time.Hour))
	assert.Equal(t, 1, r.Len())

	clock.Advance(90 * time.Minute)
	assert.True(t, r.IsRevoked("a"))
}

func TestRevocationList_Capacity(t *testing.T) {
	clock := newFakeClock()
	r := newRevocationList(3, clock.Now)
	defer r.Close()

	// expired entries are swept before anything live is evicted
	r.Revoke("short", clock.Now().Add(time.Minute))
	clock.Advance(2 * time.Minute)
	for i := 0; i < 3; i++ {
		r.Revoke(fmt.Sprintf("live-%d", i), clock.Now().Add(time.Hour))
	}
	assert.Equal(t, 3, r.Len())
	for i := 0; i < 3; i++ {
		assert.True(t, r.IsRevoked(fmt.Sprintf("live-%d", i)))
	}

	// when everything is live, the oldest goes first
	r.Revoke("newest", clock.Now().Add(time.Hour))
	assert.Equal(t, 3, r.Len())
	assert.False(t, r.IsRevoked("live-0"))
	assert.True(t, r.IsRevoked("newest"))
}

func TestRevocationList_CloseIdempotent(t *testing.T) {
	r := newRevocationList(1, time.Now)
	r.Close()
	r.Close()
}
