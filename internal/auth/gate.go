// ABOUTME: Admin session gate: login with the shared secret, logout, authorize
// ABOUTME: Issues signed session tokens and remembers revoked ones until they expire

package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"strings"
	"time"
)

// DefaultSessionTTL is how long a session stays valid after login.
const DefaultSessionTTL = 24 * time.Hour

// Gate errors
var (
	// ErrInvalidCredential means the submitted password did not match.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrNotConfigured means no admin secret is set, so nobody can log in.
	ErrNotConfigured = errors.New("admin secret not configured")
)

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	// TTL is the lifetime the token was issued with.
	TTL time.Duration
}

// Authorizer decides whether a session token grants admin access.
type Authorizer interface {
	Authorize(token string) bool
}

// Gate guards the admin surface with a single shared secret.
type Gate struct {
	secretDigest [sha256.Size]byte
	configured   bool
	signer       *tokenSigner
	revoked      *revocationList
	ttl          time.Duration
	now          func() time.Time
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithSessionTTL overrides DefaultSessionTTL. Non-positive values are ignored.
func WithSessionTTL(ttl time.Duration) GateOption {
	return func(g *Gate) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithGateClock sets the clock used for issuing and checking tokens.
func WithGateClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		g.now = now
	}
}

// NewGate creates a gate for secret. Surrounding whitespace is ignored. An
// empty secret yields a gate that rejects every login with ErrNotConfigured.
func NewGate(secret string, opts ...GateOption) *Gate {
	g := &Gate{
		ttl: DefaultSessionTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	secret = strings.TrimSpace(secret)
	if secret != "" {
		// Reading 32 bytes from HKDF-SHA256 cannot fail.
		signer, err := newTokenSigner([]byte(secret), g.now)
		if err == nil {
			g.signer = signer
			g.secretDigest = sha256.Sum256([]byte(secret))
			g.configured = true
		}
	}

	g.revoked = newRevocationList(defaultMaxRevocations, g.now)
	return g
}

// Configured reports whether an admin secret is set.
func (g *Gate) Configured() bool {
	return g.configured
}

// Login checks password against the admin secret and starts a session.
func (g *Gate) Login(password string) (*Session, error) {
	if !g.configured {
		return nil, ErrNotConfigured
	}

	// Comparing digests keeps the comparison constant-time regardless of length.
	digest := sha256.Sum256([]byte(strings.TrimSpace(password)))
	if subtle.ConstantTimeCompare(digest[:], g.secretDigest[:]) != 1 {
		return nil, ErrInvalidCredential
	}

	token, claims, err := g.signer.issue(g.ttl)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		TTL:       g.ttl,
	}, nil
}

// Logout ends the session carried by token. Unknown, malformed, or expired
// tokens are ignored.
func (g *Gate) Logout(token string) {
	if !g.configured || token == "" {
		return
	}
	claims, err := g.signer.verify(token)
	if err != nil {
		return
	}
	g.revoked.Revoke(claims.ID, claims.ExpiresAt.Time)
}

// Authorize reports whether token is a live session issued by this gate.
func (g *Gate) Authorize(token string) bool {
	if !g.configured || token == "" {
		return false
	}
	claims, err := g.signer.verify(token)
	if err != nil {
		return false
	}
	return !g.revoked.IsRevoked(claims.ID)
}

// Close stops background work.
func (g *Gate) Close() {
	g.revoked.Close()
}
