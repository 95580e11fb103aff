// Package auth guards the admin surface of contact-inbox.
//
// # Model
//
// There is exactly one administrator, identified by knowledge of a shared
// secret (the ADMIN setting). A Gate compares a submitted password against
// that secret and, on a match, issues a Session: a signed token valid for
// DefaultSessionTTL unless overridden with WithSessionTTL.
//
//	gate := auth.NewGate(cfg.Admin.Secret)
//	defer gate.Close()
//
//	session, err := gate.Login(password)
//	switch {
//	case errors.Is(err, auth.ErrNotConfigured):
//		// no secret set; nobody can log in
//	case errors.Is(err, auth.ErrInvalidCredential):
//		// wrong password
//	}
//
// # Tokens
//
// Tokens are HS256 JWTs with subject "admin", a random jti, iat and exp. The
// HMAC key is derived from the secret with HKDF-SHA256, so sessions survive a
// restart and changing the secret invalidates all of them. Expiry is checked on
// every Authorize call.
//
// Logout records the token's jti in a revocation list until the token would
// have expired, so a logged-out token is rejected even though its signature is
// still valid. The list lives in memory; a restart forgets revocations.
//
// # HTTP
//
// SetSessionCookie and ClearSessionCookie manage the admin_session cookie
// (HttpOnly, SameSite=Strict, Secure over TLS). RequireSession wraps admin
// handlers and answers 401 when the cookie (or an Authorization bearer header)
// does not carry a live session.
package auth
