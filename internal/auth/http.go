// ABOUTME: HTTP glue for admin sessions: the session cookie and the route guard
// ABOUTME: Reads the token from the admin_session cookie or an Authorization bearer header

package auth

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the admin session token.
const SessionCookieName = "admin_session"

// SetSessionCookie stores session in an HTTP-only, same-site strict cookie.
// The cookie is marked Secure when the request arrived over TLS or secure is set.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, session *Session, secure bool) {
	maxAge := int(session.TTL / time.Second)
	if maxAge <= 0 {
		maxAge = int(DefaultSessionTTL / time.Second)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure || r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter, r *http.Request, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure || r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// SessionToken returns the session token from the request, or "" if none.
// The cookie wins over an Authorization header.
func SessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return extractBearerToken(r.Header.Get("Authorization"))
}

// extractBearerToken returns the token from a "Bearer <token>" header value.
func extractBearerToken(authHeader string) string {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// RequireSession rejects requests without a live admin session with
// 401 {"error":"Unauthorized"}.
func RequireSession(gate Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gate.Authorize(SessionToken(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
