// ABOUTME: Tests for the session cookie helpers and RequireSession middleware
// ABOUTME: Covers cookie attributes, token extraction, and the 401 response

package auth

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", SessionCookieName)
	return nil
}

func TestSetSessionCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
	rec := httptest.NewRecorder()

	SetSessionCookie(rec, req, &Session{Token: "tok", TTL: DefaultSessionTTL}, false)

	c := findCookie(t, rec)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 86400, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.False(t, c.Secure)
}

func TestSetSessionCookie_Secure(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		rec := httptest.NewRecorder()
		SetSessionCookie(rec, req, &Session{Token: "tok", TTL: time.Hour}, true)

		c := findCookie(t, rec)
		assert.True(t, c.Secure)
		assert.Equal(t, 3600, c.MaxAge)
	})

	t.Run("tls request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		req.TLS = &tls.ConnectionState{}
		rec := httptest.NewRecorder()
		SetSessionCookie(rec, req, &Session{Token: "tok"}, false)

		c := findCookie(t, rec)
		assert.True(t, c.Secure)
		assert.Equal(t, 86400, c.MaxAge)
	})
}

func TestClearSessionCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/login", nil)
	rec := httptest.NewRecorder()

	ClearSessionCookie(rec, req, false)

	c := findCookie(t, rec)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
	assert.True(t, c.HttpOnly)
}

func TestSessionToken(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{name: "none"},
		{name: "cookie", cookie: "from-cookie", want: "from-cookie"},
		{name: "bearer", header: "Bearer from-header", want: "from-header"},
		{name: "cookie wins", cookie: "from-cookie", header: "Bearer from-header", want: "from-cookie"},
		{name: "basic auth ignored", header: "Basic dXNlcjpwYXNz"},
		{name: "empty bearer", header: "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, SessionToken(req))
		})
	}
}

func TestRequireSession(t *testing.T) {
	gate := newTestGate(t, "hunter2")
	session, err := gate.Login("hunter2")
	require.NoError(t, err)

	called := false
	handler := RequireSession(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no session", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.False(t, called)
	})

	t.Run("valid cookie", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})

	t.Run("revoked cookie", func(t *testing.T) {
		other, err := gate.Login("hunter2")
		require.NoError(t, err)
		gate.Logout(other.Token)

		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: other.Token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})
}
