// ABOUTME: Unit tests for session token signing and verification
// ABOUTME: Tests valid tokens, tampered tokens, foreign claims, and expiry

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T, secret string, now func() time.Time) *tokenSigner {
	t.Helper()
	signer, err := newTokenSigner([]byte(secret), now)
	require.NoError(t, err)
	return signer
}

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := newTestSigner(t, "test-secret", time.Now)

	token, issued, err := signer.issue(time.Hour)
	require.NoError(t, err)

	claims, err := signer.verify(token)
	require.NoError(t, err)
	assert.Equal(t, sessionSubject, claims.Subject)
	assert.Equal(t, issued.ID, claims.ID)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
}

func TestTokenSigner_KeyIsDerived(t *testing.T) {
	signer := newTestSigner(t, "test-secret", time.Now)
	assert.Len(t, signer.key, 32)
	assert.NotEqual(t, []byte("test-secret"), signer.key)

	again := newTestSigner(t, "test-secret", time.Now)
	assert.Equal(t, signer.key, again.key)
}

func TestTokenSigner_Rejects(t *testing.T) {
	signer := newTestSigner(t, "test-secret", time.Now)
	now := time.Now()

	sign := func(method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}
	valid := jwt.RegisteredClaims{
		Subject:   sessionSubject,
		ID:        "abc",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	good, _, err := signer.issue(time.Hour)
	require.NoError(t, err)
	other := newTestSigner(t, "other-secret", time.Now)
	foreign, _, err := other.issue(time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt-token"},
		{name: "malformed", token: "header.payload.signature"},
		{name: "tampered", token: tamper(good)},
		{name: "other secret", token: foreign},
		{name: "raw secret as key", token: sign(jwt.SigningMethodHS256, []byte("test-secret"), valid)},
		{name: "alg none", token: sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)},
		{name: "wrong subject", token: sign(jwt.SigningMethodHS256, signer.key, jwt.RegisteredClaims{
			Subject: "visitor", ID: "abc", ExpiresAt: valid.ExpiresAt,
		})},
		{name: "missing jti", token: sign(jwt.SigningMethodHS256, signer.key, jwt.RegisteredClaims{
			Subject: sessionSubject, ExpiresAt: valid.ExpiresAt,
		})},
		{name: "missing exp", token: sign(jwt.SigningMethodHS256, signer.key, jwt.RegisteredClaims{
			Subject: sessionSubject, ID: "abc",
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signer.verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

// tamper flips the first character of the signature segment.
func tamper(token string) string {
	dot := strings.LastIndex(token, ".")
	flipped := byte('A')
	if token[dot+1] == 'A' {
		flipped = 'B'
	}
	return token[:dot+1] + string(flipped) + token[dot+2:]
}

func TestTokenSigner_Expired(t *testing.T) {
	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	signer := newTestSigner(t, "test-secret", func() time.Time { return current })

	token, _, err := signer.issue(time.Minute)
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)
	_, err = signer.verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("verify() error = %v, want ErrExpiredToken", err)
	}
}
