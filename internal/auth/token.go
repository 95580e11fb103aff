// ABOUTME: Signed session tokens for the admin gate
// ABOUTME: HS256 JWTs with a key derived from the admin secret via HKDF

package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

// sessionSubject is the only principal the gate issues tokens for.
const sessionSubject = "admin"

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// hkdfInfo binds derived keys to their use so the raw admin secret never
// signs anything directly.
var hkdfInfo = []byte("contact-inbox admin session v1")

// sessionClaims is the token payload. jti identifies a session for logout.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// tokenSigner issues and verifies session tokens.
type tokenSigner struct {
	key []byte
	now func() time.Time
}

// newTokenSigner derives a 32-byte HMAC key from secret.
func newTokenSigner(secret []byte, now func() time.Time) (*tokenSigner, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, hkdfInfo), key); err != nil {
		return nil, fmt.Errorf("deriving session key: %w", err)
	}
	return &tokenSigner{key: key, now: now}, nil
}

// issue signs a new token valid for ttl and returns it with its claims.
func (s *tokenSigner) issue(ttl time.Duration) (string, *sessionClaims, error) {
	now := s.now()
	claims := &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionSubject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", nil, fmt.Errorf("signing session token: %w", err)
	}
	return token, claims, nil
}

// verify checks signature, subject, and expiry and returns the claims.
func (s *tokenSigner) verify(tokenString string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(sessionSubject),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrInvalidToken)
	}
	return claims, nil
}
