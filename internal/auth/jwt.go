// Package auth provides the session cookie signer, bearer-token sealing and
// the admin route guard.
//
// SESSION COOKIE FLOW:
//  1. A browser without a valid cookie gets a fresh session id (xid)
//  2. The id is signed into a short JWT and stored in the "sid" cookie
//  3. On later requests the JWT is verified and the id is used to load the
//     session row (bearer token + theme) from sqlite
//
// The JWT carries nothing but the session id, so a stolen database alone is
// not enough to forge a cookie and a stolen cookie alone reveals nothing.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "portfolio-cms"

// CookieSigner signs and verifies session ids.
type CookieSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewCookieSigner derives its HMAC key from secret, so the same
// SESSION_SECRET can also feed the token sealer without key reuse.
func NewCookieSigner(secret string, ttl time.Duration) (*CookieSigner, error) {
	key, err := DeriveKey(secret, "session-cookie")
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, errors.New("auth: cookie lifetime must be positive")
	}
	return &CookieSigner{secret: key[:], ttl: ttl}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate signs sessionID with the signer's lifetime.
func (s *CookieSigner) Generate(sessionID string) (string, error) {
	return s.GenerateWithDuration(sessionID, s.ttl)
}

// GenerateWithDuration signs sessionID with a custom lifetime.
// Negative durations produce already-expired tokens, which tests rely on.
func (s *CookieSigner) GenerateWithDuration(sessionID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session cookie: %w", err)
	}

	return signed, nil
}

// Validate verifies the signature, expiry, issuer and algorithm and
// returns the session id.
func (s *CookieSigner) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: session cookie expired")
		}
		return "", fmt.Errorf("auth: invalid session cookie: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid session cookie claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: session cookie has no subject")
	}

	return c.Subject, nil
}
