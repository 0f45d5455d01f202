package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload the backend puts in access tokens.
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// InspectToken decodes a JWT without verifying its signature. The gateway is
// a client: it cannot verify tokens it did not sign, but the subject, role,
// and expiry are still useful for display and for skipping requests that are
// guaranteed to 401.
func InspectToken(tokenStr string) (TokenClaims, error) {
	var claims TokenClaims
	if tokenStr == "" {
		return claims, errors.New("empty token")
	}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return TokenClaims{}, err
	}
	return claims, nil
}

// TokenExpired reports whether the stored access token carries an expiry in
// the past. An unparseable or claim-less token is not treated as expired;
// the server stays the authority via 401.
func (s *Store) TokenExpired(now time.Time) bool {
	claims, err := InspectToken(s.Token())
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Before(now)
}
