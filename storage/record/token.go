package record

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// tokenExpiry reads the exp claim off a bearer token without verifying its
// signature (verification is the store's job). A zero time means the expiry
// is unknown and the token is used as-is.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	var claims jwt.StandardClaims
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(claims.ExpiresAt, 0)
}
