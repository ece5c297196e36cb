package dietapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime returns how long the given access token remains valid. The
// token is decoded without signature verification; only the exp claim is
// read. A token past its expiry yields a negative duration.
func TokenLifetime(token string) (time.Duration, error) {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return 0, fmt.Errorf("failed to decode access token: %w", err)
	}

	expiry, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return 0, fmt.Errorf("failed to read token expiry: %w", err)
	}
	if expiry == nil {
		return 0, fmt.Errorf("access token has no expiry claim")
	}
	return time.Until(expiry.Time), nil
}
