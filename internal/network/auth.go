// File: internal/network/auth.go
package network

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// ErrTokenExpired is returned when a JWT bearer token carries an exp claim in the past.
var ErrTokenExpired = errors.New("api token has expired")

// parserUnverified only decodes claims. The token is verified by the service, not here.
var parserUnverified = jwt.NewParser(jwt.WithoutClaimsValidation())

// NewBearerTransport attaches token as a static bearer credential to every request.
func NewBearerTransport(base http.RoundTripper, token string) http.RoundTripper {
	return &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   base,
	}
}

// CheckTokenExpiry reports ErrTokenExpired when token is a JWT whose exp is
// before now. Opaque tokens and JWTs without exp are accepted as is.
func CheckTokenExpiry(token string, now time.Time) error {
	parsed, _, err := parserUnverified.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if exp.Before(now) {
		return fmt.Errorf("%w (expired at %s)", ErrTokenExpired, exp.UTC().Format(time.RFC3339))
	}
	return nil
}
