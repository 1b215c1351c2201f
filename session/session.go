// Package session owns the client-side token pair and mediates its
// lifecycle: bearer attachment, single-flight refresh, and clearing.
// At most one valid session exists client side; absence of a session
// means the user is logged out.
package session

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Session is the access/refresh token pair issued by the backend. It is
// persisted to the credential store on every successful login or
// refresh and removed on logout or irrecoverable refresh failure.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims returns the access token's claims without verifying the
// signature. Verification is the backend's job; the client only
// inspects expiry to report on the session's health.
func (s *Session) Claims() (jwtlib.MapClaims, error) {
	claims := jwtlib.MapClaims{}
	parser := jwtlib.NewParser()
	if _, _, err := parser.ParseUnverified(s.AccessToken, claims); err != nil {
		return nil, errors.Wrap(err, "[Session.Claims] parse access token")
	}
	return claims, nil
}

// ExpiresWithin reports whether the access token expires within d of
// now. Tokens without a parsable exp claim count as expiring, which
// errs on the side of refreshing.
func (s *Session) ExpiresWithin(d time.Duration) bool {
	claims, err := s.Claims()
	if err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Time.Before(NowTimeFunc().Add(d))
}
