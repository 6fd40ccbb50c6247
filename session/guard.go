package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrMissingClaim   = errors.New("missing claim")
)

// Guard decides whether an access token has lapsed. The token signature is
// not checked here; the backend does that on every call.
type Guard struct {
	Now func() time.Time
}

var defaultGuard = &Guard{Now: time.Now}

// IsExpired reports whether token's exp claim lies before the current second.
// A token that cannot be decoded is treated as expired.
func IsExpired(token string) bool {
	return defaultGuard.IsExpired(token)
}

func (g *Guard) IsExpired(token string) bool {
	exp, err := Expiry(token)
	if err != nil {
		return true
	}
	return exp < float64(g.now().Unix())
}

func (g *Guard) now() time.Time {
	if g == nil || g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// Expiry returns the raw exp claim in unix seconds.
func Expiry(token string) (float64, error) {
	claims, err := decode(token)
	if err != nil {
		return 0, err
	}
	v, ok := claims["exp"]
	if !ok {
		return 0, fmt.Errorf("%w: exp", ErrMissingClaim)
	}
	return number(v)
}

// UserIDFromToken reads the userId claim issued by the login endpoint.
func UserIDFromToken(token string) (int64, error) {
	claims, err := decode(token)
	if err != nil {
		return 0, err
	}
	v, ok := claims["userId"]
	if !ok {
		v, ok = claims["user_id"]
	}
	if !ok {
		return 0, fmt.Errorf("%w: userId", ErrMissingClaim)
	}
	f, err := number(v)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func decode(token string) (jwt.MapClaims, error) {
	if token == "" {
		return nil, ErrMalformedToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser(jwt.WithJSONNumber()).ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

func number(v interface{}) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Float64()
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("%w: unexpected claim type %T", ErrMalformedToken, v)
	}
}
