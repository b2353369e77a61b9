// Package token decodes bearer credentials on the client side.
//
// The client never holds the signing key, so decoding only exposes the
// claims for display and role checks; the backend remains the authority on
// whether a credential is valid.
package token

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gramsight/dashboard/internal/core/domain"
)

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode extracts the claims from a three-segment credential. Only the
// payload segment is read; the header and signature are the backend's
// business. It reports false for any malformed input and never panics.
func Decode(raw string) (claims domain.Claims, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			claims, ok = domain.Claims{}, false
		}
	}()

	segments := strings.Split(raw, ".")
	if len(segments) != 3 {
		return domain.Claims{}, false
	}
	payload, err := parser.DecodeSegment(segments[1])
	if err != nil {
		return domain.Claims{}, false
	}
	var mc jwt.MapClaims
	if err := json.Unmarshal(payload, &mc); err != nil || mc == nil {
		return domain.Claims{}, false
	}
	return toClaims(mc), true
}

// Codec adapts Decode to the session service's decoder dependency.
type Codec struct{}

func (Codec) Decode(raw string) (domain.Claims, bool) { return Decode(raw) }

func toClaims(mc jwt.MapClaims) domain.Claims {
	c := domain.Claims{Extra: make(map[string]any)}
	for k, v := range mc {
		switch k {
		case "sub":
			c.Subject, _ = v.(string)
		case "email":
			c.Email, _ = v.(string)
		case "role":
			c.Role, _ = v.(string)
		case "iat":
			c.IssuedAt = numericTime(mc.GetIssuedAt)
		case "exp":
			c.ExpiresAt = numericTime(mc.GetExpirationTime)
		default:
			c.Extra[k] = v
		}
	}
	return c
}

func numericTime(get func() (*jwt.NumericDate, error)) time.Time {
	d, err := get()
	if err != nil || d == nil {
		return time.Time{}
	}
	return d.Time.UTC()
}
