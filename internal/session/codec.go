// Package session implements the client-side session model: a signed JWT
// payload carried in one of two cookies, a full session or an
// onboarding-scoped temporary session. Nothing is persisted server-side.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "sahay/pkg/domain"
)

// Cookie names for the two session tiers.
const (
	CookieName     = "session"
	TempCookieName = "temp_session"
)

// Kind distinguishes the two session tiers.
type Kind string

const (
	KindFull      Kind = "full"
	KindTemporary Kind = "temporary"
)

// ErrInvalid is returned for any cookie value that fails to decode:
// malformed, tampered, expired, or carrying an unexpected kind. Callers
// treat all causes identically (purge the cookie, degrade to anonymous).
var ErrInvalid = errors.New("invalid session")

// Payload is the session record carried in the cookie. Display fields are
// denormalized so pages can render a header without a store lookup.
type Payload struct {
	AccountID id.AccountID
	FullName  string
	Gender    string
	Kind      Kind
}

type claims struct {
	AccountID string `json:"account_id"`
	FullName  string `json:"full_name,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Kind      string `json:"kind"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session payloads with HMAC-SHA256. The
// signature is what lets the gate trust a client-supplied cookie.
type Codec struct {
	signingKey []byte
}

// NewCodec creates a codec keyed by the server session secret.
func NewCodec(signingKey string) *Codec {
	return &Codec{signingKey: []byte(signingKey)}
}

// Encode serializes a payload into a signed cookie value with the given
// lifetime.
func (c *Codec) Encode(p Payload, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		AccountID: p.AccountID.String(),
		FullName:  p.FullName,
		Gender:    p.Gender,
		Kind:      string(p.Kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	return token.SignedString(c.signingKey)
}

// Decode verifies and deserializes a cookie value. Every failure mode maps
// to ErrInvalid; the codec never panics on malformed input.
func (c *Codec) Decode(value string) (*Payload, error) {
	parsed, err := jwt.ParseWithClaims(value, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return c.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalid
	}

	cl, ok := parsed.Claims.(*claims)
	if !ok {
		return nil, ErrInvalid
	}

	accountID, err := id.ParseAccountID(cl.AccountID)
	if err != nil {
		return nil, ErrInvalid
	}

	kind := Kind(cl.Kind)
	if kind != KindFull && kind != KindTemporary {
		return nil, ErrInvalid
	}

	return &Payload{
		AccountID: accountID,
		FullName:  cl.FullName,
		Gender:    cl.Gender,
		Kind:      kind,
	}, nil
}

// cookieName returns the cookie a payload kind belongs in.
func cookieName(kind Kind) string {
	if kind == KindTemporary {
		return TempCookieName
	}
	return CookieName
}

// Issue encodes the payload and sets the matching cookie on the response.
// Secure is only set in production so local development over plain HTTP
// keeps working.
func (c *Codec) Issue(w http.ResponseWriter, p Payload, ttl time.Duration, secure bool) error {
	value, err := c.Encode(p, ttl)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(p.Kind),
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(ttl.Seconds()),
	})
	return nil
}

// Clear expires a session cookie on the response.
func Clear(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   -1,
	})
}

// ClearAll expires both session cookies; used on logout and on forced
// purges when an account vanishes mid-session.
func ClearAll(w http.ResponseWriter, secure bool) {
	Clear(w, CookieName, secure)
	Clear(w, TempCookieName, secure)
}
