package utils // package utils provides helpers for token issuing and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is returned by ParseToken for every failure mode:
// malformed token, bad signature, wrong algorithm, missing claim or
// expiry in the past.  Callers deliberately cannot distinguish these
// cases; the API answers all of them with the same 401.
var ErrInvalidToken = errors.New("invalid or expired token")

// Token represents a signed JWT bearer credential along with its
// expiry.  The Token field contains the serialized JWT string; Exp
// stores the UTC expiration time.  Tokens are long-lived (the TTL is
// measured in days) and carried in the Authorization header on every
// authenticated call.
type Token struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewToken builds and signs an HS256 JWT for a user.  The claims are
// the user id under "user_id" plus the standard exp/iat timestamps.
// ttlDays controls the validity window (30 days in the default
// configuration).
func NewToken(secret string, userID uint64, ttlDays int) (Token, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     exp.Unix(),
		"iat":     time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Token: signed, Exp: exp}, nil
}

// ParseToken validates the signature and expiry of a serialized token
// and returns the user id it encodes.  Any failure yields
// ErrInvalidToken.
func ParseToken(secret, raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Only HMAC is acceptable; reject tokens signed with
		// anything else before touching the claims.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	// Numeric JSON values decode as float64.
	sub, ok := claims["user_id"].(float64)
	if !ok || sub <= 0 {
		return 0, ErrInvalidToken
	}
	return uint64(sub), nil
}
