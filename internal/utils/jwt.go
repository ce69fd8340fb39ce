package utils // package utils provides helper functions for token and code creation

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp.  Access tokens are short-lived and sent in the
// Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The JWT
// carries the claims the ordering workflow reads: subject (sub), role,
// and the phone/email identity snapshotted onto orders, plus the
// standard exp/iat.
func NewAccessToken(secret string, userID uint64, role, phone, email string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   userID,
		"role":  role,
		"phone": phone,
		"email": email,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewOTPCode returns a random numeric one-time code of the given
// length, generated from crypto/rand.
func NewOTPCode(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	code := make([]byte, length)
	for i := range b {
		code[i] = '0' + b[i]%10
	}
	return string(code), nil
}

// ParseRole extracts the role claim from an already-verified token's
// claims map, defaulting to guest.
func ParseRole(claims jwt.MapClaims) string {
	if v, ok := claims["role"].(string); ok && v != "" {
		return v
	}
	return "guest"
}

// ClaimString pulls a string claim, tolerating absence.
func ClaimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// ClaimUserID pulls the numeric subject claim, tolerating the float64
// form JSON decoding produces.
func ClaimUserID(claims jwt.MapClaims) uint64 {
	switch v := claims["sub"].(type) {
	case float64:
		return uint64(v)
	case uint64:
		return v
	case string:
		var id uint64
		_, _ = fmt.Sscanf(v, "%d", &id)
		return id
	}
	return 0
}
