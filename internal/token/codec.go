// Package token creates and verifies the compact signed tokens used for both
// access and refresh credentials. The two kinds differ only in lifetime; a
// token is self-contained and its validity is determined entirely by its
// signature and expiry.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/userbase/backend/internal/errors"
)

// Claims is the verified payload of a token.
type Claims struct {
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies tokens with a shared HMAC-SHA256 secret.
type Codec struct {
	secret []byte
}

// NewCodec returns a Codec using the given shared secret. The secret is a
// deployment configuration value; it is never compiled in.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: signing secret must not be empty")
	}
	return &Codec{secret: secret}, nil
}

// Issue signs a token whose subject is the stringified user id, valid from
// now until now+ttl.
func (c *Codec) Issue(userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.secret)
}

// Verify checks signature, structure, and expiry, and returns the claims.
// A bad signature, malformed structure, unexpected signing method, or
// non-numeric subject all report InvalidToken; a valid-but-expired token
// reports TokenExpired.
func (c *Codec) Verify(tokenString string) (*Claims, *apperrors.AppError) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenMalformed):
			return nil, apperrors.InvalidToken()
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.TokenExpired()
		default:
			return nil, apperrors.InvalidToken()
		}
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return nil, apperrors.InvalidToken()
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, apperrors.InvalidToken()
	}

	out := &Claims{UserID: userID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
