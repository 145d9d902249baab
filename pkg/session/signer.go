package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signer encodes and decodes access tokens. The manager only ever passes the
// subject (user email) through it; nothing sensitive goes into the token.
type Signer interface {
	Sign(subject string, issuedAt time.Time, ttl time.Duration) (string, error)
	// Verify checks signature and expiry (relative to now) and returns the
	// subject claim.
	Verify(token string, now time.Time) (string, error)
}

// HS256Signer signs tokens with HMAC-SHA256 and a shared server secret.
type HS256Signer struct {
	secret []byte
}

func NewHS256Signer(secret []byte) *HS256Signer {
	return &HS256Signer{secret: secret}
}

func (s *HS256Signer) Sign(subject string, issuedAt time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iat": issuedAt.Unix(),
		"exp": issuedAt.Add(ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

func (s *HS256Signer) Verify(tokenString string, now time.Time) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	token, err := parser.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrUnauthenticated
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthenticated
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrUnauthenticated
	}
	return sub, nil
}
