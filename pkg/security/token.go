package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid covers every verification failure: malformed token, bad
// signature, wrong algorithm or expiry. Callers must not learn which one.
var ErrTokenInvalid = errors.New("invalid or expired token")

// Claims carried inside an auth token. The user ID travels in the
// registered Subject claim.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// TokenCodec signs and verifies compact bearer tokens (HS256 JWTs). Tokens
// are self-contained: verification needs no store lookup and revocation is
// not supported.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, ttl: ttl}
}

func (t *TokenCodec) Issue(userID, username string) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Username: username,
	})

	return token.SignedString(t.secret)
}

// Verify checks the signature and expiry of tokenStr and returns the
// embedded identity. Any failure comes back as ErrTokenInvalid.
func (t *TokenCodec) Verify(tokenStr string) (userID, username string, err error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (any, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrTokenInvalid
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrTokenInvalid
	}

	return claims.Subject, claims.Username, nil
}
