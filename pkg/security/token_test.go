package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec([]byte("super-secret"), time.Hour)

	token, err := codec.Issue("u1", "alice")
	require.NoError(t, err)

	userID, username, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "alice", username)
}

func TestTokenCodec_Expired(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec([]byte("super-secret"), -time.Second)

	token, err := codec.Issue("u1", "alice")
	require.NoError(t, err)

	_, _, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewTokenCodec([]byte("right-secret"), time.Hour).Issue("u1", "alice")
	require.NoError(t, err)

	_, _, err = NewTokenCodec([]byte("wrong-secret"), time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenCodec_Tampered(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec([]byte("super-secret"), time.Hour)

	token, err := codec.Issue("u1", "alice")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + ".eyJzdWIiOiJ1MiJ9." + parts[2]

	_, _, err = codec.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenCodec_RejectsUnsignedAlg(t *testing.T) {
	t.Parallel()

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Username: "alice",
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, _, err = NewTokenCodec([]byte("super-secret"), time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenCodec_Malformed(t *testing.T) {
	t.Parallel()

	_, _, err := NewTokenCodec([]byte("k"), time.Hour).Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
