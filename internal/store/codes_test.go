package store

import (
	"testing"
	"time"

	"veriauth/auth-api/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeRegistry_SetGetDelete(t *testing.T) {
	t.Parallel()

	r := NewCodeRegistry()
	exp := time.Now().Add(time.Minute)

	r.Set("u1", "123456", exp)

	rec, ok := r.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "123456", rec.Code)
	assert.Equal(t, exp, rec.ExpiresAt)

	r.Delete("u1")
	_, ok = r.Get("u1")
	assert.False(t, ok)
}

func TestCodeRegistry_SetReplacesPreviousCode(t *testing.T) {
	t.Parallel()

	r := NewCodeRegistry()
	now := time.Now()

	r.Set("u1", "111111", now.Add(time.Minute))
	r.Set("u1", "222222", now.Add(time.Minute))

	// The superseded code no longer verifies
	err := r.Consume("u1", "111111", now)
	assert.ErrorIs(t, err, auth.ErrCodeMismatch)

	require.NoError(t, r.Consume("u1", "222222", now))
}

func TestCodeRegistry_ConsumeIsSingleUse(t *testing.T) {
	t.Parallel()

	r := NewCodeRegistry()
	now := time.Now()

	r.Set("u1", "123456", now.Add(time.Minute))

	require.NoError(t, r.Consume("u1", "123456", now))

	err := r.Consume("u1", "123456", now)
	assert.ErrorIs(t, err, auth.ErrCodeNotFound)
}

func TestCodeRegistry_ConsumeExpiredPurgesRecord(t *testing.T) {
	t.Parallel()

	r := NewCodeRegistry()
	now := time.Now()

	r.Set("u1", "123456", now.Add(-time.Second))

	err := r.Consume("u1", "123456", now)
	assert.ErrorIs(t, err, auth.ErrCodeExpired)

	// Expiry deletes the record, so the next attempt is a plain miss
	err = r.Consume("u1", "123456", now)
	assert.ErrorIs(t, err, auth.ErrCodeNotFound)
}

func TestCodeRegistry_MismatchKeepsRecord(t *testing.T) {
	t.Parallel()

	r := NewCodeRegistry()
	now := time.Now()

	r.Set("u1", "123456", now.Add(time.Minute))

	err := r.Consume("u1", "000000", now)
	assert.ErrorIs(t, err, auth.ErrCodeMismatch)

	// A wrong guess must not burn the real code
	require.NoError(t, r.Consume("u1", "123456", now))
}

func TestCodeRegistry_ConsumeUnknownUser(t *testing.T) {
	t.Parallel()

	r := NewCodeRegistry()

	err := r.Consume("ghost", "123456", time.Now())
	assert.ErrorIs(t, err, auth.ErrCodeNotFound)
}
