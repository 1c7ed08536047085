package store

import (
	"sync"
	"time"

	"veriauth/auth-api/internal/auth"
	"veriauth/auth-api/internal/model"
)

// CodeRegistry holds the live verification code of each user. Expiry is
// checked lazily against the clock at the moment of use; there is no
// background sweep. Codes are transient state and never persisted.
type CodeRegistry struct {
	mu    sync.Mutex
	codes map[string]model.VerificationCode
}

func NewCodeRegistry() *CodeRegistry {
	return &CodeRegistry{codes: make(map[string]model.VerificationCode)}
}

// Set stores a code for userID, replacing any previous one.
func (r *CodeRegistry) Set(userID, code string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codes[userID] = model.VerificationCode{
		UserID:    userID,
		Code:      code,
		ExpiresAt: expiresAt,
	}
}

func (r *CodeRegistry) Get(userID string) (*model.VerificationCode, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.codes[userID]
	if !ok {
		return nil, false
	}

	return &rec, true
}

func (r *CodeRegistry) Delete(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.codes, userID)
}

// Consume validates and deletes the user's code in one step, so two
// concurrent attempts can't both redeem it. An expired record is purged
// as a side effect and later attempts report it as missing.
func (r *CodeRegistry) Consume(userID, code string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.codes[userID]
	if !ok {
		return auth.ErrCodeNotFound
	}

	if rec.ExpiresAt.Before(now) {
		delete(r.codes, userID)
		return auth.ErrCodeExpired
	}

	if rec.Code != code {
		return auth.ErrCodeMismatch
	}

	delete(r.codes, userID)
	return nil
}
