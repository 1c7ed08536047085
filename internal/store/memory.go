// Package store provides the backing stores of the authentication core:
// user records and verification codes. The in-memory implementations are
// the reference behavior; GormStore backs users with SQLite for
// deployments that need records to survive a restart.
package store

import (
	"sync"

	"veriauth/auth-api/internal/auth"
	"veriauth/auth-api/internal/model"
)

// MemoryStore keeps user records in a map guarded by a single RWMutex.
// Create runs its uniqueness checks and the insert under one lock so
// concurrent signups can't slip past each other.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]model.User)}
}

func (s *MemoryStore) FindByID(id string) (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, false
	}

	return &u, true
}

func (s *MemoryStore) FindByUsername(username string) (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, true
		}
	}

	return nil, false
}

func (s *MemoryStore) FindByEmail(email string) (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, true
		}
	}

	return nil, false
}

// Create inserts u if no live record shares its username or email.
// Username collisions win over email collisions when both apply.
func (s *MemoryStore) Create(u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return auth.ErrDuplicateUsername
		}
	}

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return auth.ErrDuplicateEmail
		}
	}

	s.users[u.ID] = *u
	return nil
}

// Update merges the non-nil fields of patch into the record and returns
// the merged result, or false if the id is unknown.
func (s *MemoryStore) Update(id string, patch model.UserPatch) (*model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, false
	}

	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.Verified != nil {
		u.Verified = *patch.Verified
	}

	s.users[id] = u
	return &u, true
}

func (s *MemoryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return false
	}

	delete(s.users, id)
	return true
}
