package session

import (
	"encoding/json"
	"errors"
	"sync"

	"solomanager/internal/logger"
)

var (
	ErrInvalidIdentity  = errors.New("identity must contain at least an email or a name")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Store holds the process-wide authenticated identity. It rehydrates from
// storage at construction; junk in the slot ("undefined", "null",
// unparseable content) means unauthenticated and the slot is cleared.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	current *Identity
}

func Open(storage Storage) *Store {
	s := &Store{storage: storage}
	s.rehydrate()
	return s
}

func (s *Store) rehydrate() {
	raw, ok, err := s.storage.Load()
	if err != nil {
		logger.WithError(err).Error("failed to load stored session")
		return
	}
	if !ok || raw == "" || raw == "undefined" || raw == "null" {
		_ = s.storage.Clear()
		return
	}

	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		logger.WithError(err).Error("stored session is not valid, clearing")
		_ = s.storage.Clear()
		return
	}
	s.current = &id
}

// Login validates and persists the identity. Role defaults to admin and
// gym_id defaults to the identity's own id (self-scoped gym owner).
func (s *Store) Login(id Identity) error {
	if id.Email == "" && id.Name == "" {
		return ErrInvalidIdentity
	}
	if id.Role == "" {
		id.Role = RoleAdmin
	}
	if id.GymID == "" {
		id.GymID = id.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(id); err != nil {
		return err
	}
	s.current = &id
	return nil
}

// Logout clears both the in-memory identity and the persisted slot,
// unconditionally.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	return s.storage.Clear()
}

// UpdateUser overwrites the whole persisted identity. Callers must supply
// the complete object; this is not a merge.
func (s *Store) UpdateUser(id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(id); err != nil {
		return err
	}
	s.current = &id
	return nil
}

func (s *Store) persist(id Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return s.storage.Save(string(data))
}

// Current returns a copy of the identity and whether one is present.
func (s *Store) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

// Allowed reports whether an identity is present and its role matches one
// of the given roles. A false result means redirect to login.
func (s *Store) Allowed(roles ...Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return false
	}
	for _, r := range roles {
		if s.current.Role == r {
			return true
		}
	}
	return false
}
