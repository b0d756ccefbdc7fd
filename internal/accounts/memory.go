package accounts

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/icebob/kantab-sub001/internal/auth"
)

// MemoryStore implements Store in memory. Used by tests and for
// single-binary development without Postgres.
type MemoryStore struct {
	mu         sync.Mutex
	byID       map[string]*Account
	byIdentity map[string]string // "provider/externalID" -> user id
	byEmail    map[string]string // lowercase email -> user id
	passwords  map[string]string // user id -> bcrypt hash
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*Account),
		byIdentity: make(map[string]string),
		byEmail:    make(map[string]string),
		passwords:  make(map[string]string),
	}
}

// SeedPassword creates a password-credentialed account. Test helper.
func (s *MemoryStore) SeedPassword(email, password string) (*Account, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account := &Account{
		ID:    uuid.NewString(),
		Email: email,
		Roles: []string{"user"},
	}
	s.byID[account.ID] = account
	s.byEmail[strings.ToLower(email)] = account.ID
	s.passwords[account.ID] = hash
	return account, nil
}

func (s *MemoryStore) FindOrCreateByProfile(
	_ context.Context,
	profile auth.Profile,
) (*Account, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	key := profile.Provider + "/" + profile.ExternalID

	if id, ok := s.byIdentity[key]; ok {
		return s.byID[id], nil
	}

	// email linking before creation, like the Postgres store
	if profile.Email != "" {
		if id, ok := s.byEmail[strings.ToLower(profile.Email)]; ok {
			s.byIdentity[key] = id
			return s.byID[id], nil
		}
	}

	account := &Account{
		ID:        uuid.NewString(),
		Email:     profile.Email,
		FullName:  profile.FullName,
		AvatarURL: profile.AvatarURL,
		Roles:     []string{"user"},
	}
	s.byID[account.ID] = account
	s.byIdentity[key] = account.ID
	if profile.Email != "" {
		s.byEmail[strings.ToLower(profile.Email)] = account.ID
	}
	return account, nil
}

func (s *MemoryStore) VerifyPassword(
	_ context.Context,
	email string,
	password string,
) (*Account, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}

	hash, ok := s.passwords[id]
	if !ok {
		return nil, ErrPasswordLoginDisabled
	}

	if err := CheckPassword(hash, password); err != nil {
		return nil, ErrWrongPassword
	}

	return s.byID[id], nil
}
