package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"vehiclereg/internal/registration/models"
	"vehiclereg/pkg/platform/sentinel"
)

// InMemoryStore keeps registrations in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]models.Registration
	byPhone map[string]string
	byEmail map[string]string
	order   []string
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[string]models.Registration),
		byPhone: make(map[string]string),
		byEmail: make(map[string]string),
	}
}

// Save inserts reg. It returns sentinel.ErrConflict if the id, phone number
// or email address is already present.
func (s *InMemoryStore) Save(_ context.Context, reg *models.Registration) error {
	if reg == nil {
		return fmt.Errorf("registration is required")
	}
	phone := strings.TrimSpace(reg.PrimaryPhoneNumber)
	email := ContactKey(reg.Email())

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[reg.ID]; ok {
		return fmt.Errorf("%w: registration %s exists", sentinel.ErrConflict, reg.ID)
	}
	if _, ok := s.byPhone[phone]; ok && phone != "" {
		return fmt.Errorf("%w: phone number taken", sentinel.ErrConflict)
	}
	if _, ok := s.byEmail[email]; ok && email != "" {
		return fmt.Errorf("%w: email address taken", sentinel.ErrConflict)
	}

	s.byID[reg.ID] = *reg
	s.order = append(s.order, reg.ID)
	if phone != "" {
		s.byPhone[phone] = reg.ID
	}
	if email != "" {
		s.byEmail[email] = reg.ID
	}
	return nil
}

// FindByID returns the registration with id or sentinel.ErrNotFound.
func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &reg, nil
}

// FindDuplicate returns the first taken identifier, phone before email, or
// "" when neither is registered. Empty arguments are not looked up.
func (s *InMemoryStore) FindDuplicate(_ context.Context, phone, email string) (string, error) {
	phone = strings.TrimSpace(phone)
	email = ContactKey(email)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.byPhone[phone]; ok && phone != "" {
		return models.FieldPrimaryPhoneNumber, nil
	}
	if _, ok := s.byEmail[email]; ok && email != "" {
		return models.FieldEmailAddress, nil
	}
	return "", nil
}

// Count returns the number of stored registrations.
func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}
