package account

import (
	"context"
	"strings"
	"sync"

	id "sahay/pkg/domain"
	"sahay/pkg/platform/sentinel"
)

// InMemory keeps accounts in process memory. It favors clarity over
// performance and is the default store in development and unit tests.
type InMemory struct {
	mu       sync.RWMutex
	byID     map[id.AccountID]*Account
	byEmail  map[string]id.AccountID
	byMobile map[string]id.AccountID
}

// NewInMemory creates an empty in-memory account store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:     make(map[id.AccountID]*Account),
		byEmail:  make(map[string]id.AccountID),
		byMobile: make(map[string]id.AccountID),
	}
}

func (s *InMemory) Create(_ context.Context, acct *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	emailKey := strings.ToLower(acct.Email)
	if _, taken := s.byEmail[emailKey]; taken {
		return sentinel.ErrConflict
	}
	if _, taken := s.byMobile[acct.Mobile]; taken {
		return sentinel.ErrConflict
	}

	stored := *acct
	s.byID[acct.ID] = &stored
	s.byEmail[emailKey] = acct.ID
	s.byMobile[acct.Mobile] = acct.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, accountID id.AccountID) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if acct, ok := s.byID[accountID]; ok {
		copied := *acct
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if accountID, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]; ok {
		copied := *s.byID[accountID]
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByMobile(_ context.Context, mobile string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if accountID, ok := s.byMobile[strings.TrimSpace(mobile)]; ok {
		copied := *s.byID[accountID]
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}
