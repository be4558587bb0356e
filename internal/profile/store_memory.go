package profile

import (
	"context"
	"sync"

	id "sahay/pkg/domain"
	"sahay/pkg/platform/sentinel"
)

// InMemory keeps profiles in process memory.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[id.AccountID]*Profile
}

// NewInMemory creates an empty in-memory profile store.
func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[id.AccountID]*Profile)}
}

func (s *InMemory) Save(_ context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := clone(p)
	s.profiles[p.AccountID] = stored
	return nil
}

func (s *InMemory) FindByAccount(_ context.Context, accountID id.AccountID) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[accountID]; ok {
		return clone(p), nil
	}
	return nil, sentinel.ErrNotFound
}

// clone copies the profile including its slices so callers cannot mutate
// stored state through returned pointers.
func clone(p *Profile) *Profile {
	copied := *p
	if p.Skills != nil {
		copied.Skills = append([]Skill(nil), p.Skills...)
	}
	if p.Ownership != nil {
		copied.Ownership = append([]string(nil), p.Ownership...)
	}
	return &copied
}
