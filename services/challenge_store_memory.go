package services

import (
	"context"
	"sync"
	"time"
	"webauthn_ms/domain"
)

// MemoryChallengeStore is the in-process IChallengeStore, used by tests and
// single-node deployments. Expired entries are dropped lazily on Take and by
// a background sweep to bound memory.
type MemoryChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]*domain.PendingChallenge
	ttl        time.Duration
	now        func() time.Time
}

func NewMemoryChallengeStore(ttl time.Duration) *MemoryChallengeStore {
	store := &MemoryChallengeStore{
		challenges: make(map[string]*domain.PendingChallenge),
		ttl:        ttl,
		now:        time.Now,
	}
	go store.sweep()
	return store
}

func (s *MemoryChallengeStore) Put(ctx context.Context, challenge *domain.PendingChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.CeremonyToken] = challenge
	return nil
}

func (s *MemoryChallengeStore) Take(ctx context.Context, ceremonyToken string) (*domain.PendingChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[ceremonyToken]
	if !ok {
		return nil, ErrChallengeExpired
	}
	delete(s.challenges, ceremonyToken)

	if s.now().Sub(challenge.CreatedAt) > s.ttl {
		return nil, ErrChallengeExpired
	}
	return challenge, nil
}

func (s *MemoryChallengeStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		for token, challenge := range s.challenges {
			if s.now().Sub(challenge.CreatedAt) > s.ttl {
				delete(s.challenges, token)
			}
		}
		s.mu.Unlock()
	}
}
