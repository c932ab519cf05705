package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"webauthn_ms/domain"

	"github.com/redis/go-redis/v9"
)

// IChallengeStore holds at most one live pending challenge per ceremony
// token. Put overwrites any earlier challenge for the same token, which
// cancels the previous ceremony rather than erroring. Take retrieves AND
// invalidates in one call, so a challenge can never be consumed twice no
// matter how complete ends.
type IChallengeStore interface {
	Put(ctx context.Context, challenge *domain.PendingChallenge) error
	Take(ctx context.Context, ceremonyToken string) (*domain.PendingChallenge, error)
}

type RedisChallengeStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisChallengeStore(rdb *redis.Client, ttl time.Duration) *RedisChallengeStore {
	return &RedisChallengeStore{rdb: rdb, ttl: ttl}
}

func challengeKey(token string) string {
	return fmt.Sprintf("webauthn:ceremony:%s", token)
}

func (s *RedisChallengeStore) Put(ctx context.Context, challenge *domain.PendingChallenge) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, challengeKey(challenge.CeremonyToken), data, s.ttl).Err()
}

func (s *RedisChallengeStore) Take(ctx context.Context, ceremonyToken string) (*domain.PendingChallenge, error) {
	val, err := s.rdb.GetDel(ctx, challengeKey(ceremonyToken)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrChallengeExpired
	}
	if err != nil {
		return nil, err
	}

	var challenge domain.PendingChallenge
	if err := json.Unmarshal([]byte(val), &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}
