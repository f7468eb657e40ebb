package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marcosaureliofarias/convite-aniversario/internal/model"
)

// KeyValueClient the subset of the redis client the redis medium needs
type KeyValueClient interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, value []byte) error
}

// redisStore keeps the whole collection as one JSON array under a single key
type redisStore struct {
	client KeyValueClient
	key    string
}

// NewRedisGuestRepo creates a GuestRepository stored under key
func NewRedisGuestRepo(client KeyValueClient, key string) GuestRepository {
	return newSnapshotGuestRepo(&redisStore{client: client, key: key})
}

func (s *redisStore) load(ctx context.Context) ([]model.Guest, error) {
	data, found, err := s.client.GetBytes(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	if !found || len(data) == 0 {
		return []model.Guest{}, nil
	}

	var guests []model.Guest
	if err := json.Unmarshal(data, &guests); err != nil {
		return nil, fmt.Errorf("decode redis key %s: %w", s.key, err)
	}
	return guests, nil
}

func (s *redisStore) save(ctx context.Context, guests []model.Guest) error {
	data, err := json.Marshal(guests)
	if err != nil {
		return fmt.Errorf("encode guests: %w", err)
	}
	if err := s.client.SetBytes(ctx, s.key, data); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
