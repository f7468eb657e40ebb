package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/marcosaureliofarias/convite-aniversario/internal/model"
)

// memoryStore keeps the collection for the lifetime of the process
type memoryStore struct {
	guests []model.Guest
}

func (s *memoryStore) load(_ context.Context) ([]model.Guest, error) {
	return cloneAll(s.guests), nil
}

func (s *memoryStore) save(_ context.Context, guests []model.Guest) error {
	s.guests = cloneAll(guests)
	return nil
}

// NewMemoryGuestRepo creates an in-memory GuestRepository, optionally
// pre-populated with the given guests
func NewMemoryGuestRepo(seed ...model.Guest) GuestRepository {
	return newSnapshotGuestRepo(&memoryStore{guests: cloneAll(seed)})
}

// LoadSeedFile reads a JSON array of guests used to seed the memory medium
func LoadSeedFile(path string) ([]model.Guest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var guests []model.Guest
	if err := json.Unmarshal(data, &guests); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return guests, nil
}

func cloneAll(guests []model.Guest) []model.Guest {
	out := make([]model.Guest, 0, len(guests))
	for i := range guests {
		out = append(out, *guests[i].Clone())
	}
	return out
}
