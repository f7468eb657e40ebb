package repository

import (
	"context"
	"errors"

	"github.com/marcosaureliofarias/convite-aniversario/internal/model"
)

// ErrNotFound no guest with the requested id exists in the medium
var ErrNotFound = errors.New("guest not found")

// GuestRepository persistence contract every medium implements.
// Implementations store what they are given; ids, timestamps and field
// rules are owned by the service layer.
type GuestRepository interface {
	List(ctx context.Context) ([]model.Guest, error)
	GetByID(ctx context.Context, id string) (*model.Guest, error)
	Create(ctx context.Context, guest *model.Guest) error
	Update(ctx context.Context, guest *model.Guest) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// Repository aggregates the repositories and the medium's lifecycle
type Repository struct {
	Guest GuestRepository

	closer func(ctx context.Context) error
}

// NewRepository wraps a guest repository; closer may be nil
func NewRepository(guest GuestRepository, closer func(ctx context.Context) error) *Repository {
	return &Repository{Guest: guest, closer: closer}
}

// Close flushes and releases the medium
func (r *Repository) Close(ctx context.Context) error {
	if r.closer == nil {
		return nil
	}
	return r.closer(ctx)
}
