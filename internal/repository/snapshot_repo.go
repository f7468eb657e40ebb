package repository

import (
	"context"
	"sync"

	"github.com/marcosaureliofarias/convite-aniversario/internal/model"
)

// snapshotStore is a medium that can only load and save the whole guest
// collection at once (memory, JSON file, redis key).
type snapshotStore interface {
	load(ctx context.Context) ([]model.Guest, error)
	save(ctx context.Context, guests []model.Guest) error
}

// snapshotGuestRepo implements GuestRepository on top of a snapshotStore:
// every mutation loads the collection, changes it and saves it back.
// The mutex serializes access within this process only.
type snapshotGuestRepo struct {
	mu    sync.Mutex
	store snapshotStore
}

func newSnapshotGuestRepo(store snapshotStore) *snapshotGuestRepo {
	return &snapshotGuestRepo{store: store}
}

func (r *snapshotGuestRepo) List(ctx context.Context) ([]model.Guest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	guests, err := r.store.load(ctx)
	if err != nil {
		return nil, err
	}
	return guests, nil
}

func (r *snapshotGuestRepo) GetByID(ctx context.Context, id string) (*model.Guest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	guests, err := r.store.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(guests, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return guests[i].Clone(), nil
}

func (r *snapshotGuestRepo) Create(ctx context.Context, guest *model.Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	guests, err := r.store.load(ctx)
	if err != nil {
		return err
	}
	guests = append(guests, *guest.Clone())
	return r.store.save(ctx, guests)
}

func (r *snapshotGuestRepo) Update(ctx context.Context, guest *model.Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	guests, err := r.store.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(guests, guest.ID)
	if i < 0 {
		return ErrNotFound
	}
	guests[i] = *guest.Clone()
	return r.store.save(ctx, guests)
}

func (r *snapshotGuestRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	guests, err := r.store.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(guests, id)
	if i < 0 {
		return ErrNotFound
	}
	guests = append(guests[:i], guests[i+1:]...)
	return r.store.save(ctx, guests)
}

func (r *snapshotGuestRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.store.save(ctx, []model.Guest{})
}

func indexOf(guests []model.Guest, id string) int {
	for i := range guests {
		if guests[i].ID == id {
			return i
		}
	}
	return -1
}
