package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/marcosaureliofarias/convite-aniversario/internal/model"
	"github.com/marcosaureliofarias/convite-aniversario/internal/repository"
)

// ── Mock GuestRepository ──

type mockGuestRepo struct {
	guests []model.Guest
	err    error // returned by every call when set
}

func newMockGuestRepo() *mockGuestRepo {
	return &mockGuestRepo{}
}

func (m *mockGuestRepo) List(_ context.Context) ([]model.Guest, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.Guest, len(m.guests))
	for i := range m.guests {
		out[i] = *m.guests[i].Clone()
	}
	return out, nil
}

func (m *mockGuestRepo) GetByID(_ context.Context, id string) (*model.Guest, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.guests {
		if m.guests[i].ID == id {
			return m.guests[i].Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockGuestRepo) Create(_ context.Context, guest *model.Guest) error {
	if m.err != nil {
		return m.err
	}
	m.guests = append(m.guests, *guest.Clone())
	return nil
}

func (m *mockGuestRepo) Update(_ context.Context, guest *model.Guest) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.guests {
		if m.guests[i].ID == guest.ID {
			m.guests[i] = *guest.Clone()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockGuestRepo) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.guests {
		if m.guests[i].ID == id {
			m.guests = append(m.guests[:i], m.guests[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockGuestRepo) DeleteAll(_ context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.guests = nil
	return nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	revoked map[string]time.Duration
	err     error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.revoked[jti] = ttl
	return nil
}

// ── helpers ──

// fakeClock returns successive instants one second apart
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func setupTestGuestService() (*guestService, *mockGuestRepo, *fakeClock) {
	guestRepo := newMockGuestRepo()
	clock := &fakeClock{t: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}
	seq := 0
	svc := &guestService{
		repo:   repository.NewRepository(guestRepo, nil),
		logger: zap.NewNop(),
		now:    clock.Now,
		newID: func() string {
			seq++
			return "guest-" + string(rune('a'+seq-1))
		},
	}
	return svc, guestRepo, clock
}

func strPtr(s string) *string { return &s }
