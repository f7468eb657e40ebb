package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/marcosaureliofarias/convite-aniversario/internal/dto"
	"github.com/marcosaureliofarias/convite-aniversario/internal/model"
	"github.com/marcosaureliofarias/convite-aniversario/internal/repository"
	apperrors "github.com/marcosaureliofarias/convite-aniversario/pkg/errors"
)

// ── guest errors ──

var (
	ErrGuestNotFound = errors.New("guest not found")
)

// GuestService owns the guest collection: ids, timestamps, trimming and
// the confirmed/confirmedAt pairing are all decided here.
type GuestService interface {
	List(ctx context.Context, req *dto.GuestListRequest) ([]model.Guest, error)
	ListConfirmed(ctx context.Context) ([]dto.ConfirmedGuestResponse, error)
	Get(ctx context.Context, id string) (*model.Guest, error)
	Create(ctx context.Context, req *dto.CreateGuestRequest) (*model.Guest, error)
	Update(ctx context.Context, id string, req *dto.UpdateGuestRequest) (*model.Guest, error)
	Delete(ctx context.Context, id string) error
	Confirm(ctx context.Context, id string) (*model.Guest, error)
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (*dto.InvitationStats, error)
	Import(ctx context.Context, req *dto.ImportRequest) (*dto.ImportResponse, error)
}

type guestService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewGuestService creates a GuestService
func NewGuestService(repo *repository.Repository, logger *zap.Logger) GuestService {
	return &guestService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// ────────────────────── List ──────────────────────

func (s *guestService) List(ctx context.Context, req *dto.GuestListRequest) ([]model.Guest, error) {
	guests, err := s.repo.Guest.List(ctx)
	if err != nil {
		s.logger.Error("list guests failed", zap.Error(err))
		return nil, apperrors.Unavailable("list guests", err)
	}
	if guests == nil {
		guests = []model.Guest{}
	}
	if req == nil {
		return guests, nil
	}

	guests = FilterGuests(guests, req.Query, req.Confirmed)
	if req.Sort == "status" {
		SortByStatus(guests)
	}
	return guests, nil
}

func (s *guestService) ListConfirmed(ctx context.Context) ([]dto.ConfirmedGuestResponse, error) {
	guests, err := s.repo.Guest.List(ctx)
	if err != nil {
		s.logger.Error("list guests failed", zap.Error(err))
		return nil, apperrors.Unavailable("list guests", err)
	}

	result := make([]dto.ConfirmedGuestResponse, 0, len(guests))
	for i := range guests {
		g := &guests[i]
		if !g.Confirmed || g.ConfirmedAt == nil {
			continue
		}
		result = append(result, dto.ConfirmedGuestResponse{
			ID:          g.ID,
			Name:        g.Name,
			ConfirmedAt: *g.ConfirmedAt,
		})
	}
	return result, nil
}

// ────────────────────── Get ──────────────────────

func (s *guestService) Get(ctx context.Context, id string) (*model.Guest, error) {
	guest, err := s.repo.Guest.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("get guest", id, err)
	}
	return guest, nil
}

// ────────────────────── Create ──────────────────────

func (s *guestService) Create(ctx context.Context, req *dto.CreateGuestRequest) (*model.Guest, error) {
	guest, err := s.buildGuest(guestFields{
		name:      req.Name,
		phone:     req.Phone,
		email:     req.Email,
		notes:     req.Notes,
		confirmed: req.Confirmed,
	}, s.timestamp())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Guest.Create(ctx, guest); err != nil {
		s.logger.Error("create guest failed", zap.String("id", guest.ID), zap.Error(err))
		return nil, apperrors.Unavailable("create guest", err)
	}

	s.logger.Info("guest created",
		zap.String("id", guest.ID),
		zap.Bool("confirmed", guest.Confirmed),
	)
	return guest, nil
}

type guestFields struct {
	name, phone  string
	email, notes *string
	confirmed    bool
	invitedAt    *time.Time
	confirmedAt  *time.Time
}

// buildGuest validates and normalizes a new record. invitedAt defaults to
// now; a confirmed guest without confirmedAt is confirmed at invitedAt.
// confirmedAt is dropped for unconfirmed guests.
func (s *guestService) buildGuest(f guestFields, now time.Time) (*model.Guest, error) {
	name := strings.TrimSpace(f.name)
	if name == "" {
		return nil, apperrors.Required("name")
	}
	phone := strings.TrimSpace(f.phone)
	if phone == "" {
		return nil, apperrors.Required("phone")
	}

	invitedAt := now
	if f.invitedAt != nil && !f.invitedAt.IsZero() {
		invitedAt = f.invitedAt.UTC().Truncate(time.Millisecond)
	}

	guest := &model.Guest{
		ID:        s.newID(),
		Name:      name,
		Phone:     phone,
		Email:     trimOptional(f.email),
		Notes:     trimOptional(f.notes),
		Confirmed: f.confirmed,
		InvitedAt: invitedAt,
	}
	if guest.Confirmed {
		confirmedAt := invitedAt
		if f.confirmedAt != nil && !f.confirmedAt.IsZero() {
			confirmedAt = f.confirmedAt.UTC().Truncate(time.Millisecond)
		}
		guest.ConfirmedAt = &confirmedAt
	}
	return guest, nil
}

// ────────────────────── Update ──────────────────────

func (s *guestService) Update(ctx context.Context, id string, req *dto.UpdateGuestRequest) (*model.Guest, error) {
	guest, err := s.repo.Guest.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("get guest", id, err)
	}

	if err := s.applyPatch(guest, req); err != nil {
		return nil, err
	}

	if err := s.repo.Guest.Update(ctx, guest); err != nil {
		return nil, s.mapRepoError("update guest", id, err)
	}
	return guest, nil
}

// applyPatch shallow-merges the keys present in req into guest.
// confirmedAt follows confirmed: stamped when confirmed becomes true
// without an explicit value, cleared when confirmed becomes false.
func (s *guestService) applyPatch(guest *model.Guest, req *dto.UpdateGuestRequest) error {
	if req.Name.Set {
		name := strings.TrimSpace(deref(req.Name.Value))
		if name == "" {
			return apperrors.Required("name")
		}
		guest.Name = name
	}
	if req.Phone.Set {
		phone := strings.TrimSpace(deref(req.Phone.Value))
		if phone == "" {
			return apperrors.Required("phone")
		}
		guest.Phone = phone
	}
	if req.Email.Set {
		guest.Email = trimOptional(req.Email.Value)
	}
	if req.Notes.Set {
		guest.Notes = trimOptional(req.Notes.Value)
	}

	switch {
	case req.Confirmed.Set && req.Confirmed.Value != nil && *req.Confirmed.Value:
		stamp := s.timestamp()
		if req.ConfirmedAt.Set && req.ConfirmedAt.Value != nil {
			stamp = req.ConfirmedAt.Value.UTC().Truncate(time.Millisecond)
		}
		guest.Confirmed = true
		guest.ConfirmedAt = &stamp
	case req.Confirmed.Set && req.Confirmed.Value != nil:
		guest.Confirmed = false
		guest.ConfirmedAt = nil
	case req.ConfirmedAt.Set && req.ConfirmedAt.Value != nil && guest.Confirmed:
		// re-dating an existing confirmation
		stamp := req.ConfirmedAt.Value.UTC().Truncate(time.Millisecond)
		guest.ConfirmedAt = &stamp
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *guestService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Guest.Delete(ctx, id); err != nil {
		return s.mapRepoError("delete guest", id, err)
	}
	s.logger.Info("guest deleted", zap.String("id", id))
	return nil
}

// ────────────────────── Confirm ──────────────────────

func (s *guestService) Confirm(ctx context.Context, id string) (*model.Guest, error) {
	now := s.timestamp()
	return s.Update(ctx, id, &dto.UpdateGuestRequest{
		Confirmed:   dto.Some(true),
		ConfirmedAt: dto.Some(now),
	})
}

// ────────────────────── Clear ──────────────────────

func (s *guestService) Clear(ctx context.Context) error {
	if err := s.repo.Guest.DeleteAll(ctx); err != nil {
		s.logger.Error("clear guests failed", zap.Error(err))
		return apperrors.Unavailable("clear guests", err)
	}
	s.logger.Warn("guest list cleared")
	return nil
}

// ────────────────────── Stats ──────────────────────

func (s *guestService) Stats(ctx context.Context) (*dto.InvitationStats, error) {
	guests, err := s.repo.Guest.List(ctx)
	if err != nil {
		s.logger.Error("list guests failed", zap.Error(err))
		return nil, apperrors.Unavailable("list guests", err)
	}
	stats := ComputeStats(guests)
	return &stats, nil
}

// ────────────────────── Import ──────────────────────

// Import replaces the collection with the given entries. Entries are
// validated before anything is removed; invalid ones are skipped. Each
// kept entry gets a fresh id and keeps its invitedAt/confirmedAt when the
// backup carries them. A storage failure after the clear leaves the
// entries written so far in place.
func (s *guestService) Import(ctx context.Context, req *dto.ImportRequest) (*dto.ImportResponse, error) {
	now := s.timestamp()
	result := &dto.ImportResponse{}

	guests := make([]*model.Guest, 0, len(req.Guests))
	for i := range req.Guests {
		e := &req.Guests[i]
		guest, err := s.buildGuest(guestFields{
			name:        e.Name,
			phone:       e.Phone,
			email:       e.Email,
			notes:       e.Notes,
			confirmed:   e.Confirmed,
			invitedAt:   e.InvitedAt,
			confirmedAt: e.ConfirmedAt,
		}, now)
		if err != nil {
			s.logger.Warn("import entry skipped", zap.Int("index", i), zap.Error(err))
			result.Skipped++
			continue
		}
		guests = append(guests, guest)
	}

	if err := s.Clear(ctx); err != nil {
		return nil, err
	}

	for _, guest := range guests {
		if err := s.repo.Guest.Create(ctx, guest); err != nil {
			s.logger.Error("import guest failed",
				zap.String("id", guest.ID),
				zap.Int("imported", result.Imported),
				zap.Error(err),
			)
			return nil, apperrors.Unavailable("import guests", err)
		}
		result.Imported++
	}

	s.logger.Info("guest list imported",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// ── helpers ──

// ComputeStats derives InvitationStats from a collection
func ComputeStats(guests []model.Guest) dto.InvitationStats {
	stats := dto.InvitationStats{Total: len(guests)}
	for i := range guests {
		if guests[i].Confirmed {
			stats.Confirmed++
		}
	}
	stats.Pending = stats.Total - stats.Confirmed
	if stats.Total > 0 {
		stats.ConfirmationRate = float64(stats.Confirmed) / float64(stats.Total) * 100
	}
	return stats
}

// FilterGuests applies the free-text query and the confirmed filter.
// The query matches name and email case-insensitively and phone verbatim.
func FilterGuests(guests []model.Guest, query string, confirmed *bool) []model.Guest {
	query = strings.TrimSpace(query)
	if query == "" && confirmed == nil {
		return guests
	}
	lower := strings.ToLower(query)

	out := make([]model.Guest, 0, len(guests))
	for _, g := range guests {
		if confirmed != nil && g.Confirmed != *confirmed {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(g.Name), lower) &&
			!strings.Contains(g.Phone, query) &&
			!(g.Email != nil && strings.Contains(strings.ToLower(*g.Email), lower)) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// SortByStatus orders confirmed guests first, then by name (pt-BR collation)
func SortByStatus(guests []model.Guest) {
	col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.SliceStable(guests, func(i, j int) bool {
		if guests[i].Confirmed != guests[j].Confirmed {
			return guests[i].Confirmed
		}
		return col.CompareString(guests[i].Name, guests[j].Name) < 0
	})
}

// timestamp current time in UTC at millisecond precision, the finest
// resolution every medium (JSON clients, MongoDB) keeps
func (s *guestService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *guestService) mapRepoError(op, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrGuestNotFound
	}
	s.logger.Error(op+" failed", zap.String("id", id), zap.Error(err))
	return apperrors.Unavailable(op, err)
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
