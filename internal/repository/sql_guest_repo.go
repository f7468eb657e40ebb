package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/marcosaureliofarias/convite-aniversario/internal/model"
)

type sqlGuestRepo struct {
	db *gorm.DB
}

// NewSQLGuestRepo creates a GuestRepository over a gorm connection
// (postgres or mysql)
func NewSQLGuestRepo(db *gorm.DB) GuestRepository {
	return &sqlGuestRepo{db: db}
}

func (r *sqlGuestRepo) List(ctx context.Context) ([]model.Guest, error) {
	guests := make([]model.Guest, 0)
	err := r.db.WithContext(ctx).
		Order("seq ASC").
		Find(&guests).Error
	if err != nil {
		return nil, err
	}
	for i := range guests {
		normalizeTimes(&guests[i])
	}
	return guests, nil
}

func (r *sqlGuestRepo) GetByID(ctx context.Context, id string) (*model.Guest, error) {
	var guest model.Guest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&guest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	normalizeTimes(&guest)
	return &guest, nil
}

func (r *sqlGuestRepo) Create(ctx context.Context, guest *model.Guest) error {
	return r.db.WithContext(ctx).Create(guest).Error
}

func (r *sqlGuestRepo) Update(ctx context.Context, guest *model.Guest) error {
	res := r.db.WithContext(ctx).
		Model(&model.Guest{}).
		Where("id = ?", guest.ID).
		Select("name", "phone", "email", "notes", "confirmed", "confirmed_at").
		Updates(guest)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqlGuestRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Guest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqlGuestRepo) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.Guest{}).Error
}

// normalizeTimes drivers hand back timestamps in the local zone; the
// collection is kept in UTC so records compare equal across media.
func normalizeTimes(g *model.Guest) {
	g.InvitedAt = g.InvitedAt.UTC()
	if g.ConfirmedAt != nil {
		t := g.ConfirmedAt.UTC()
		g.ConfirmedAt = &t
	}
}
