package dto

import (
	"time"

	"github.com/marcosaureliofarias/convite-aniversario/internal/model"
)

// ── guest DTOs ──

// CreateGuestRequest create / self-register body.
// Required-field checks happen in the service after trimming.
type CreateGuestRequest struct {
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email"`
	Notes     *string `json:"notes"`
	Confirmed bool    `json:"confirmed"`
}

// UpdateGuestRequest partial update. Keys absent from the body are left
// untouched; id and invitedAt are not accepted.
type UpdateGuestRequest struct {
	Name        Optional[string]    `json:"name"`
	Phone       Optional[string]    `json:"phone"`
	Email       Optional[string]    `json:"email"`
	Notes       Optional[string]    `json:"notes"`
	Confirmed   Optional[bool]      `json:"confirmed"`
	ConfirmedAt Optional[time.Time] `json:"confirmedAt"`
}

// GuestListRequest list query
type GuestListRequest struct {
	Query     string `form:"q"`
	Confirmed *bool  `form:"confirmed"`
	Sort      string `form:"sort" binding:"omitempty,oneof=status insertion"`
}

// ConfirmedGuestResponse public view of a confirmed guest
type ConfirmedGuestResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

// InvitationStats derived counters
type InvitationStats struct {
	Total            int     `json:"total"`
	Confirmed        int     `json:"confirmed"`
	Pending          int     `json:"pending"`
	ConfirmationRate float64 `json:"confirmationRate"`
}

// ── backup / import ──

// EventInfo event header carried in backups
type EventInfo struct {
	Name     string    `json:"name"`
	StartsAt time.Time `json:"startsAt"`
	Location string    `json:"location"`
	Host     string    `json:"host,omitempty"`
}

// Backup full JSON export
type Backup struct {
	Event      EventInfo       `json:"event"`
	Stats      InvitationStats `json:"stats"`
	Guests     []model.Guest   `json:"guests"`
	ExportedAt time.Time       `json:"exportedAt"`
}

// ImportRequest restore body; accepts the guests array of a Backup
type ImportRequest struct {
	Guests []ImportGuestRequest `json:"guests" binding:"required"`
}

// ImportGuestRequest one restored entry. Name and phone follow the create
// rules; invitedAt and confirmedAt are kept when present. Any backup id is
// ignored and a fresh one assigned.
type ImportGuestRequest struct {
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Email       *string    `json:"email"`
	Notes       *string    `json:"notes"`
	Confirmed   bool       `json:"confirmed"`
	InvitedAt   *time.Time `json:"invitedAt"`
	ConfirmedAt *time.Time `json:"confirmedAt"`
}

// ImportResponse restore result
type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
