package model

import "time"

// Guest one invitee record, table/collection guests
type Guest struct {
	ID          string     `gorm:"type:varchar(36);primaryKey"   bson:"_id"         json:"id"`
	Name        string     `gorm:"type:varchar(200);not null"    bson:"name"        json:"name"`
	Phone       string     `gorm:"type:varchar(50);not null"     bson:"phone"       json:"phone"`
	Email       *string    `gorm:"type:varchar(200)"             bson:"email"       json:"email"`
	Notes       *string    `gorm:"type:text"                     bson:"notes"       json:"notes"`
	Confirmed   bool       `gorm:"not null;default:false"        bson:"confirmed"   json:"confirmed"`
	InvitedAt   time.Time  `gorm:"not null;index"                bson:"invitedAt"   json:"invitedAt"`
	ConfirmedAt *time.Time `gorm:"default:null"                  bson:"confirmedAt" json:"confirmedAt"`

	// Seq insertion order for media that cannot keep it themselves (sql, mongo).
	// Assigned by the medium; the postgres column comes from migrations.
	Seq int64 `gorm:"type:bigint AUTO_INCREMENT UNIQUE;autoIncrement" bson:"seq" json:"-"`
}

// TableName table name
func (Guest) TableName() string { return "guests" }

// Clone returns a deep copy so callers never share pointer fields with a medium
func (g *Guest) Clone() *Guest {
	c := *g
	if g.Email != nil {
		v := *g.Email
		c.Email = &v
	}
	if g.Notes != nil {
		v := *g.Notes
		c.Notes = &v
	}
	if g.ConfirmedAt != nil {
		v := *g.ConfirmedAt
		c.ConfirmedAt = &v
	}
	return &c
}
