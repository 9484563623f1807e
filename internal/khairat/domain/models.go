// Package domain contains khairat (mutual burial aid) program and
// contribution types. Amounts are integer cents.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Contribution sources.
const (
	SourceManual       = "manual"
	SourceLegacyImport = "legacy_import"
)

// Program is one yearly khairat collection round for a mosque.
type Program struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	MosqueID       snowflake.ID `gorm:"not null;uniqueIndex:ux_khairat_programs" json:"mosque_id"`
	Name           string       `gorm:"type:text;not null;uniqueIndex:ux_khairat_programs" json:"name"`
	Year           int          `gorm:"not null;uniqueIndex:ux_khairat_programs" json:"year"`
	AmountDueCents int64        `gorm:"column:amount_due_cents;not null;default:0" json:"amount_due_cents"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Program) TableName() string { return "khairat_programs" }

// Contribution is one payment by a member toward a program. Rows created by
// the legacy reconciliation workflow carry the originating record's id.
type Contribution struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	MosqueID       snowflake.ID  `gorm:"not null;index:ix_khairat_contributions_user" json:"mosque_id"`
	UserID         snowflake.ID  `gorm:"not null;index:ix_khairat_contributions_user" json:"user_id"`
	ProgramID      snowflake.ID  `gorm:"not null" json:"program_id"`
	AmountCents    int64         `gorm:"not null" json:"amount_cents"`
	PaidAt         time.Time     `gorm:"column:paid_at;type:date;not null" json:"paid_at"`
	Source         string        `gorm:"type:text;not null;default:'manual'" json:"source"`
	LegacyRecordID *snowflake.ID `gorm:"column:legacy_record_id" json:"legacy_record_id,omitempty"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Contribution) TableName() string { return "khairat_contributions" }
