// Package domain contains zakat assessment and distribution types. Amounts
// are integer cents; the due calculation never touches floats.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Assessment is one member's zakat calculation for a calendar year.
// Re-assessing the same year overwrites the stored figures.
type Assessment struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	MosqueID         snowflake.ID `gorm:"not null;uniqueIndex:ux_zakat_assessments" json:"mosque_id"`
	UserID           snowflake.ID `gorm:"not null;uniqueIndex:ux_zakat_assessments" json:"user_id"`
	Year             int          `gorm:"not null;uniqueIndex:ux_zakat_assessments" json:"year"`
	WealthCents      int64        `gorm:"not null" json:"wealth_cents"`
	LiabilitiesCents int64        `gorm:"not null;default:0" json:"liabilities_cents"`
	NisabCents       int64        `gorm:"not null" json:"nisab_cents"`
	ZakatDueCents    int64        `gorm:"not null" json:"zakat_due_cents"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Assessment) TableName() string { return "zakat_assessments" }

// Asnaf categories eligible for zakat distribution.
const (
	AsnafFakir        = "fakir"
	AsnafMiskin       = "miskin"
	AsnafAmil         = "amil"
	AsnafMuallaf      = "muallaf"
	AsnafRiqab        = "riqab"
	AsnafGharimin     = "gharimin"
	AsnafFisabilillah = "fisabilillah"
	AsnafIbnuSabil    = "ibnu_sabil"
)

// ValidAsnaf reports whether the category is one of the eight recognized
// recipient classes.
func ValidAsnaf(category string) bool {
	switch category {
	case AsnafFakir, AsnafMiskin, AsnafAmil, AsnafMuallaf,
		AsnafRiqab, AsnafGharimin, AsnafFisabilillah, AsnafIbnuSabil:
		return true
	default:
		return false
	}
}

// Distribution is one payout from the mosque's zakat fund.
type Distribution struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	MosqueID      snowflake.ID `gorm:"not null;index" json:"mosque_id"`
	RecipientName string       `gorm:"type:text;not null" json:"recipient_name"`
	AsnafCategory string       `gorm:"column:asnaf_category;type:text;not null" json:"asnaf_category"`
	AmountCents   int64        `gorm:"not null" json:"amount_cents"`
	DistributedAt time.Time    `gorm:"column:distributed_at;type:date;not null" json:"distributed_at"`
	Notes         string       `gorm:"type:text;not null;default:''" json:"notes"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Distribution) TableName() string { return "zakat_distributions" }

// ComputeDue applies the 2.5% rate to net wealth above nisab. Below nisab
// nothing is due.
func ComputeDue(wealthCents, liabilitiesCents, nisabCents int64) int64 {
	net := wealthCents - liabilitiesCents
	if net < nisabCents || net <= 0 {
		return 0
	}
	return net * 25 / 1000
}
