// Package domain contains legacy khairat record types. These are rows
// imported from the mosque's old paper or spreadsheet registers, waiting to
// be matched to real user accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Record is one imported legacy payment row.
type Record struct {
	ID                    snowflake.ID  `gorm:"primaryKey" json:"id"`
	MosqueID              snowflake.ID  `gorm:"not null;index:ix_legacy_records_mosque" json:"mosque_id"`
	ImportBatchID         string        `gorm:"column:import_batch_id;type:text;not null" json:"import_batch_id"`
	FullName              string        `gorm:"type:text;not null" json:"full_name"`
	ICPassportNumber      string        `gorm:"column:ic_passport_number;type:text;not null;default:''" json:"ic_passport_number"`
	AmountCents           int64         `gorm:"not null" json:"amount_cents"`
	PaymentDate           time.Time     `gorm:"column:payment_date;type:date;not null" json:"payment_date"`
	ReceiptNo             string        `gorm:"column:receipt_no;type:text;not null;default:''" json:"receipt_no"`
	Matched               bool          `gorm:"not null;default:false;index:ix_legacy_records_mosque" json:"matched"`
	MatchedUserID         *snowflake.ID `gorm:"column:matched_user_id" json:"matched_user_id,omitempty"`
	MatchedContributionID *snowflake.ID `gorm:"column:matched_contribution_id" json:"matched_contribution_id,omitempty"`
	ImportedAt            time.Time     `gorm:"column:imported_at;not null;default:CURRENT_TIMESTAMP" json:"imported_at"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "legacy_khairat_records" }

// Candidate is a user proposed as the owner of a legacy record. ICMatch is
// true when the user's identity number equals the record's.
type Candidate struct {
	UserID           snowflake.ID `json:"user_id"`
	DisplayName      string       `json:"display_name"`
	Email            string       `json:"email"`
	ICPassportNumber *string      `json:"ic_passport_number,omitempty"`
	ICMatch          bool         `json:"ic_match"`
}
