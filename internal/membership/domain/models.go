// Package domain contains the membership application lifecycle types shared
// by the kariah and khairat registers.
package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Domain selects which register a membership record belongs to.
type Domain string

const (
	DomainKariah  Domain = "kariah"
	DomainKhairat Domain = "khairat"
)

// Valid reports whether the domain is a known register.
func (d Domain) Valid() bool {
	return d == DomainKariah || d == DomainKhairat
}

// Status is the unified lifecycle state. The application vocabulary
// (pending/rejected) and the membership vocabulary (active/inactive/
// suspended) share one enum; "approved" is represented as active.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusActive      Status = "active"
	StatusRejected    Status = "rejected"
	StatusInactive    Status = "inactive"
	StatusSuspended   Status = "suspended"
)

// Live reports whether the status occupies the one-live-record-per-pair
// slot guarded by ux_memberships_live.
func (s Status) Live() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusActive:
		return true
	default:
		return false
	}
}

// Reappliable reports whether a new submission reactivates this record in
// place instead of creating a new one.
func (s Status) Reappliable() bool {
	return s == StatusRejected || s == StatusInactive
}

// Membership is the single mutable record per (domain, mosque, user) pair.
type Membership struct {
	ID                snowflake.ID  `gorm:"primaryKey" json:"id"`
	Domain            Domain        `gorm:"type:text;not null" json:"domain"`
	MosqueID          snowflake.ID  `gorm:"not null;index" json:"mosque_id"`
	UserID            snowflake.ID  `gorm:"not null;index" json:"user_id"`
	Status            Status        `gorm:"type:text;not null" json:"status"`
	ICPassportNumber  *string       `gorm:"column:ic_passport_number;type:text" json:"ic_passport_number,omitempty"`
	ApplicationReason *string       `gorm:"column:application_reason;type:text" json:"application_reason,omitempty"`
	AdminNotes        *string       `gorm:"column:admin_notes;type:text" json:"admin_notes,omitempty"`
	ReviewedBy        *snowflake.ID `gorm:"column:reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time    `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	JoinedDate        *time.Time    `gorm:"column:joined_date;type:date" json:"joined_date,omitempty"`
	MembershipNumber  *string       `gorm:"column:membership_number;type:text" json:"membership_number,omitempty"`
	CreatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "memberships" }

// MembershipSequence backs per-mosque membership number assignment.
type MembershipSequence struct {
	MosqueID  snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	Domain    Domain       `gorm:"primaryKey;type:text"`
	NextValue int64        `gorm:"not null;default:1"`
}

// TableName sets the database table name.
func (MembershipSequence) TableName() string { return "membership_sequences" }

// FormatMembershipNumber renders the assigned sequence value in the register
// prefix convention (KRH for kariah, KHT for khairat).
func FormatMembershipNumber(d Domain, seq int64) string {
	prefix := "KRH"
	if d == DomainKhairat {
		prefix = "KHT"
	}
	return fmt.Sprintf("%s-%06d", prefix, seq)
}
