// Package domain contains persistence models for in-app notifications.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Notification types emitted by the membership and reconciliation workflows.
const (
	TypeApplicationReceived = "application_received"
	TypeApplicationApproved = "application_approved"
	TypeApplicationRejected = "application_rejected"
	TypeApplicationDeleted  = "application_deleted"
	TypeMembershipWithdrawn = "membership_withdrawn"
	TypeMembershipSuspended = "membership_suspended"
	TypeMembershipRestored  = "membership_restored"
	TypeContributionMatched = "contribution_matched"
)

// Notification is one user-facing message row.
type Notification struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID      `gorm:"not null;index" json:"user_id"`
	MosqueID  *snowflake.ID     `gorm:"index" json:"mosque_id,omitempty"`
	Title     string            `gorm:"type:text;not null" json:"title"`
	Message   string            `gorm:"type:text;not null" json:"message"`
	Type      string            `gorm:"type:text;not null" json:"type"`
	ActionURL *string           `gorm:"column:action_url;type:text" json:"action_url,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	ReadAt    *time.Time        `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Notification) TableName() string { return "notifications" }
