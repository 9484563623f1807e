// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Platform-level roles. Mosque-level administration is a separate
// relationship (mosque_admins), not a value of this field.
const (
	RoleMember        = "member"
	RolePlatformAdmin = "platform_admin"
)

// User represents a system user account.
type User struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	Email            string       `gorm:"type:text;not null;uniqueIndex:ux_users_email"`
	DisplayName      string       `gorm:"type:text;not null"`
	ICPassportNumber *string      `gorm:"column:ic_passport_number;type:text"`
	Role             string       `gorm:"type:text;not null;default:'member'"`
	PasswordHash     *string      `gorm:"type:text"`
	IsDefault        bool         `gorm:"column:is_default"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// IsPlatformAdmin reports whether the user holds the platform admin role.
func (u User) IsPlatformAdmin() bool { return u.Role == RolePlatformAdmin }

// Session represents a persisted login session.
type Session struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;index"`
	TokenHash string       `gorm:"column:token_hash;type:text;not null;uniqueIndex"`
	ExpiresAt time.Time    `gorm:"column:expires_at;not null;index"`
	RevokedAt *time.Time   `gorm:"column:revoked_at"`
	CreatedAt time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }
