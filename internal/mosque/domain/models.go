// Package domain contains persistence models for the mosque registry.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Mosque represents a registered mosque (the tenant of every other record).
type Mosque struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex:ux_mosques_slug" json:"slug"`
	Address   string       `gorm:"type:text;not null" json:"address"`
	IsDefault bool         `gorm:"column:is_default" json:"is_default"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Mosque) TableName() string { return "mosques" }

// MosqueAdmin grants a user administrative rights over one mosque.
type MosqueAdmin struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	MosqueID  snowflake.ID `gorm:"not null;index;uniqueIndex:ux_mosque_admins,priority:1" json:"mosque_id"`
	UserID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_mosque_admins,priority:2" json:"user_id"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (MosqueAdmin) TableName() string { return "mosque_admins" }
