package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// CreateRequest mirrors the createNotification payload of the UI contract.
type CreateRequest struct {
	UserID    snowflake.ID
	MosqueID  *snowflake.ID
	Title     string
	Message   string
	Type      string
	ActionURL string
	Metadata  map[string]any
}

// Service persists and serves notifications. Callers in workflow services
// treat Create as best-effort: they log failures and never propagate them.
type Service interface {
	Create(ctx context.Context, req CreateRequest) error
	ListByUser(ctx context.Context, userID snowflake.ID, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, userID, notificationID snowflake.ID) error
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID snowflake.ID, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, userID, notificationID snowflake.ID) error
}

var (
	ErrInvalidUser  = errors.New("invalid_user")
	ErrInvalidTitle = errors.New("invalid_title")
	ErrNotFound     = errors.New("notification_not_found")
)
