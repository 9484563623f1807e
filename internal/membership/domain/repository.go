package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, m *Membership) error
	FindByID(ctx context.Context, id snowflake.ID) (*Membership, error)
	// FindLatest returns the most recent record for the pair, regardless of
	// status, or ErrNotFound.
	FindLatest(ctx context.Context, d Domain, mosqueID, userID snowflake.ID) (*Membership, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, id snowflake.ID) error
	ListByMosque(ctx context.Context, d Domain, mosqueID snowflake.ID, status *Status) ([]Membership, error)
	ListByUser(ctx context.Context, userID snowflake.ID) ([]Membership, error)
	// NextMembershipNumber increments and returns the per-mosque sequence.
	// Must be called inside the approval transaction.
	NextMembershipNumber(ctx context.Context, mosqueID snowflake.ID, d Domain) (int64, error)
}
