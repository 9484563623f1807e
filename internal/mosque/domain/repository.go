package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, mosque Mosque) error
	GetByID(ctx context.Context, id snowflake.ID) (*Mosque, error)
	List(ctx context.Context) ([]Mosque, error)
	AddAdmin(ctx context.Context, admin MosqueAdmin) error
	IsAdmin(ctx context.Context, mosqueID, userID snowflake.ID) (bool, error)
}
