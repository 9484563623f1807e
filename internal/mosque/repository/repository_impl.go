package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/masjidkita/masjidkita/internal/mosque/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, mosque domain.Mosque) error {
	return r.db.WithContext(ctx).Create(&mosque).Error
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Mosque, error) {
	var mosque domain.Mosque
	err := r.db.WithContext(ctx).First(&mosque, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidMosque
		}
		return nil, err
	}
	return &mosque, nil
}

func (r *repository) List(ctx context.Context) ([]domain.Mosque, error) {
	var mosques []domain.Mosque
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&mosques).Error
	if err != nil {
		return nil, err
	}
	return mosques, nil
}

func (r *repository) AddAdmin(ctx context.Context, admin domain.MosqueAdmin) error {
	return r.db.WithContext(ctx).Create(&admin).Error
}

func (r *repository) IsAdmin(ctx context.Context, mosqueID, userID snowflake.ID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.MosqueAdmin{}).
		Where("mosque_id = ? AND user_id = ?", mosqueID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
