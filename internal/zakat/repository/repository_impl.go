package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/masjidkita/masjidkita/internal/zakat/domain"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(gdb *gorm.DB) domain.Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) UpsertAssessment(ctx context.Context, a *domain.Assessment) (*domain.Assessment, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "mosque_id"}, {Name: "user_id"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"wealth_cents", "liabilities_cents", "nisab_cents", "zakat_due_cents",
			}),
		}).
		Create(a).Error
	if err != nil {
		return nil, err
	}
	return r.FindAssessment(ctx, a.MosqueID, a.UserID, a.Year)
}

func (r *repository) FindAssessment(ctx context.Context, mosqueID, userID snowflake.ID, year int) (*domain.Assessment, error) {
	var a domain.Assessment
	err := r.db.WithContext(ctx).
		Where("mosque_id = ? AND user_id = ? AND year = ?", mosqueID, userID, year).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAssessmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) ListAssessments(ctx context.Context, mosqueID snowflake.ID, year int) ([]domain.Assessment, error) {
	var out []domain.Assessment
	err := r.db.WithContext(ctx).
		Where("mosque_id = ? AND year = ?", mosqueID, year).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) CreateDistribution(ctx context.Context, d *domain.Distribution) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *repository) ListDistributions(ctx context.Context, mosqueID snowflake.ID) ([]domain.Distribution, error) {
	var out []domain.Distribution
	err := r.db.WithContext(ctx).
		Where("mosque_id = ?", mosqueID).
		Order("distributed_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
