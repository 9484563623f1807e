package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/masjidkita/masjidkita/internal/khairat/domain"
	"github.com/masjidkita/masjidkita/pkg/db"
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

func (r *repository) CreateProgram(ctx context.Context, p *domain.Program) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicateProgram
	}
	return err
}

func (r *repository) FindProgramByID(ctx context.Context, id snowflake.ID) (*domain.Program, error) {
	var p domain.Program
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProgramNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListPrograms(ctx context.Context, mosqueID snowflake.ID) ([]domain.Program, error) {
	var out []domain.Program
	err := r.db.WithContext(ctx).
		Where("mosque_id = ?", mosqueID).
		Order("year DESC, name ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) CreateContribution(ctx context.Context, c *domain.Contribution) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) FindContributionByID(ctx context.Context, id snowflake.ID) (*domain.Contribution, error) {
	var c domain.Contribution
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrContributionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) DeleteContribution(ctx context.Context, id snowflake.ID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Contribution{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrContributionNotFound
	}
	return nil
}

func (r *repository) ListContributionsByUser(ctx context.Context, mosqueID, userID snowflake.ID) ([]domain.Contribution, error) {
	var out []domain.Contribution
	err := r.db.WithContext(ctx).
		Where("mosque_id = ? AND user_id = ?", mosqueID, userID).
		Order("paid_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListContributionsByProgram(ctx context.Context, programID snowflake.ID) ([]domain.Contribution, error) {
	var out []domain.Contribution
	err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("paid_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
