package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/masjidkita/masjidkita/internal/legacy/domain"
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

func (r *repository) InsertRecords(ctx context.Context, records []domain.Record) error {
	return r.db.WithContext(ctx).CreateInBatches(records, 200).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Record, error) {
	var rec domain.Record
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, mosqueID snowflake.ID, includeMatched bool) ([]domain.Record, error) {
	q := r.db.WithContext(ctx).
		Where("mosque_id = ?", mosqueID).
		Order("payment_date DESC, id DESC")
	if !includeMatched {
		q = q.Where("matched = ?", false)
	}
	var out []domain.Record
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Candidates(ctx context.Context, record *domain.Record, all bool) ([]domain.Candidate, error) {
	var out []domain.Candidate
	var err error
	if all {
		err = r.db.WithContext(ctx).Raw(`
			SELECT u.id AS user_id,
			       u.display_name,
			       u.email,
			       u.ic_passport_number,
			       CASE WHEN u.ic_passport_number = ? AND ? <> '' THEN 1 ELSE 0 END AS ic_match
			FROM users u
			ORDER BY ic_match DESC, u.display_name ASC
		`, record.ICPassportNumber, record.ICPassportNumber).Scan(&out).Error
	} else {
		err = r.db.WithContext(ctx).Raw(`
			SELECT DISTINCT u.id AS user_id,
			       u.display_name,
			       u.email,
			       u.ic_passport_number,
			       CASE WHEN u.ic_passport_number = ? AND ? <> '' THEN 1 ELSE 0 END AS ic_match
			FROM users u
			JOIN memberships m ON m.user_id = u.id
			WHERE m.mosque_id = ?
			ORDER BY ic_match DESC, u.display_name ASC
		`, record.ICPassportNumber, record.ICPassportNumber, record.MosqueID).Scan(&out).Error
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
