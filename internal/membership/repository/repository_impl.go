package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/masjidkita/masjidkita/internal/membership/domain"
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

func (r *repository) Insert(ctx context.Context, m *domain.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Membership, error) {
	var m domain.Membership
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) FindLatest(ctx context.Context, d domain.Domain, mosqueID, userID snowflake.ID) (*domain.Membership, error) {
	var m domain.Membership
	err := r.db.WithContext(ctx).
		Where("domain = ? AND mosque_id = ? AND user_id = ?", d, mosqueID, userID).
		Order("created_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Membership{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repository) ListByMosque(ctx context.Context, d domain.Domain, mosqueID snowflake.ID, status *domain.Status) ([]domain.Membership, error) {
	q := r.db.WithContext(ctx).
		Where("domain = ? AND mosque_id = ?", d, mosqueID).
		Order("created_at DESC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var out []domain.Membership
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListByUser(ctx context.Context, userID snowflake.ID) ([]domain.Membership, error) {
	var out []domain.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NextMembershipNumber upserts the (mosque, domain) counter row and claims
// the current value. Runs under the caller's transaction so a failed
// approval never burns a number.
func (r *repository) NextMembershipNumber(ctx context.Context, mosqueID snowflake.ID, d domain.Domain) (int64, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "mosque_id"}, {Name: "domain"}},
			DoUpdates: clause.Assignments(map[string]any{"next_value": gorm.Expr("membership_sequences.next_value + 1")}),
		}).
		Create(&domain.MembershipSequence{MosqueID: mosqueID, Domain: d, NextValue: 2}).Error
	if err != nil {
		return 0, err
	}

	var seq domain.MembershipSequence
	err = r.db.WithContext(ctx).
		Where("mosque_id = ? AND domain = ?", mosqueID, d).
		First(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq.NextValue - 1, nil
}
