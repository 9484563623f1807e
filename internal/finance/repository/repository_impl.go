package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/masjidkita/masjidkita/internal/finance/domain"
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

func (r *repository) CreateAccount(ctx context.Context, a *domain.Account) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicateAccount
	}
	return err
}

func (r *repository) FindAccountByCode(ctx context.Context, mosqueID snowflake.ID, code string) (*domain.Account, error) {
	var a domain.Account
	err := r.db.WithContext(ctx).
		Where("mosque_id = ? AND code = ?", mosqueID, code).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) ListAccounts(ctx context.Context, mosqueID snowflake.ID) ([]domain.Account, error) {
	var out []domain.Account
	err := r.db.WithContext(ctx).
		Where("mosque_id = ?", mosqueID).
		Order("code ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) CreateEntry(ctx context.Context, e *domain.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindEntryBySource(ctx context.Context, mosqueID snowflake.ID, sourceType string, sourceID snowflake.ID) (*domain.Entry, error) {
	var e domain.Entry
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("mosque_id = ? AND source_type = ? AND source_id = ?", mosqueID, sourceType, sourceID).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) ListEntries(ctx context.Context, mosqueID snowflake.ID, from, to *time.Time) ([]domain.Entry, error) {
	q := r.db.WithContext(ctx).
		Preload("Lines").
		Where("mosque_id = ?", mosqueID).
		Order("entry_date DESC, id DESC")
	if from != nil {
		q = q.Where("entry_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("entry_date <= ?", *to)
	}
	var out []domain.Entry
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) TrialBalance(ctx context.Context, mosqueID snowflake.ID) ([]domain.AccountBalance, error) {
	var out []domain.AccountBalance
	err := r.db.WithContext(ctx).Raw(`
		SELECT a.id AS account_id,
		       a.code,
		       a.name,
		       a.type,
		       COALESCE(SUM(l.debit_cents), 0)  AS debit_cents,
		       COALESCE(SUM(l.credit_cents), 0) AS credit_cents
		FROM ledger_accounts a
		LEFT JOIN ledger_entry_lines l ON l.account_id = a.id
		WHERE a.mosque_id = ?
		GROUP BY a.id, a.code, a.name, a.type
		ORDER BY a.code ASC
	`, mosqueID).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
