package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/masjidkita/masjidkita/internal/finance/domain"
	"github.com/masjidkita/masjidkita/pkg/db"
)

type service struct {
	db   *gorm.DB
	node *snowflake.Node
	repo domain.Repository
	log  *zap.Logger
}

func NewService(gdb *gorm.DB, node *snowflake.Node, repo domain.Repository, log *zap.Logger) domain.Service {
	return &service{db: gdb, node: node, repo: repo, log: log.Named("finance")}
}

func (s *service) CreateAccount(ctx context.Context, mosqueID snowflake.ID, code, name string, typ domain.AccountType) (*domain.Account, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" || name == "" || !typ.Valid() {
		return nil, domain.ErrInvalidAccount
	}
	a := &domain.Account{
		ID:       s.node.Generate(),
		MosqueID: mosqueID,
		Code:     code,
		Name:     name,
		Type:     typ,
	}
	if err := s.repo.CreateAccount(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) ListAccounts(ctx context.Context, mosqueID snowflake.ID) ([]domain.Account, error) {
	return s.repo.ListAccounts(ctx, mosqueID)
}

func (s *service) ListEntries(ctx context.Context, mosqueID snowflake.ID, from, to *time.Time) ([]domain.Entry, error) {
	return s.repo.ListEntries(ctx, mosqueID, from, to)
}

func (s *service) TrialBalance(ctx context.Context, mosqueID snowflake.ID) ([]domain.AccountBalance, error) {
	return s.repo.TrialBalance(ctx, mosqueID)
}

// Post records a balanced journal entry. When tx is non-nil the entry joins
// the caller's transaction so the business write and its ledger entry commit
// together. Reposting an already-recorded source returns the existing entry.
func (s *service) Post(ctx context.Context, tx *gorm.DB, req domain.PostRequest) (*domain.Entry, error) {
	if len(req.Lines) == 0 {
		return nil, domain.ErrEmptyEntry
	}
	var debits, credits int64
	for _, l := range req.Lines {
		if l.DebitCents < 0 || l.CreditCents < 0 {
			return nil, domain.ErrInvalidAmount
		}
		if (l.DebitCents > 0) == (l.CreditCents > 0) {
			return nil, domain.ErrInvalidAmount
		}
		debits += l.DebitCents
		credits += l.CreditCents
	}
	if debits != credits {
		return nil, domain.ErrUnbalancedEntry
	}

	gdb := s.db
	if tx != nil {
		gdb = tx
	}
	repo := s.repo.WithTx(gdb)

	entry := &domain.Entry{
		ID:          s.node.Generate(),
		MosqueID:    req.MosqueID,
		SourceType:  req.SourceType,
		SourceID:    req.SourceID,
		EntryDate:   req.EntryDate,
		Description: req.Description,
	}
	for _, l := range req.Lines {
		account, err := repo.FindAccountByCode(ctx, req.MosqueID, l.AccountCode)
		if err != nil {
			return nil, fmt.Errorf("resolve account %s: %w", l.AccountCode, err)
		}
		entry.Lines = append(entry.Lines, domain.EntryLine{
			ID:          s.node.Generate(),
			EntryID:     entry.ID,
			AccountID:   account.ID,
			DebitCents:  l.DebitCents,
			CreditCents: l.CreditCents,
		})
	}

	if err := repo.CreateEntry(ctx, entry); err != nil {
		if db.IsDuplicateKeyErr(err) {
			existing, ferr := repo.FindEntryBySource(ctx, req.MosqueID, req.SourceType, req.SourceID)
			if ferr != nil {
				return nil, errors.Join(err, ferr)
			}
			s.log.Debug("ledger entry already recorded",
				zap.String("source_type", req.SourceType),
				zap.Int64("source_id", int64(req.SourceID)),
			)
			return existing, nil
		}
		return nil, fmt.Errorf("post ledger entry: %w", err)
	}
	return entry, nil
}
