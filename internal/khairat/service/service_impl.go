package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/masjidkita/masjidkita/internal/authz"
	"github.com/masjidkita/masjidkita/internal/clock"
	financedomain "github.com/masjidkita/masjidkita/internal/finance/domain"
	"github.com/masjidkita/masjidkita/internal/khairat/domain"
)

// Ledger source types for contribution entries.
const (
	sourceTypeContribution         = "khairat_contribution"
	sourceTypeContributionReversal = "khairat_contribution_reversal"
)

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type service struct {
	db      *gorm.DB
	node    *snowflake.Node
	repo    domain.Repository
	ledger  financedomain.Poster
	checker *authz.Checker
	clock   clock.Clock
	log     *zap.Logger
}

func NewService(
	gdb *gorm.DB,
	node *snowflake.Node,
	repo domain.Repository,
	ledger financedomain.Poster,
	checker *authz.Checker,
	clk clock.Clock,
	log *zap.Logger,
) domain.Service {
	return &service{
		db:      gdb,
		node:    node,
		repo:    repo,
		ledger:  ledger,
		checker: checker,
		clock:   clk,
		log:     log.Named("khairat"),
	}
}

func (s *service) CreateProgram(ctx context.Context, actor authz.Actor, req domain.CreateProgramRequest) (*domain.Program, error) {
	if err := s.checker.RequireMosqueAdmin(ctx, actor, req.MosqueID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Year < 2000 || req.Year > 2200 {
		return nil, domain.ErrInvalidProgram
	}
	if req.AmountDueCents < 0 {
		return nil, domain.ErrInvalidAmount
	}
	p := &domain.Program{
		ID:             s.node.Generate(),
		MosqueID:       req.MosqueID,
		Name:           name,
		Year:           req.Year,
		AmountDueCents: req.AmountDueCents,
	}
	if err := s.repo.CreateProgram(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ListPrograms(ctx context.Context, mosqueID snowflake.ID) ([]domain.Program, error) {
	return s.repo.ListPrograms(ctx, mosqueID)
}

func (s *service) RecordContribution(ctx context.Context, actor authz.Actor, req domain.RecordContributionRequest) (*domain.Contribution, error) {
	if err := s.checker.RequireMosqueAdmin(ctx, actor, req.MosqueID); err != nil {
		return nil, err
	}
	var out *domain.Contribution
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.record(ctx, tx, req, domain.SourceManual, nil)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) RecordImported(ctx context.Context, tx *gorm.DB, legacyRecordID snowflake.ID, req domain.RecordContributionRequest) (*domain.Contribution, error) {
	return s.record(ctx, tx, req, domain.SourceLegacyImport, &legacyRecordID)
}

// record validates the contribution, stores it, and posts the matching
// ledger entry (debit cash, credit khairat income) under tx.
func (s *service) record(ctx context.Context, tx *gorm.DB, req domain.RecordContributionRequest, source string, legacyRecordID *snowflake.ID) (*domain.Contribution, error) {
	if req.AmountCents <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	repo := s.repo.WithTx(tx)
	program, err := repo.FindProgramByID(ctx, req.ProgramID)
	if err != nil {
		return nil, err
	}
	if program.MosqueID != req.MosqueID {
		return nil, domain.ErrProgramNotFound
	}

	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = s.clock.Now()
	}
	paidAt = dateOf(paidAt)

	c := &domain.Contribution{
		ID:             s.node.Generate(),
		MosqueID:       req.MosqueID,
		UserID:         req.UserID,
		ProgramID:      req.ProgramID,
		AmountCents:    req.AmountCents,
		PaidAt:         paidAt,
		Source:         source,
		LegacyRecordID: legacyRecordID,
	}
	if err := repo.CreateContribution(ctx, c); err != nil {
		return nil, fmt.Errorf("create contribution: %w", err)
	}

	_, err = s.ledger.Post(ctx, tx, financedomain.PostRequest{
		MosqueID:    req.MosqueID,
		SourceType:  sourceTypeContribution,
		SourceID:    c.ID,
		EntryDate:   paidAt,
		Description: fmt.Sprintf("Khairat contribution %s %d", program.Name, program.Year),
		Lines: []financedomain.LineInput{
			{AccountCode: financedomain.CodeCash, DebitCents: req.AmountCents},
			{AccountCode: financedomain.CodeKhairatIncome, CreditCents: req.AmountCents},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("post contribution entry: %w", err)
	}
	return c, nil
}

func (s *service) ListContributionsByUser(ctx context.Context, actor authz.Actor, mosqueID, userID snowflake.ID) ([]domain.Contribution, error) {
	if err := s.checker.RequireOwnerOrMosqueAdmin(ctx, actor, userID, mosqueID); err != nil {
		return nil, err
	}
	return s.repo.ListContributionsByUser(ctx, mosqueID, userID)
}

func (s *service) ListContributionsByProgram(ctx context.Context, actor authz.Actor, programID snowflake.ID) ([]domain.Contribution, error) {
	program, err := s.repo.FindProgramByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if err := s.checker.RequireMosqueAdmin(ctx, actor, program.MosqueID); err != nil {
		return nil, err
	}
	return s.repo.ListContributionsByProgram(ctx, programID)
}

func (s *service) GetContribution(ctx context.Context, contributionID snowflake.ID) (*domain.Contribution, error) {
	return s.repo.FindContributionByID(ctx, contributionID)
}

// DeleteContribution removes a contribution and posts a reversing ledger
// entry so the books stay append-only.
func (s *service) DeleteContribution(ctx context.Context, tx *gorm.DB, contributionID snowflake.ID) error {
	repo := s.repo.WithTx(tx)
	c, err := repo.FindContributionByID(ctx, contributionID)
	if err != nil {
		return err
	}
	if err := repo.DeleteContribution(ctx, contributionID); err != nil {
		return err
	}
	_, err = s.ledger.Post(ctx, tx, financedomain.PostRequest{
		MosqueID:    c.MosqueID,
		SourceType:  sourceTypeContributionReversal,
		SourceID:    c.ID,
		EntryDate:   dateOf(s.clock.Now()),
		Description: "Khairat contribution reversal",
		Lines: []financedomain.LineInput{
			{AccountCode: financedomain.CodeKhairatIncome, DebitCents: c.AmountCents},
			{AccountCode: financedomain.CodeCash, CreditCents: c.AmountCents},
		},
	})
	if err != nil {
		return fmt.Errorf("post reversal entry: %w", err)
	}
	return nil
}
