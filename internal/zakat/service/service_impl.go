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
	"github.com/masjidkita/masjidkita/internal/config"
	financedomain "github.com/masjidkita/masjidkita/internal/finance/domain"
	"github.com/masjidkita/masjidkita/internal/zakat/domain"
)

const sourceTypeDistribution = "zakat_distribution"

type service struct {
	db         *gorm.DB
	node       *snowflake.Node
	repo       domain.Repository
	ledger     financedomain.Poster
	checker    *authz.Checker
	clock      clock.Clock
	nisabCents int64
	log        *zap.Logger
}

func NewService(
	gdb *gorm.DB,
	node *snowflake.Node,
	repo domain.Repository,
	ledger financedomain.Poster,
	checker *authz.Checker,
	clk clock.Clock,
	cfg config.Config,
	log *zap.Logger,
) domain.Service {
	return &service{
		db:         gdb,
		node:       node,
		repo:       repo,
		ledger:     ledger,
		checker:    checker,
		clock:      clk,
		nisabCents: int64(cfg.Zakat.NisabGoldGrams * float64(cfg.Zakat.GoldPriceCentsGram)),
		log:        log.Named("zakat"),
	}
}

func (s *service) Assess(ctx context.Context, userID snowflake.ID, req domain.AssessRequest) (*domain.Assessment, error) {
	if req.WealthCents < 0 || req.LiabilitiesCents < 0 {
		return nil, domain.ErrInvalidAmount
	}
	if req.Year < 2000 || req.Year > 2200 {
		return nil, domain.ErrInvalidYear
	}
	a := &domain.Assessment{
		ID:               s.node.Generate(),
		MosqueID:         req.MosqueID,
		UserID:           userID,
		Year:             req.Year,
		WealthCents:      req.WealthCents,
		LiabilitiesCents: req.LiabilitiesCents,
		NisabCents:       s.nisabCents,
		ZakatDueCents:    domain.ComputeDue(req.WealthCents, req.LiabilitiesCents, s.nisabCents),
	}
	return s.repo.UpsertAssessment(ctx, a)
}

func (s *service) GetAssessment(ctx context.Context, userID, mosqueID snowflake.ID, year int) (*domain.Assessment, error) {
	return s.repo.FindAssessment(ctx, mosqueID, userID, year)
}

func (s *service) ListAssessments(ctx context.Context, actor authz.Actor, mosqueID snowflake.ID, year int) ([]domain.Assessment, error) {
	if err := s.checker.RequireMosqueAdmin(ctx, actor, mosqueID); err != nil {
		return nil, err
	}
	return s.repo.ListAssessments(ctx, mosqueID, year)
}

func (s *service) Distribute(ctx context.Context, actor authz.Actor, req domain.DistributeRequest) (*domain.Distribution, error) {
	if err := s.checker.RequireMosqueAdmin(ctx, actor, req.MosqueID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.RecipientName)
	if name == "" {
		return nil, domain.ErrInvalidRecipient
	}
	if !domain.ValidAsnaf(req.AsnafCategory) {
		return nil, domain.ErrInvalidAsnaf
	}
	if req.AmountCents <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	distributedAt := req.DistributedAt
	if distributedAt.IsZero() {
		distributedAt = s.clock.Now()
	}
	distributedAt = dateOf(distributedAt)

	d := &domain.Distribution{
		ID:            s.node.Generate(),
		MosqueID:      req.MosqueID,
		RecipientName: name,
		AsnafCategory: req.AsnafCategory,
		AmountCents:   req.AmountCents,
		DistributedAt: distributedAt,
		Notes:         strings.TrimSpace(req.Notes),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateDistribution(ctx, d); err != nil {
			return fmt.Errorf("create distribution: %w", err)
		}
		_, err := s.ledger.Post(ctx, tx, financedomain.PostRequest{
			MosqueID:    req.MosqueID,
			SourceType:  sourceTypeDistribution,
			SourceID:    d.ID,
			EntryDate:   distributedAt,
			Description: fmt.Sprintf("Zakat distribution to %s (%s)", name, req.AsnafCategory),
			Lines: []financedomain.LineInput{
				{AccountCode: financedomain.CodeZakatDistributed, DebitCents: req.AmountCents},
				{AccountCode: financedomain.CodeCash, CreditCents: req.AmountCents},
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) ListDistributions(ctx context.Context, actor authz.Actor, mosqueID snowflake.ID) ([]domain.Distribution, error) {
	if err := s.checker.RequireMosqueAdmin(ctx, actor, mosqueID); err != nil {
		return nil, err
	}
	return s.repo.ListDistributions(ctx, mosqueID)
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
