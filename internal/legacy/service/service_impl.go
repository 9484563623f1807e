package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/masjidkita/masjidkita/internal/authz"
	"github.com/masjidkita/masjidkita/internal/clock"
	khairatdomain "github.com/masjidkita/masjidkita/internal/khairat/domain"
	"github.com/masjidkita/masjidkita/internal/legacy/domain"
	notifdomain "github.com/masjidkita/masjidkita/internal/notification/domain"
)

const maxImportRows = 10000

type service struct {
	db       *gorm.DB
	node     *snowflake.Node
	repo     domain.Repository
	khairat  khairatdomain.Service
	notifier notifdomain.Service
	checker  *authz.Checker
	clock    clock.Clock
	log      *zap.Logger
}

func NewService(
	gdb *gorm.DB,
	node *snowflake.Node,
	repo domain.Repository,
	khairat khairatdomain.Service,
	notifier notifdomain.Service,
	checker *authz.Checker,
	clk clock.Clock,
	log *zap.Logger,
) domain.Service {
	return &service{
		db:       gdb,
		node:     node,
		repo:     repo,
		khairat:  khairat,
		notifier: notifier,
		checker:  checker,
		clock:    clk,
		log:      log.Named("legacy"),
	}
}

func (s *service) ImportCSV(ctx context.Context, actor authz.Actor, mosqueID snowflake.ID, r io.Reader) (*domain.ImportResult, error) {
	if err := s.checker.RequireMosqueAdmin(ctx, actor, mosqueID); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	batchID := ulid.Make().String()
	now := s.clock.Now()

	var (
		records   []domain.Record
		rowErrors []domain.ImportRowError
		line      int
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rowErrors = append(rowErrors, domain.ImportRowError{Line: line, Reason: err.Error()})
			continue
		}
		if line == 1 && isHeaderRow(row) {
			continue
		}
		if line > maxImportRows {
			rowErrors = append(rowErrors, domain.ImportRowError{Line: line, Reason: "row limit exceeded"})
			break
		}
		rec, err := s.parseRow(mosqueID, batchID, now, row)
		if err != nil {
			rowErrors = append(rowErrors, domain.ImportRowError{Line: line, Reason: err.Error()})
			continue
		}
		records = append(records, *rec)
	}

	if len(records) == 0 {
		return nil, domain.ErrEmptyImport
	}
	if err := s.repo.InsertRecords(ctx, records); err != nil {
		return nil, fmt.Errorf("store import batch: %w", err)
	}
	s.log.Info("legacy records imported",
		zap.String("batch_id", batchID),
		zap.Int("imported", len(records)),
		zap.Int("skipped", len(rowErrors)),
	)
	return &domain.ImportResult{
		BatchID:   batchID,
		Imported:  len(records),
		RowErrors: rowErrors,
	}, nil
}

// parseRow maps full_name,ic_passport_number,amount,payment_date[,receipt_no].
func (s *service) parseRow(mosqueID snowflake.ID, batchID string, importedAt time.Time, row []string) (*domain.Record, error) {
	if len(row) < 4 {
		return nil, fmt.Errorf("expected at least 4 columns, got %d", len(row))
	}
	name := strings.TrimSpace(row[0])
	if name == "" {
		return nil, fmt.Errorf("missing full_name")
	}
	amount, err := parseAmountCents(row[2])
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	paymentDate, err := parsePaymentDate(row[3])
	if err != nil {
		return nil, err
	}
	rec := &domain.Record{
		ID:               s.node.Generate(),
		MosqueID:         mosqueID,
		ImportBatchID:    batchID,
		FullName:         name,
		ICPassportNumber: normalizeIC(row[1]),
		AmountCents:      amount,
		PaymentDate:      paymentDate,
		ImportedAt:       importedAt,
	}
	if len(row) > 4 {
		rec.ReceiptNo = strings.TrimSpace(row[4])
	}
	return rec, nil
}

func (s *service) ListRecords(ctx context.Context, actor authz.Actor, mosqueID snowflake.ID, includeMatched bool) ([]domain.Record, error) {
	if err := s.checker.RequireMosqueAdmin(ctx, actor, mosqueID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, mosqueID, includeMatched)
}

func (s *service) Candidates(ctx context.Context, actor authz.Actor, recordID snowflake.ID, all bool) ([]domain.Candidate, error) {
	rec, err := s.repo.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := s.checker.RequireMosqueAdmin(ctx, actor, rec.MosqueID); err != nil {
		return nil, err
	}
	return s.repo.Candidates(ctx, rec, all)
}

func (s *service) Match(ctx context.Context, actor authz.Actor, req domain.MatchRequest) (*domain.Record, error) {
	rec, err := s.repo.FindByID(ctx, req.RecordID)
	if err != nil {
		return nil, err
	}
	if err := s.checker.RequireMosqueAdmin(ctx, actor, rec.MosqueID); err != nil {
		return nil, err
	}
	return s.match(ctx, rec, req)
}

// match links one record to a user inside its own transaction: the
// contribution row, its ledger entry, and the record's matched flags commit
// together.
func (s *service) match(ctx context.Context, rec *domain.Record, req domain.MatchRequest) (*domain.Record, error) {
	if rec.Matched {
		return nil, domain.ErrAlreadyMatched
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contribution, err := s.khairat.RecordImported(ctx, tx, rec.ID, khairatdomain.RecordContributionRequest{
			MosqueID:    rec.MosqueID,
			UserID:      req.UserID,
			ProgramID:   req.ProgramID,
			AmountCents: rec.AmountCents,
			PaidAt:      rec.PaymentDate,
		})
		if err != nil {
			return err
		}
		return s.repo.WithTx(tx).UpdateFields(ctx, rec.ID, map[string]any{
			"matched":                 true,
			"matched_user_id":         req.UserID,
			"matched_contribution_id": contribution.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	s.notifyMatched(ctx, updated, req.UserID)
	return updated, nil
}

func (s *service) Unmatch(ctx context.Context, actor authz.Actor, recordID snowflake.ID) (*domain.Record, error) {
	rec, err := s.repo.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := s.checker.RequireMosqueAdmin(ctx, actor, rec.MosqueID); err != nil {
		return nil, err
	}
	return s.unmatch(ctx, rec)
}

func (s *service) unmatch(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
	if !rec.Matched || rec.MatchedContributionID == nil {
		return nil, domain.ErrNotMatched
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.khairat.DeleteContribution(ctx, tx, *rec.MatchedContributionID); err != nil {
			return err
		}
		return s.repo.WithTx(tx).UpdateFields(ctx, rec.ID, map[string]any{
			"matched":                 false,
			"matched_user_id":         nil,
			"matched_contribution_id": nil,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, rec.ID)
}

// BulkMatch processes each item in its own transaction. A failed item is
// reported and skipped; it never rolls back the others.
func (s *service) BulkMatch(ctx context.Context, actor authz.Actor, reqs []domain.MatchRequest) (*domain.BulkResult, error) {
	result := &domain.BulkResult{}
	for _, req := range reqs {
		rec, err := s.repo.FindByID(ctx, req.RecordID)
		if err == nil {
			err = s.checker.RequireMosqueAdmin(ctx, actor, rec.MosqueID)
		}
		if err == nil {
			_, err = s.match(ctx, rec, req)
		}
		if err != nil {
			result.FailedRecords = append(result.FailedRecords, domain.FailedRecord{
				RecordID: req.RecordID,
				Reason:   err.Error(),
			})
			continue
		}
		result.Processed++
	}
	return result, nil
}

func (s *service) BulkUnmatch(ctx context.Context, actor authz.Actor, recordIDs []snowflake.ID) (*domain.BulkResult, error) {
	result := &domain.BulkResult{}
	for _, id := range recordIDs {
		rec, err := s.repo.FindByID(ctx, id)
		if err == nil {
			err = s.checker.RequireMosqueAdmin(ctx, actor, rec.MosqueID)
		}
		if err == nil {
			_, err = s.unmatch(ctx, rec)
		}
		if err != nil {
			result.FailedRecords = append(result.FailedRecords, domain.FailedRecord{
				RecordID: id,
				Reason:   err.Error(),
			})
			continue
		}
		result.Processed++
	}
	return result, nil
}

func (s *service) notifyMatched(ctx context.Context, rec *domain.Record, userID snowflake.ID) {
	mosqueID := rec.MosqueID
	err := s.notifier.Create(ctx, notifdomain.CreateRequest{
		UserID:   userID,
		MosqueID: &mosqueID,
		Title:    "Past contribution recorded",
		Message: fmt.Sprintf("A khairat payment of RM %d.%02d from %s has been linked to your account.",
			rec.AmountCents/100, rec.AmountCents%100, rec.PaymentDate.Format("2 Jan 2006")),
		Type: notifdomain.TypeContributionMatched,
		Metadata: map[string]any{
			"legacy_record_id": rec.ID.String(),
			"receipt_no":       rec.ReceiptNo,
		},
	})
	if err != nil {
		s.log.Warn("notification emit failed",
			zap.String("type", notifdomain.TypeContributionMatched),
			zap.Error(err),
		)
	}
}

func normalizeIC(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
