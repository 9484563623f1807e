package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/masjidkita/masjidkita/internal/authz"
	"github.com/masjidkita/masjidkita/internal/clock"
	"github.com/masjidkita/masjidkita/internal/membership/domain"
	mosquedomain "github.com/masjidkita/masjidkita/internal/mosque/domain"
	notifdomain "github.com/masjidkita/masjidkita/internal/notification/domain"
	"github.com/masjidkita/masjidkita/pkg/db"
)

type service struct {
	db       *gorm.DB
	node     *snowflake.Node
	repo     domain.Repository
	mosques  mosquedomain.Repository
	notifier notifdomain.Service
	checker  *authz.Checker
	clock    clock.Clock
	validate *validator.Validate
	log      *zap.Logger
}

func NewService(
	gdb *gorm.DB,
	node *snowflake.Node,
	repo domain.Repository,
	mosques mosquedomain.Repository,
	notifier notifdomain.Service,
	checker *authz.Checker,
	clk clock.Clock,
	log *zap.Logger,
) domain.Service {
	return &service{
		db:       gdb,
		node:     node,
		repo:     repo,
		mosques:  mosques,
		notifier: notifier,
		checker:  checker,
		clock:    clk,
		validate: newValidator(),
		log:      log.Named("membership"),
	}
}

func (s *service) Submit(ctx context.Context, userID snowflake.ID, req domain.SubmitRequest) (*domain.SubmitResult, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	if !req.Domain.Valid() {
		return nil, domain.ErrInvalidDomain
	}

	payload := submitPayload{
		ICPassportNumber:  strings.TrimSpace(req.ICPassportNumber),
		ApplicationReason: strings.TrimSpace(req.ApplicationReason),
	}
	if err := s.validate.Struct(payload); err != nil {
		return nil, domain.ErrInvalidFormat
	}

	if _, err := s.mosques.GetByID(ctx, req.MosqueID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindLatest(ctx, req.Domain, req.MosqueID, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup existing membership: %w", err)
	}

	now := s.clock.Now()

	if existing != nil {
		switch {
		case existing.Status == domain.StatusActive:
			return nil, domain.ErrAlreadyMember
		case existing.Status.Live():
			return nil, domain.ErrDuplicateApplication
		case existing.Status == domain.StatusSuspended:
			// A suspended member is still on the register; reinstatement is
			// an admin action, not a fresh application.
			return nil, domain.ErrAlreadyMember
		}

		// Rejected or inactive: reset the same row back to pending and
		// clear the previous review outcome.
		fields := map[string]any{
			"status":            domain.StatusPending,
			"admin_notes":       nil,
			"reviewed_by":       nil,
			"reviewed_at":       nil,
			"joined_date":       nil,
			"membership_number": nil,
			"updated_at":        now,
		}
		if payload.ICPassportNumber != "" {
			fields["ic_passport_number"] = payload.ICPassportNumber
		} else {
			fields["ic_passport_number"] = nil
		}
		if payload.ApplicationReason != "" {
			fields["application_reason"] = payload.ApplicationReason
		} else {
			fields["application_reason"] = nil
		}
		if err := s.repo.UpdateFields(ctx, existing.ID, fields); err != nil {
			return nil, fmt.Errorf("reactivate application: %w", err)
		}
		updated, err := s.repo.FindByID(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		s.notifySubmitted(ctx, updated)
		return &domain.SubmitResult{Membership: updated, Reactivated: true}, nil
	}

	m := &domain.Membership{
		ID:        s.node.Generate(),
		Domain:    req.Domain,
		MosqueID:  req.MosqueID,
		UserID:    userID,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if payload.ICPassportNumber != "" {
		m.ICPassportNumber = &payload.ICPassportNumber
	}
	if payload.ApplicationReason != "" {
		m.ApplicationReason = &payload.ApplicationReason
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		// ux_memberships_live closes the submit race: a concurrent live
		// record surfaces here as a duplicate key.
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateApplication
		}
		return nil, fmt.Errorf("create application: %w", err)
	}
	s.notifySubmitted(ctx, m)
	return &domain.SubmitResult{Membership: m}, nil
}

func (s *service) MarkUnderReview(ctx context.Context, actor authz.Actor, membershipID snowflake.ID) (*domain.Membership, error) {
	m, err := s.repo.FindByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if err := s.checker.RequireMosqueAdmin(ctx, actor, m.MosqueID); err != nil {
		return nil, err
	}
	if m.Status != domain.StatusPending {
		return nil, domain.ErrInvalidStateTransition
	}
	now := s.clock.Now()
	fields := map[string]any{
		"status":     domain.StatusUnderReview,
		"updated_at": now,
	}
	if err := s.repo.UpdateFields(ctx, m.ID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, m.ID)
}

func (s *service) Review(ctx context.Context, actor authz.Actor, req domain.ReviewRequest) (*domain.Membership, error) {
	m, err := s.repo.FindByID(ctx, req.MembershipID)
	if err != nil {
		return nil, err
	}
	if err := s.checker.RequireMosqueAdmin(ctx, actor, m.MosqueID); err != nil {
		return nil, err
	}
	if m.Status != domain.StatusPending && m.Status != domain.StatusUnderReview {
		return nil, domain.ErrInvalidStateTransition
	}

	now := s.clock.Now()
	notes := strings.TrimSpace(req.AdminNotes)

	switch req.Decision {
	case domain.DecisionApproved:
		// Approval and provisioning commit together: membership number and
		// joined date either both appear or neither does.
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			seq, err := repo.NextMembershipNumber(ctx, m.MosqueID, m.Domain)
			if err != nil {
				return fmt.Errorf("assign membership number: %w", err)
			}
			number := domain.FormatMembershipNumber(m.Domain, seq)
			joined := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			fields := map[string]any{
				"status":            domain.StatusActive,
				"joined_date":       joined,
				"membership_number": number,
				"reviewed_by":       actor.UserID,
				"reviewed_at":       now,
				"updated_at":        now,
			}
			if notes != "" {
				fields["admin_notes"] = notes
			}
			return repo.UpdateFields(ctx, m.ID, fields)
		})
	case domain.DecisionRejected:
		fields := map[string]any{
			"status":      domain.StatusRejected,
			"reviewed_by": actor.UserID,
			"reviewed_at": now,
			"updated_at":  now,
		}
		if notes != "" {
			fields["admin_notes"] = notes
		}
		err = s.repo.UpdateFields(ctx, m.ID, fields)
	default:
		return nil, domain.ErrInvalidDecision
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	s.notifyReviewed(ctx, updated, notes)
	return updated, nil
}

func (s *service) Withdraw(ctx context.Context, actor authz.Actor, membershipID snowflake.ID) (*domain.Membership, error) {
	m, err := s.repo.FindByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if err := s.checker.RequireOwnerOrMosqueAdmin(ctx, actor, m.UserID, m.MosqueID); err != nil {
		return nil, err
	}
	if m.Status != domain.StatusActive {
		return nil, domain.ErrInvalidStateTransition
	}
	now := s.clock.Now()
	fields := map[string]any{
		"status":     domain.StatusInactive,
		"updated_at": now,
	}
	if err := s.repo.UpdateFields(ctx, m.ID, fields); err != nil {
		return nil, err
	}
	updated, err := s.repo.FindByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	s.notifyStatus(ctx, updated, notifdomain.TypeMembershipWithdrawn,
		"Membership withdrawn",
		fmt.Sprintf("Your %s membership is no longer active. You may reapply at any time.", m.Domain))
	return updated, nil
}

func (s *service) Suspend(ctx context.Context, actor authz.Actor, membershipID snowflake.ID) (*domain.Membership, error) {
	return s.adminTransition(ctx, actor, membershipID,
		domain.StatusActive, domain.StatusSuspended,
		notifdomain.TypeMembershipSuspended,
		"Membership suspended",
		"Your membership has been suspended. Contact the mosque office for details.")
}

func (s *service) Reinstate(ctx context.Context, actor authz.Actor, membershipID snowflake.ID) (*domain.Membership, error) {
	return s.adminTransition(ctx, actor, membershipID,
		domain.StatusSuspended, domain.StatusActive,
		notifdomain.TypeMembershipRestored,
		"Membership restored",
		"Your membership has been restored and is active again.")
}

func (s *service) adminTransition(ctx context.Context, actor authz.Actor, membershipID snowflake.ID, from, to domain.Status, notifType, title, message string) (*domain.Membership, error) {
	m, err := s.repo.FindByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if err := s.checker.RequireMosqueAdmin(ctx, actor, m.MosqueID); err != nil {
		return nil, err
	}
	if m.Status != from {
		return nil, domain.ErrInvalidStateTransition
	}
	now := s.clock.Now()
	fields := map[string]any{
		"status":     to,
		"updated_at": now,
	}
	if err := s.repo.UpdateFields(ctx, m.ID, fields); err != nil {
		return nil, err
	}
	updated, err := s.repo.FindByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	s.notifyStatus(ctx, updated, notifType, title, message)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, actor authz.Actor, membershipID snowflake.ID) error {
	m, err := s.repo.FindByID(ctx, membershipID)
	if err != nil {
		return err
	}
	switch m.Status {
	case domain.StatusPending:
		if err := s.checker.RequireOwnerOrMosqueAdmin(ctx, actor, m.UserID, m.MosqueID); err != nil {
			return err
		}
	case domain.StatusRejected:
		// Only the applicant may clear their own rejected application.
		if err := s.checker.RequireOwner(actor, m.UserID); err != nil {
			return err
		}
	default:
		return domain.ErrInvalidStateTransition
	}
	if err := s.repo.Delete(ctx, m.ID); err != nil {
		return err
	}
	if actor.UserID != m.UserID {
		s.notifyStatus(ctx, m, notifdomain.TypeApplicationDeleted,
			"Application removed",
			fmt.Sprintf("Your %s application has been removed by the mosque admin.", m.Domain))
	}
	return nil
}

func (s *service) ListByMosque(ctx context.Context, actor authz.Actor, d domain.Domain, mosqueID snowflake.ID, status *domain.Status) ([]domain.Membership, error) {
	if !d.Valid() {
		return nil, domain.ErrInvalidDomain
	}
	if err := s.checker.RequireMosqueAdmin(ctx, actor, mosqueID); err != nil {
		return nil, err
	}
	return s.repo.ListByMosque(ctx, d, mosqueID, status)
}

func (s *service) ListByUser(ctx context.Context, userID snowflake.ID) ([]domain.Membership, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) notifySubmitted(ctx context.Context, m *domain.Membership) {
	s.notifyStatus(ctx, m, notifdomain.TypeApplicationReceived,
		"Application received",
		fmt.Sprintf("Your %s membership application has been received and is pending review.", m.Domain))
}

func (s *service) notifyReviewed(ctx context.Context, m *domain.Membership, notes string) {
	var (
		typ, title, message string
	)
	if m.Status == domain.StatusActive {
		typ = notifdomain.TypeApplicationApproved
		title = "Application approved"
		number := ""
		if m.MembershipNumber != nil {
			number = *m.MembershipNumber
		}
		message = fmt.Sprintf("Welcome! Your %s membership application has been approved. Membership number: %s.", m.Domain, number)
	} else {
		typ = notifdomain.TypeApplicationRejected
		title = "Application rejected"
		message = fmt.Sprintf("Your %s membership application was not approved.", m.Domain)
		if notes != "" {
			message = fmt.Sprintf("%s Reason: %s", message, notes)
		}
	}
	s.notifyStatus(ctx, m, typ, title, message)
}

// notifyStatus emits a lifecycle notification. Delivery is best-effort: a
// failed insert is logged and never fails the workflow that triggered it.
func (s *service) notifyStatus(ctx context.Context, m *domain.Membership, typ, title, message string) {
	mosqueID := m.MosqueID
	err := s.notifier.Create(ctx, notifdomain.CreateRequest{
		UserID:   m.UserID,
		MosqueID: &mosqueID,
		Title:    title,
		Message:  message,
		Type:     typ,
		Metadata: map[string]any{
			"membership_id": m.ID.String(),
			"domain":        string(m.Domain),
			"status":        string(m.Status),
		},
	})
	if err != nil {
		s.log.Warn("notification emit failed",
			zap.String("type", typ),
			zap.Int64("membership_id", int64(m.ID)),
			zap.Error(err),
		)
	}
}
