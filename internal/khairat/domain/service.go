package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/masjidkita/masjidkita/internal/authz"
)

var (
	ErrInvalidProgram       = errors.New("invalid_program")
	ErrProgramNotFound      = errors.New("program_not_found")
	ErrDuplicateProgram     = errors.New("duplicate_program")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrContributionNotFound = errors.New("contribution_not_found")
)

type CreateProgramRequest struct {
	MosqueID       snowflake.ID
	Name           string
	Year           int
	AmountDueCents int64
}

type RecordContributionRequest struct {
	MosqueID    snowflake.ID
	UserID      snowflake.ID
	ProgramID   snowflake.ID
	AmountCents int64
	PaidAt      time.Time
}

type Service interface {
	CreateProgram(ctx context.Context, actor authz.Actor, req CreateProgramRequest) (*Program, error)
	ListPrograms(ctx context.Context, mosqueID snowflake.ID) ([]Program, error)
	// RecordContribution stores a manual payment and posts the matching
	// ledger entry in one transaction.
	RecordContribution(ctx context.Context, actor authz.Actor, req RecordContributionRequest) (*Contribution, error)
	// RecordImported stores a contribution created by legacy reconciliation.
	// It joins the caller's transaction and posts the ledger entry there.
	RecordImported(ctx context.Context, tx *gorm.DB, legacyRecordID snowflake.ID, req RecordContributionRequest) (*Contribution, error)
	ListContributionsByUser(ctx context.Context, actor authz.Actor, mosqueID, userID snowflake.ID) ([]Contribution, error)
	ListContributionsByProgram(ctx context.Context, actor authz.Actor, programID snowflake.ID) ([]Contribution, error)
	DeleteContribution(ctx context.Context, tx *gorm.DB, contributionID snowflake.ID) error
	GetContribution(ctx context.Context, contributionID snowflake.ID) (*Contribution, error)
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProgram(ctx context.Context, p *Program) error
	FindProgramByID(ctx context.Context, id snowflake.ID) (*Program, error)
	ListPrograms(ctx context.Context, mosqueID snowflake.ID) ([]Program, error)
	CreateContribution(ctx context.Context, c *Contribution) error
	FindContributionByID(ctx context.Context, id snowflake.ID) (*Contribution, error)
	DeleteContribution(ctx context.Context, id snowflake.ID) error
	ListContributionsByUser(ctx context.Context, mosqueID, userID snowflake.ID) ([]Contribution, error)
	ListContributionsByProgram(ctx context.Context, programID snowflake.ID) ([]Contribution, error)
}
