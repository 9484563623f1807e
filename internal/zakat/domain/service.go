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
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidYear        = errors.New("invalid_year")
	ErrInvalidAsnaf       = errors.New("invalid_asnaf_category")
	ErrInvalidRecipient   = errors.New("invalid_recipient")
	ErrAssessmentNotFound = errors.New("assessment_not_found")
)

type AssessRequest struct {
	MosqueID         snowflake.ID
	Year             int
	WealthCents      int64
	LiabilitiesCents int64
}

type DistributeRequest struct {
	MosqueID      snowflake.ID
	RecipientName string
	AsnafCategory string
	AmountCents   int64
	DistributedAt time.Time
	Notes         string
}

type Service interface {
	// Assess computes and stores the year's figures; repeating the call
	// replaces them.
	Assess(ctx context.Context, userID snowflake.ID, req AssessRequest) (*Assessment, error)
	GetAssessment(ctx context.Context, userID, mosqueID snowflake.ID, year int) (*Assessment, error)
	ListAssessments(ctx context.Context, actor authz.Actor, mosqueID snowflake.ID, year int) ([]Assessment, error)
	// Distribute records a payout and its ledger entry in one transaction.
	Distribute(ctx context.Context, actor authz.Actor, req DistributeRequest) (*Distribution, error)
	ListDistributions(ctx context.Context, actor authz.Actor, mosqueID snowflake.ID) ([]Distribution, error)
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	UpsertAssessment(ctx context.Context, a *Assessment) (*Assessment, error)
	FindAssessment(ctx context.Context, mosqueID, userID snowflake.ID, year int) (*Assessment, error)
	ListAssessments(ctx context.Context, mosqueID snowflake.ID, year int) ([]Assessment, error)
	CreateDistribution(ctx context.Context, d *Distribution) error
	ListDistributions(ctx context.Context, mosqueID snowflake.ID) ([]Distribution, error)
}
