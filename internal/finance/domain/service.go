package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// LineInput is one requested leg of a journal entry. Exactly one of
// DebitCents and CreditCents must be positive.
type LineInput struct {
	AccountCode string
	DebitCents  int64
	CreditCents int64
}

// PostRequest describes a balanced journal entry keyed to the business
// event that produced it.
type PostRequest struct {
	MosqueID    snowflake.ID
	SourceType  string
	SourceID    snowflake.ID
	EntryDate   time.Time
	Description string
	Lines       []LineInput
}

// Poster is the narrow interface workflow services use to record money
// movements. Post is idempotent per (mosque, source_type, source_id).
type Poster interface {
	Post(ctx context.Context, tx *gorm.DB, req PostRequest) (*Entry, error)
}

// Service is the full ledger surface exposed over HTTP.
type Service interface {
	Poster
	CreateAccount(ctx context.Context, mosqueID snowflake.ID, code, name string, typ AccountType) (*Account, error)
	ListAccounts(ctx context.Context, mosqueID snowflake.ID) ([]Account, error)
	ListEntries(ctx context.Context, mosqueID snowflake.ID, from, to *time.Time) ([]Entry, error)
	TrialBalance(ctx context.Context, mosqueID snowflake.ID) ([]AccountBalance, error)
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateAccount(ctx context.Context, a *Account) error
	FindAccountByCode(ctx context.Context, mosqueID snowflake.ID, code string) (*Account, error)
	ListAccounts(ctx context.Context, mosqueID snowflake.ID) ([]Account, error)
	CreateEntry(ctx context.Context, e *Entry) error
	FindEntryBySource(ctx context.Context, mosqueID snowflake.ID, sourceType string, sourceID snowflake.ID) (*Entry, error)
	ListEntries(ctx context.Context, mosqueID snowflake.ID, from, to *time.Time) ([]Entry, error)
	TrialBalance(ctx context.Context, mosqueID snowflake.ID) ([]AccountBalance, error)
}
