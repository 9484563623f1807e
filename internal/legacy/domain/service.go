package domain

import (
	"context"
	"errors"
	"io"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/masjidkita/masjidkita/internal/authz"
)

var (
	ErrRecordNotFound = errors.New("legacy_record_not_found")
	ErrAlreadyMatched = errors.New("legacy_record_already_matched")
	ErrNotMatched     = errors.New("legacy_record_not_matched")
	ErrEmptyImport    = errors.New("empty_import")
)

// ImportRowError describes one CSV row that could not be imported.
type ImportRowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a CSV import. Bad rows are skipped, not fatal.
type ImportResult struct {
	BatchID   string           `json:"batch_id"`
	Imported  int              `json:"imported"`
	RowErrors []ImportRowError `json:"row_errors,omitempty"`
}

type MatchRequest struct {
	RecordID  snowflake.ID `json:"record_id"`
	UserID    snowflake.ID `json:"user_id"`
	ProgramID snowflake.ID `json:"program_id"`
}

// FailedRecord is one bulk item that could not be processed.
type FailedRecord struct {
	RecordID snowflake.ID `json:"record_id"`
	Reason   string       `json:"reason"`
}

// BulkResult reports partial success: processed items commit even when
// others in the same request fail.
type BulkResult struct {
	Processed     int            `json:"processed"`
	FailedRecords []FailedRecord `json:"failed_records,omitempty"`
}

type Service interface {
	// ImportCSV parses full_name,ic_passport_number,amount,payment_date,
	// receipt_no rows and stores them under a fresh batch id.
	ImportCSV(ctx context.Context, actor authz.Actor, mosqueID snowflake.ID, r io.Reader) (*ImportResult, error)
	ListRecords(ctx context.Context, actor authz.Actor, mosqueID snowflake.ID, includeMatched bool) ([]Record, error)
	// Candidates lists users who could own the record, identity-number
	// matches first.
	Candidates(ctx context.Context, actor authz.Actor, recordID snowflake.ID, all bool) ([]Candidate, error)
	Match(ctx context.Context, actor authz.Actor, req MatchRequest) (*Record, error)
	Unmatch(ctx context.Context, actor authz.Actor, recordID snowflake.ID) (*Record, error)
	BulkMatch(ctx context.Context, actor authz.Actor, reqs []MatchRequest) (*BulkResult, error)
	BulkUnmatch(ctx context.Context, actor authz.Actor, recordIDs []snowflake.ID) (*BulkResult, error)
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertRecords(ctx context.Context, records []Record) error
	FindByID(ctx context.Context, id snowflake.ID) (*Record, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	List(ctx context.Context, mosqueID snowflake.ID, includeMatched bool) ([]Record, error)
	// Candidates orders mosque users by identity-number equality with the
	// record, then name. With all=true every user account is considered,
	// not only those holding a membership at the mosque.
	Candidates(ctx context.Context, record *Record, all bool) ([]Candidate, error)
}
