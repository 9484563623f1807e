// Package domain contains the double-entry ledger types used for mosque
// finance. All monetary amounts are integer cents.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// AccountType classifies a ledger account.
type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountIncome    AccountType = "income"
	AccountExpense   AccountType = "expense"
)

// Valid reports whether the account type is known.
func (t AccountType) Valid() bool {
	switch t {
	case AccountAsset, AccountLiability, AccountIncome, AccountExpense:
		return true
	default:
		return false
	}
}

// Well-known account codes posted by the khairat and zakat workflows.
const (
	CodeCash             = "1000"
	CodeKhairatIncome    = "4100"
	CodeZakatIncome      = "4200"
	CodeZakatDistributed = "5200"
)

// Account is one row in a mosque's chart of accounts.
type Account struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	MosqueID  snowflake.ID `gorm:"not null;uniqueIndex:ux_ledger_accounts_code" json:"mosque_id"`
	Code      string       `gorm:"type:text;not null;uniqueIndex:ux_ledger_accounts_code" json:"code"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Type      AccountType  `gorm:"type:text;not null" json:"type"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "ledger_accounts" }

// Entry is one balanced journal entry. (source_type, source_id) is unique
// per mosque so reposting the same business event is a no-op.
type Entry struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	MosqueID    snowflake.ID `gorm:"not null;uniqueIndex:ux_ledger_entries_source" json:"mosque_id"`
	SourceType  string       `gorm:"type:text;not null;uniqueIndex:ux_ledger_entries_source" json:"source_type"`
	SourceID    snowflake.ID `gorm:"not null;uniqueIndex:ux_ledger_entries_source" json:"source_id"`
	EntryDate   time.Time    `gorm:"type:date;not null" json:"entry_date"`
	Description string       `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Lines []EntryLine `gorm:"foreignKey:EntryID" json:"lines,omitempty"`
}

// TableName sets the database table name.
func (Entry) TableName() string { return "ledger_entries" }

// EntryLine is one debit or credit leg of an entry.
type EntryLine struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	EntryID     snowflake.ID `gorm:"not null;index" json:"entry_id"`
	AccountID   snowflake.ID `gorm:"not null;index" json:"account_id"`
	DebitCents  int64        `gorm:"not null;default:0" json:"debit_cents"`
	CreditCents int64        `gorm:"not null;default:0" json:"credit_cents"`
}

// TableName sets the database table name.
func (EntryLine) TableName() string { return "ledger_entry_lines" }

// AccountBalance is one row of a trial balance report.
type AccountBalance struct {
	AccountID   snowflake.ID `json:"account_id"`
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Type        AccountType  `json:"type"`
	DebitCents  int64        `json:"debit_cents"`
	CreditCents int64        `json:"credit_cents"`
}
