package domain

import "errors"

var (
	ErrInvalidAccount   = errors.New("invalid_account")
	ErrAccountNotFound  = errors.New("account_not_found")
	ErrEntryNotFound    = errors.New("entry_not_found")
	ErrUnbalancedEntry  = errors.New("unbalanced_entry")
	ErrEmptyEntry       = errors.New("empty_entry")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrDuplicateAccount = errors.New("duplicate_account")
)
