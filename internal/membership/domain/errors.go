package domain

import "errors"

var (
	ErrInvalidUser            = errors.New("invalid_user")
	ErrInvalidDomain          = errors.New("invalid_domain")
	ErrInvalidDecision        = errors.New("invalid_decision")
	ErrInvalidFormat          = errors.New("invalid_ic_passport_format")
	ErrDuplicateApplication   = errors.New("duplicate_application")
	ErrAlreadyMember          = errors.New("already_member")
	ErrInvalidStateTransition = errors.New("invalid_state_transition")
	ErrNotFound               = errors.New("membership_not_found")
)
