package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/masjidkita/masjidkita/internal/authz"
)

// Decision is the admin review outcome.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

type SubmitRequest struct {
	Domain            Domain
	MosqueID          snowflake.ID
	ICPassportNumber  string
	ApplicationReason string
}

// SubmitResult distinguishes a freshly created application from a
// reactivated one (same row, status reset).
type SubmitResult struct {
	Membership  *Membership
	Reactivated bool
}

type ReviewRequest struct {
	MembershipID snowflake.ID
	Decision     Decision
	AdminNotes   string
}

type Service interface {
	Submit(ctx context.Context, userID snowflake.ID, req SubmitRequest) (*SubmitResult, error)
	MarkUnderReview(ctx context.Context, actor authz.Actor, membershipID snowflake.ID) (*Membership, error)
	Review(ctx context.Context, actor authz.Actor, req ReviewRequest) (*Membership, error)
	Withdraw(ctx context.Context, actor authz.Actor, membershipID snowflake.ID) (*Membership, error)
	Suspend(ctx context.Context, actor authz.Actor, membershipID snowflake.ID) (*Membership, error)
	Reinstate(ctx context.Context, actor authz.Actor, membershipID snowflake.ID) (*Membership, error)
	Delete(ctx context.Context, actor authz.Actor, membershipID snowflake.ID) error
	ListByMosque(ctx context.Context, actor authz.Actor, d Domain, mosqueID snowflake.ID, status *Status) ([]Membership, error)
	ListByUser(ctx context.Context, userID snowflake.ID) ([]Membership, error)
}
