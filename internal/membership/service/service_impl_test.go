package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/masjidkita/masjidkita/internal/auth/domain"
	"github.com/masjidkita/masjidkita/internal/authz"
	"github.com/masjidkita/masjidkita/internal/clock"
	"github.com/masjidkita/masjidkita/internal/membership/domain"
	memberrepo "github.com/masjidkita/masjidkita/internal/membership/repository"
	mosquedomain "github.com/masjidkita/masjidkita/internal/mosque/domain"
	mosquerepo "github.com/masjidkita/masjidkita/internal/mosque/repository"
	notifdomain "github.com/masjidkita/masjidkita/internal/notification/domain"
	notifrepo "github.com/masjidkita/masjidkita/internal/notification/repository"
	notifservice "github.com/masjidkita/masjidkita/internal/notification/service"
)

type testEnv struct {
	db      *gorm.DB
	svc     domain.Service
	clk     *clock.FakeClock
	node    *snowflake.Node
	checker *authz.Checker

	mosque mosquedomain.Mosque
	admin  authdomain.User
	member authdomain.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&authdomain.User{},
		&mosquedomain.Mosque{},
		&mosquedomain.MosqueAdmin{},
		&domain.Membership{},
		&domain.MembershipSequence{},
		&notifdomain.Notification{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	mosques := mosquerepo.NewRepository(conn)
	checker := authz.NewChecker(mosques)
	notifier := notifservice.NewService(log, notifrepo.NewRepository(conn), node)
	repo := memberrepo.NewRepository(conn)

	env := &testEnv{
		db:      conn,
		svc:     NewService(conn, node, repo, mosques, notifier, checker, clk, log),
		clk:     clk,
		node:    node,
		checker: checker,
	}

	env.mosque = mosquedomain.Mosque{ID: node.Generate(), Name: "Masjid Al-Falah", Slug: "masjid-al-falah"}
	require.NoError(t, conn.Create(&env.mosque).Error)

	env.admin = authdomain.User{ID: node.Generate(), Email: "admin@example.com", DisplayName: "Admin"}
	env.member = authdomain.User{ID: node.Generate(), Email: "member@example.com", DisplayName: "Member"}
	require.NoError(t, conn.Create(&env.admin).Error)
	require.NoError(t, conn.Create(&env.member).Error)
	require.NoError(t, conn.Create(&mosquedomain.MosqueAdmin{
		ID:       node.Generate(),
		MosqueID: env.mosque.ID,
		UserID:   env.admin.ID,
	}).Error)

	return env
}

func (e *testEnv) adminActor() authz.Actor  { return authz.Actor{UserID: e.admin.ID} }
func (e *testEnv) memberActor() authz.Actor { return authz.Actor{UserID: e.member.ID} }

func (e *testEnv) submit(t *testing.T) *domain.Membership {
	t.Helper()
	result, err := e.svc.Submit(context.Background(), e.member.ID, domain.SubmitRequest{
		Domain:           domain.DomainKariah,
		MosqueID:         e.mosque.ID,
		ICPassportNumber: "880101-14-5523",
	})
	require.NoError(t, err)
	return result.Membership
}

func (e *testEnv) approve(t *testing.T, id snowflake.ID) *domain.Membership {
	t.Helper()
	m, err := e.svc.Review(context.Background(), e.adminActor(), domain.ReviewRequest{
		MembershipID: id,
		Decision:     domain.DecisionApproved,
	})
	require.NoError(t, err)
	return m
}

func TestSubmitCreatesPendingApplication(t *testing.T) {
	env := newTestEnv(t)

	m := env.submit(t)

	assert.Equal(t, domain.StatusPending, m.Status)
	assert.Equal(t, domain.DomainKariah, m.Domain)
	require.NotNil(t, m.ICPassportNumber)
	assert.Equal(t, "880101-14-5523", *m.ICPassportNumber)

	var notifications []notifdomain.Notification
	require.NoError(t, env.db.Where("user_id = ?", env.member.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, notifdomain.TypeApplicationReceived, notifications[0].Type)
}

func TestSubmitWithoutIdentityNumber(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.svc.Submit(context.Background(), env.member.ID, domain.SubmitRequest{
		Domain:   domain.DomainKariah,
		MosqueID: env.mosque.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, result.Membership.Status)
	assert.Nil(t, result.Membership.ICPassportNumber)
}

func TestReapplyWithoutIdentityNumberClearsIt(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)
	_, err := env.svc.Review(context.Background(), env.adminActor(), domain.ReviewRequest{
		MembershipID: m.ID,
		Decision:     domain.DecisionRejected,
	})
	require.NoError(t, err)

	result, err := env.svc.Submit(context.Background(), env.member.ID, domain.SubmitRequest{
		Domain:   domain.DomainKariah,
		MosqueID: env.mosque.ID,
	})
	require.NoError(t, err)
	assert.True(t, result.Reactivated)
	assert.Nil(t, result.Membership.ICPassportNumber)
}

func TestSubmitRejectsInvalidIdentityNumber(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Submit(context.Background(), env.member.ID, domain.SubmitRequest{
		Domain:           domain.DomainKariah,
		MosqueID:         env.mosque.ID,
		ICPassportNumber: "not-an-ic",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)
}

func TestSubmitDuplicateWhilePending(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t)

	_, err := env.svc.Submit(context.Background(), env.member.ID, domain.SubmitRequest{
		Domain:           domain.DomainKariah,
		MosqueID:         env.mosque.ID,
		ICPassportNumber: "880101-14-5523",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateApplication)
}

func TestSubmitWhileActiveMember(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)
	env.approve(t, m.ID)

	_, err := env.svc.Submit(context.Background(), env.member.ID, domain.SubmitRequest{
		Domain:           domain.DomainKariah,
		MosqueID:         env.mosque.ID,
		ICPassportNumber: "880101-14-5523",
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyMember)
}

func TestSubmitToOtherDomainIsIndependent(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t)

	result, err := env.svc.Submit(context.Background(), env.member.ID, domain.SubmitRequest{
		Domain:           domain.DomainKhairat,
		MosqueID:         env.mosque.ID,
		ICPassportNumber: "880101-14-5523",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DomainKhairat, result.Membership.Domain)
}

func TestRejectedReapplicationReactivatesSameRecord(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)

	_, err := env.svc.Review(context.Background(), env.adminActor(), domain.ReviewRequest{
		MembershipID: m.ID,
		Decision:     domain.DecisionRejected,
		AdminNotes:   "incomplete details",
	})
	require.NoError(t, err)

	result, err := env.svc.Submit(context.Background(), env.member.ID, domain.SubmitRequest{
		Domain:           domain.DomainKariah,
		MosqueID:         env.mosque.ID,
		ICPassportNumber: "880101-14-5523",
	})
	require.NoError(t, err)
	assert.True(t, result.Reactivated)
	assert.Equal(t, m.ID, result.Membership.ID)
	assert.Equal(t, domain.StatusPending, result.Membership.Status)
	assert.Nil(t, result.Membership.AdminNotes)
	assert.Nil(t, result.Membership.ReviewedBy)
	assert.Nil(t, result.Membership.ReviewedAt)
}

func TestApproveProvisionsMembership(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)

	approved := env.approve(t, m.ID)

	assert.Equal(t, domain.StatusActive, approved.Status)
	require.NotNil(t, approved.MembershipNumber)
	assert.Equal(t, "KRH-000001", *approved.MembershipNumber)
	require.NotNil(t, approved.JoinedDate)
	assert.Equal(t, "2025-03-10", approved.JoinedDate.Format("2006-01-02"))
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, env.admin.ID, *approved.ReviewedBy)
}

func TestMembershipNumbersAreSequential(t *testing.T) {
	env := newTestEnv(t)

	first := env.submit(t)
	env.approve(t, first.ID)

	other := authdomain.User{ID: env.node.Generate(), Email: "second@example.com", DisplayName: "Second"}
	require.NoError(t, env.db.Create(&other).Error)
	result, err := env.svc.Submit(context.Background(), other.ID, domain.SubmitRequest{
		Domain:           domain.DomainKariah,
		MosqueID:         env.mosque.ID,
		ICPassportNumber: "900202-10-1234",
	})
	require.NoError(t, err)
	second := env.approve(t, result.Membership.ID)

	assert.Equal(t, "KRH-000002", *second.MembershipNumber)
}

func TestReviewRequiresMosqueAdmin(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)

	_, err := env.svc.Review(context.Background(), env.memberActor(), domain.ReviewRequest{
		MembershipID: m.ID,
		Decision:     domain.DecisionApproved,
	})
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestReviewTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)
	env.approve(t, m.ID)

	_, err := env.svc.Review(context.Background(), env.adminActor(), domain.ReviewRequest{
		MembershipID: m.ID,
		Decision:     domain.DecisionRejected,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestMarkUnderReviewThenApprove(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)

	underReview, err := env.svc.MarkUnderReview(context.Background(), env.adminActor(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnderReview, underReview.Status)

	approved := env.approve(t, m.ID)
	assert.Equal(t, domain.StatusActive, approved.Status)
}

func TestWithdrawActiveMembership(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)
	env.approve(t, m.ID)

	withdrawn, err := env.svc.Withdraw(context.Background(), env.memberActor(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, withdrawn.Status)
}

func TestWithdrawPendingApplicationFails(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)

	_, err := env.svc.Withdraw(context.Background(), env.memberActor(), m.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestReapplyAfterWithdrawal(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)
	env.approve(t, m.ID)
	_, err := env.svc.Withdraw(context.Background(), env.memberActor(), m.ID)
	require.NoError(t, err)

	result, err := env.svc.Submit(context.Background(), env.member.ID, domain.SubmitRequest{
		Domain:           domain.DomainKariah,
		MosqueID:         env.mosque.ID,
		ICPassportNumber: "880101-14-5523",
	})
	require.NoError(t, err)
	assert.True(t, result.Reactivated)
	assert.Equal(t, domain.StatusPending, result.Membership.Status)
	assert.Nil(t, result.Membership.MembershipNumber)
	assert.Nil(t, result.Membership.JoinedDate)
}

func TestSuspendAndReinstate(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)
	env.approve(t, m.ID)

	suspended, err := env.svc.Suspend(context.Background(), env.adminActor(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuspended, suspended.Status)

	_, err = env.svc.Submit(context.Background(), env.member.ID, domain.SubmitRequest{
		Domain:           domain.DomainKariah,
		MosqueID:         env.mosque.ID,
		ICPassportNumber: "880101-14-5523",
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyMember)

	restored, err := env.svc.Reinstate(context.Background(), env.adminActor(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, restored.Status)
}

func TestDeletePendingByOwner(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)

	require.NoError(t, env.svc.Delete(context.Background(), env.memberActor(), m.ID))

	_, err := env.svc.ListByUser(context.Background(), env.member.ID)
	require.NoError(t, err)
	var count int64
	require.NoError(t, env.db.Model(&domain.Membership{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteRejectedOnlyByOwner(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)
	_, err := env.svc.Review(context.Background(), env.adminActor(), domain.ReviewRequest{
		MembershipID: m.ID,
		Decision:     domain.DecisionRejected,
	})
	require.NoError(t, err)

	err = env.svc.Delete(context.Background(), env.adminActor(), m.ID)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	require.NoError(t, env.svc.Delete(context.Background(), env.memberActor(), m.ID))
}

func TestDeleteUnderReviewFails(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)
	_, err := env.svc.MarkUnderReview(context.Background(), env.adminActor(), m.ID)
	require.NoError(t, err)

	err = env.svc.Delete(context.Background(), env.memberActor(), m.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	err = env.svc.Delete(context.Background(), env.adminActor(), m.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestDeleteActiveMembershipFails(t *testing.T) {
	env := newTestEnv(t)
	m := env.submit(t)
	env.approve(t, m.ID)

	err := env.svc.Delete(context.Background(), env.memberActor(), m.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}
