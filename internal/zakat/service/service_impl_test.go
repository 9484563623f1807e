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
	"github.com/masjidkita/masjidkita/internal/config"
	financedomain "github.com/masjidkita/masjidkita/internal/finance/domain"
	financerepo "github.com/masjidkita/masjidkita/internal/finance/repository"
	financeservice "github.com/masjidkita/masjidkita/internal/finance/service"
	mosquedomain "github.com/masjidkita/masjidkita/internal/mosque/domain"
	mosquerepo "github.com/masjidkita/masjidkita/internal/mosque/repository"
	"github.com/masjidkita/masjidkita/internal/zakat/domain"
	zakatrepo "github.com/masjidkita/masjidkita/internal/zakat/repository"
)

type zakatEnv struct {
	db   *gorm.DB
	svc  domain.Service
	node *snowflake.Node

	mosque mosquedomain.Mosque
	admin  authdomain.User
	member authdomain.User
}

func newZakatEnv(t *testing.T) *zakatEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&authdomain.User{},
		&mosquedomain.Mosque{},
		&mosquedomain.MosqueAdmin{},
		&domain.Assessment{},
		&domain.Distribution{},
		&financedomain.Account{},
		&financedomain.Entry{},
		&financedomain.EntryLine{},
	))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	checker := authz.NewChecker(mosquerepo.NewRepository(conn))
	finance := financeservice.NewService(conn, node, financerepo.NewRepository(conn), log)

	cfg := config.Config{Zakat: config.ZakatConfig{
		NisabGoldGrams:     85,
		GoldPriceCentsGram: 35000,
	}}

	env := &zakatEnv{
		db:   conn,
		svc:  NewService(conn, node, zakatrepo.NewRepository(conn), finance, checker, clk, cfg, log),
		node: node,
	}

	env.mosque = mosquedomain.Mosque{ID: node.Generate(), Name: "Masjid Negeri", Slug: "masjid-negeri"}
	require.NoError(t, conn.Create(&env.mosque).Error)

	env.admin = authdomain.User{ID: node.Generate(), Email: "admin@example.com", DisplayName: "Admin"}
	require.NoError(t, conn.Create(&env.admin).Error)
	require.NoError(t, conn.Create(&mosquedomain.MosqueAdmin{
		ID:       node.Generate(),
		MosqueID: env.mosque.ID,
		UserID:   env.admin.ID,
	}).Error)

	env.member = authdomain.User{ID: node.Generate(), Email: "member@example.com", DisplayName: "Member"}
	require.NoError(t, conn.Create(&env.member).Error)

	ctx := context.Background()
	for _, a := range []struct {
		code, name string
		typ        financedomain.AccountType
	}{
		{financedomain.CodeCash, "Cash", financedomain.AccountAsset},
		{financedomain.CodeZakatDistributed, "Zakat Distributed", financedomain.AccountExpense},
	} {
		_, err := finance.CreateAccount(ctx, env.mosque.ID, a.code, a.name, a.typ)
		require.NoError(t, err)
	}
	return env
}

func (e *zakatEnv) adminActor() authz.Actor { return authz.Actor{UserID: e.admin.ID} }

func TestAssessComputesDueFromConfiguredNisab(t *testing.T) {
	env := newZakatEnv(t)

	// 85g * RM 350/g = RM 29,750 nisab.
	a, err := env.svc.Assess(context.Background(), env.member.ID, domain.AssessRequest{
		MosqueID:    env.mosque.ID,
		Year:        2025,
		WealthCents: 4_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2_975_000), a.NisabCents)
	assert.Equal(t, int64(100_000), a.ZakatDueCents)
}

func TestAssessBelowNisabOwesNothing(t *testing.T) {
	env := newZakatEnv(t)

	a, err := env.svc.Assess(context.Background(), env.member.ID, domain.AssessRequest{
		MosqueID:         env.mosque.ID,
		Year:             2025,
		WealthCents:      3_000_000,
		LiabilitiesCents: 500_000,
	})
	require.NoError(t, err)
	assert.Zero(t, a.ZakatDueCents)
}

func TestAssessRepeatReplacesSameYear(t *testing.T) {
	env := newZakatEnv(t)
	ctx := context.Background()

	_, err := env.svc.Assess(ctx, env.member.ID, domain.AssessRequest{
		MosqueID:    env.mosque.ID,
		Year:        2025,
		WealthCents: 4_000_000,
	})
	require.NoError(t, err)

	_, err = env.svc.Assess(ctx, env.member.ID, domain.AssessRequest{
		MosqueID:    env.mosque.ID,
		Year:        2025,
		WealthCents: 6_000_000,
	})
	require.NoError(t, err)

	stored, err := env.svc.GetAssessment(ctx, env.member.ID, env.mosque.ID, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(6_000_000), stored.WealthCents)
	assert.Equal(t, int64(150_000), stored.ZakatDueCents)

	var count int64
	require.NoError(t, env.db.Model(&domain.Assessment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAssessRejectsNegativeFigures(t *testing.T) {
	env := newZakatEnv(t)

	_, err := env.svc.Assess(context.Background(), env.member.ID, domain.AssessRequest{
		MosqueID:    env.mosque.ID,
		Year:        2025,
		WealthCents: -1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestListAssessmentsRequiresMosqueAdmin(t *testing.T) {
	env := newZakatEnv(t)

	_, err := env.svc.ListAssessments(context.Background(), authz.Actor{UserID: env.member.ID}, env.mosque.ID, 2025)
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestDistributePostsLedgerEntry(t *testing.T) {
	env := newZakatEnv(t)

	d, err := env.svc.Distribute(context.Background(), env.adminActor(), domain.DistributeRequest{
		MosqueID:      env.mosque.ID,
		RecipientName: "Encik Rahim",
		AsnafCategory: domain.AsnafFakir,
		AmountCents:   50_000,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", d.DistributedAt.Format("2006-01-02"))

	var entry financedomain.Entry
	require.NoError(t, env.db.Preload("Lines").
		Where("source_type = ? AND source_id = ?", "zakat_distribution", d.ID).
		First(&entry).Error)
	require.Len(t, entry.Lines, 2)

	var debit, credit int64
	for _, l := range entry.Lines {
		debit += l.DebitCents
		credit += l.CreditCents
	}
	assert.Equal(t, int64(50_000), debit)
	assert.Equal(t, int64(50_000), credit)
}

func TestDistributeRejectsUnknownAsnaf(t *testing.T) {
	env := newZakatEnv(t)

	_, err := env.svc.Distribute(context.Background(), env.adminActor(), domain.DistributeRequest{
		MosqueID:      env.mosque.ID,
		RecipientName: "Encik Rahim",
		AsnafCategory: "vip",
		AmountCents:   50_000,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAsnaf)
}
