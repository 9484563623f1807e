package service

import (
	"context"
	"fmt"
	"strings"
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
	financedomain "github.com/masjidkita/masjidkita/internal/finance/domain"
	financerepo "github.com/masjidkita/masjidkita/internal/finance/repository"
	financeservice "github.com/masjidkita/masjidkita/internal/finance/service"
	khairatdomain "github.com/masjidkita/masjidkita/internal/khairat/domain"
	khairatrepo "github.com/masjidkita/masjidkita/internal/khairat/repository"
	khairatservice "github.com/masjidkita/masjidkita/internal/khairat/service"
	"github.com/masjidkita/masjidkita/internal/legacy/domain"
	legacyrepo "github.com/masjidkita/masjidkita/internal/legacy/repository"
	mosquedomain "github.com/masjidkita/masjidkita/internal/mosque/domain"
	mosquerepo "github.com/masjidkita/masjidkita/internal/mosque/repository"
	notifdomain "github.com/masjidkita/masjidkita/internal/notification/domain"
	notifrepo "github.com/masjidkita/masjidkita/internal/notification/repository"
	notifservice "github.com/masjidkita/masjidkita/internal/notification/service"
)

type legacyEnv struct {
	db   *gorm.DB
	svc  domain.Service
	node *snowflake.Node

	mosque  mosquedomain.Mosque
	admin   authdomain.User
	program khairatdomain.Program
}

func newLegacyEnv(t *testing.T) *legacyEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&authdomain.User{},
		&mosquedomain.Mosque{},
		&mosquedomain.MosqueAdmin{},
		&domain.Record{},
		&khairatdomain.Program{},
		&khairatdomain.Contribution{},
		&financedomain.Account{},
		&financedomain.Entry{},
		&financedomain.EntryLine{},
		&notifdomain.Notification{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	mosques := mosquerepo.NewRepository(conn)
	checker := authz.NewChecker(mosques)
	notifier := notifservice.NewService(log, notifrepo.NewRepository(conn), node)
	finance := financeservice.NewService(conn, node, financerepo.NewRepository(conn), log)
	khairat := khairatservice.NewService(conn, node, khairatrepo.NewRepository(conn), finance, checker, clk, log)

	env := &legacyEnv{
		db:   conn,
		svc:  NewService(conn, node, legacyrepo.NewRepository(conn), khairat, notifier, checker, clk, log),
		node: node,
	}

	ctx := context.Background()

	env.mosque = mosquedomain.Mosque{ID: node.Generate(), Name: "Masjid Al-Falah", Slug: "masjid-al-falah"}
	require.NoError(t, conn.Create(&env.mosque).Error)

	env.admin = authdomain.User{ID: node.Generate(), Email: "admin@example.com", DisplayName: "Admin"}
	require.NoError(t, conn.Create(&env.admin).Error)
	require.NoError(t, conn.Create(&mosquedomain.MosqueAdmin{
		ID:       node.Generate(),
		MosqueID: env.mosque.ID,
		UserID:   env.admin.ID,
	}).Error)

	for _, a := range []struct {
		code, name string
		typ        financedomain.AccountType
	}{
		{financedomain.CodeCash, "Cash", financedomain.AccountAsset},
		{financedomain.CodeKhairatIncome, "Khairat Contributions", financedomain.AccountIncome},
	} {
		_, err := finance.CreateAccount(ctx, env.mosque.ID, a.code, a.name, a.typ)
		require.NoError(t, err)
	}

	program, err := khairat.CreateProgram(ctx, env.adminActor(), khairatdomain.CreateProgramRequest{
		MosqueID: env.mosque.ID,
		Name:     "Khairat Kematian",
		Year:     2024,
	})
	require.NoError(t, err)
	env.program = *program

	return env
}

func (e *legacyEnv) adminActor() authz.Actor { return authz.Actor{UserID: e.admin.ID} }

func (e *legacyEnv) newUser(t *testing.T, ic string) authdomain.User {
	t.Helper()
	u := authdomain.User{
		ID:          e.node.Generate(),
		Email:       fmt.Sprintf("user%s@example.com", e.node.Generate()),
		DisplayName: "User " + ic,
	}
	if ic != "" {
		u.ICPassportNumber = &ic
	}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

const sampleCSV = `full_name,ic_passport_number,amount,payment_date,receipt_no
Ahmad bin Ali,880101-14-5523,25.00,2024-06-15,R001
Siti binti Omar,900202-10-1234,25.00,2024-06-16,R002
Hassan bin Idris,,30.50,17/06/2024,R003
Bad Row,,,not-a-date,R004
Fatimah binti Yusof,750303-08-7788,25.00,2024-06-18,R005
`

func TestImportCSVSkipsBadRows(t *testing.T) {
	env := newLegacyEnv(t)

	result, err := env.svc.ImportCSV(context.Background(), env.adminActor(), env.mosque.ID, strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Imported)
	require.Len(t, result.RowErrors, 1)
	assert.Equal(t, 5, result.RowErrors[0].Line)
	assert.NotEmpty(t, result.BatchID)

	records, err := env.svc.ListRecords(context.Background(), env.adminActor(), env.mosque.ID, false)
	require.NoError(t, err)
	assert.Len(t, records, 4)
	for _, rec := range records {
		assert.Equal(t, result.BatchID, rec.ImportBatchID)
	}
}

func TestImportCSVEmptyFails(t *testing.T) {
	env := newLegacyEnv(t)

	_, err := env.svc.ImportCSV(context.Background(), env.adminActor(), env.mosque.ID, strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrEmptyImport)
}

func TestCandidatesOrdersICMatchesFirst(t *testing.T) {
	env := newLegacyEnv(t)
	env.newUser(t, "770707-07-7777")
	match := env.newUser(t, "880101-14-5523")

	result, err := env.svc.ImportCSV(context.Background(), env.adminActor(), env.mosque.ID, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 4, result.Imported)

	records, err := env.svc.ListRecords(context.Background(), env.adminActor(), env.mosque.ID, false)
	require.NoError(t, err)
	var target domain.Record
	for _, rec := range records {
		if rec.ICPassportNumber == "880101-14-5523" {
			target = rec
		}
	}
	require.NotZero(t, target.ID)

	candidates, err := env.svc.Candidates(context.Background(), env.adminActor(), target.ID, true)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.Equal(t, match.ID, candidates[0].UserID)
	assert.True(t, candidates[0].ICMatch)
}

func TestMatchCreatesContributionAndLedgerEntry(t *testing.T) {
	env := newLegacyEnv(t)
	user := env.newUser(t, "880101-14-5523")

	_, err := env.svc.ImportCSV(context.Background(), env.adminActor(), env.mosque.ID, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	records, err := env.svc.ListRecords(context.Background(), env.adminActor(), env.mosque.ID, false)
	require.NoError(t, err)
	rec := records[len(records)-1]

	matched, err := env.svc.Match(context.Background(), env.adminActor(), domain.MatchRequest{
		RecordID:  rec.ID,
		UserID:    user.ID,
		ProgramID: env.program.ID,
	})
	require.NoError(t, err)
	assert.True(t, matched.Matched)
	require.NotNil(t, matched.MatchedContributionID)

	var contribution khairatdomain.Contribution
	require.NoError(t, env.db.Where("id = ?", *matched.MatchedContributionID).First(&contribution).Error)
	assert.Equal(t, rec.AmountCents, contribution.AmountCents)
	assert.Equal(t, khairatdomain.SourceLegacyImport, contribution.Source)

	var entries int64
	require.NoError(t, env.db.Model(&financedomain.Entry{}).
		Where("source_type = ?", "khairat_contribution").
		Count(&entries).Error)
	assert.Equal(t, int64(1), entries)

	var notifications []notifdomain.Notification
	require.NoError(t, env.db.Where("user_id = ?", user.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, notifdomain.TypeContributionMatched, notifications[0].Type)

	_, err = env.svc.Match(context.Background(), env.adminActor(), domain.MatchRequest{
		RecordID:  rec.ID,
		UserID:    user.ID,
		ProgramID: env.program.ID,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyMatched)
}

func TestUnmatchRestoresRecordAndReversesLedger(t *testing.T) {
	env := newLegacyEnv(t)
	user := env.newUser(t, "880101-14-5523")

	_, err := env.svc.ImportCSV(context.Background(), env.adminActor(), env.mosque.ID, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	records, err := env.svc.ListRecords(context.Background(), env.adminActor(), env.mosque.ID, false)
	require.NoError(t, err)
	rec := records[0]

	matched, err := env.svc.Match(context.Background(), env.adminActor(), domain.MatchRequest{
		RecordID:  rec.ID,
		UserID:    user.ID,
		ProgramID: env.program.ID,
	})
	require.NoError(t, err)
	contributionID := *matched.MatchedContributionID

	unmatched, err := env.svc.Unmatch(context.Background(), env.adminActor(), rec.ID)
	require.NoError(t, err)
	assert.False(t, unmatched.Matched)
	assert.Nil(t, unmatched.MatchedUserID)
	assert.Nil(t, unmatched.MatchedContributionID)

	var count int64
	require.NoError(t, env.db.Model(&khairatdomain.Contribution{}).
		Where("id = ?", contributionID).
		Count(&count).Error)
	assert.Zero(t, count)

	var reversals int64
	require.NoError(t, env.db.Model(&financedomain.Entry{}).
		Where("source_type = ?", "khairat_contribution_reversal").
		Count(&reversals).Error)
	assert.Equal(t, int64(1), reversals)
}

func TestBulkMatchPartialSuccess(t *testing.T) {
	env := newLegacyEnv(t)
	user := env.newUser(t, "880101-14-5523")

	result, err := env.svc.ImportCSV(context.Background(), env.adminActor(), env.mosque.ID, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 4, result.Imported)

	records, err := env.svc.ListRecords(context.Background(), env.adminActor(), env.mosque.ID, false)
	require.NoError(t, err)
	require.Len(t, records, 4)

	reqs := make([]domain.MatchRequest, 0, len(records))
	for i, rec := range records {
		programID := env.program.ID
		if i == 2 {
			// Unknown program makes this item fail while the rest commit.
			programID = env.node.Generate()
		}
		reqs = append(reqs, domain.MatchRequest{
			RecordID:  rec.ID,
			UserID:    user.ID,
			ProgramID: programID,
		})
	}

	bulk, err := env.svc.BulkMatch(context.Background(), env.adminActor(), reqs)
	require.NoError(t, err)
	assert.Equal(t, 3, bulk.Processed)
	require.Len(t, bulk.FailedRecords, 1)
	assert.Equal(t, records[2].ID, bulk.FailedRecords[0].RecordID)

	remaining, err := env.svc.ListRecords(context.Background(), env.adminActor(), env.mosque.ID, false)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestBulkUnmatch(t *testing.T) {
	env := newLegacyEnv(t)
	user := env.newUser(t, "880101-14-5523")

	_, err := env.svc.ImportCSV(context.Background(), env.adminActor(), env.mosque.ID, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	records, err := env.svc.ListRecords(context.Background(), env.adminActor(), env.mosque.ID, false)
	require.NoError(t, err)

	var ids []snowflake.ID
	for _, rec := range records[:2] {
		_, err := env.svc.Match(context.Background(), env.adminActor(), domain.MatchRequest{
			RecordID:  rec.ID,
			UserID:    user.ID,
			ProgramID: env.program.ID,
		})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	// Never matched; its unmatch should fail without touching the others.
	ids = append(ids, records[2].ID)

	bulk, err := env.svc.BulkUnmatch(context.Background(), env.adminActor(), ids)
	require.NoError(t, err)
	assert.Equal(t, 2, bulk.Processed)
	require.Len(t, bulk.FailedRecords, 1)
	assert.Equal(t, records[2].ID, bulk.FailedRecords[0].RecordID)
}
