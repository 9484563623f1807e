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

	"github.com/masjidkita/masjidkita/internal/finance/domain"
	financerepo "github.com/masjidkita/masjidkita/internal/finance/repository"
)

type ledgerEnv struct {
	db       *gorm.DB
	svc      domain.Service
	node     *snowflake.Node
	mosqueID snowflake.ID
}

func newLedgerEnv(t *testing.T) *ledgerEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Account{},
		&domain.Entry{},
		&domain.EntryLine{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	env := &ledgerEnv{
		db:       conn,
		svc:      NewService(conn, node, financerepo.NewRepository(conn), zap.NewNop()),
		node:     node,
		mosqueID: node.Generate(),
	}

	ctx := context.Background()
	for _, a := range []struct {
		code, name string
		typ        domain.AccountType
	}{
		{domain.CodeCash, "Cash", domain.AccountAsset},
		{domain.CodeKhairatIncome, "Khairat Contributions", domain.AccountIncome},
	} {
		_, err := env.svc.CreateAccount(ctx, env.mosqueID, a.code, a.name, a.typ)
		require.NoError(t, err)
	}
	return env
}

func (e *ledgerEnv) post(t *testing.T, sourceID snowflake.ID, amount int64) *domain.Entry {
	t.Helper()
	entry, err := e.svc.Post(context.Background(), nil, domain.PostRequest{
		MosqueID:    e.mosqueID,
		SourceType:  "khairat_contribution",
		SourceID:    sourceID,
		EntryDate:   time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "Khairat contribution",
		Lines: []domain.LineInput{
			{AccountCode: domain.CodeCash, DebitCents: amount},
			{AccountCode: domain.CodeKhairatIncome, CreditCents: amount},
		},
	})
	require.NoError(t, err)
	return entry
}

func TestPostBalancedEntry(t *testing.T) {
	env := newLedgerEnv(t)

	entry := env.post(t, env.node.Generate(), 2500)

	require.Len(t, entry.Lines, 2)
	assert.Equal(t, int64(2500), entry.Lines[0].DebitCents)
	assert.Equal(t, int64(2500), entry.Lines[1].CreditCents)
}

func TestPostUnbalancedEntryFails(t *testing.T) {
	env := newLedgerEnv(t)

	_, err := env.svc.Post(context.Background(), nil, domain.PostRequest{
		MosqueID:   env.mosqueID,
		SourceType: "khairat_contribution",
		SourceID:   env.node.Generate(),
		EntryDate:  time.Now(),
		Lines: []domain.LineInput{
			{AccountCode: domain.CodeCash, DebitCents: 2500},
			{AccountCode: domain.CodeKhairatIncome, CreditCents: 2000},
		},
	})
	assert.ErrorIs(t, err, domain.ErrUnbalancedEntry)
}

func TestPostLineWithBothSidesFails(t *testing.T) {
	env := newLedgerEnv(t)

	_, err := env.svc.Post(context.Background(), nil, domain.PostRequest{
		MosqueID:   env.mosqueID,
		SourceType: "khairat_contribution",
		SourceID:   env.node.Generate(),
		EntryDate:  time.Now(),
		Lines: []domain.LineInput{
			{AccountCode: domain.CodeCash, DebitCents: 100, CreditCents: 100},
			{AccountCode: domain.CodeKhairatIncome, CreditCents: 0},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestPostIsIdempotentPerSource(t *testing.T) {
	env := newLedgerEnv(t)
	sourceID := env.node.Generate()

	first := env.post(t, sourceID, 2500)
	second := env.post(t, sourceID, 2500)

	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, env.db.Model(&domain.Entry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPostUnknownAccountFails(t *testing.T) {
	env := newLedgerEnv(t)

	_, err := env.svc.Post(context.Background(), nil, domain.PostRequest{
		MosqueID:   env.mosqueID,
		SourceType: "khairat_contribution",
		SourceID:   env.node.Generate(),
		EntryDate:  time.Now(),
		Lines: []domain.LineInput{
			{AccountCode: "9999", DebitCents: 100},
			{AccountCode: domain.CodeKhairatIncome, CreditCents: 100},
		},
	})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestTrialBalanceSumsPerAccount(t *testing.T) {
	env := newLedgerEnv(t)
	env.post(t, env.node.Generate(), 2500)
	env.post(t, env.node.Generate(), 1500)

	balances, err := env.svc.TrialBalance(context.Background(), env.mosqueID)
	require.NoError(t, err)
	require.Len(t, balances, 2)

	byCode := map[string]domain.AccountBalance{}
	for _, b := range balances {
		byCode[b.Code] = b
	}
	assert.Equal(t, int64(4000), byCode[domain.CodeCash].DebitCents)
	assert.Equal(t, int64(4000), byCode[domain.CodeKhairatIncome].CreditCents)

	var totalDebits, totalCredits int64
	for _, b := range balances {
		totalDebits += b.DebitCents
		totalCredits += b.CreditCents
	}
	assert.Equal(t, totalDebits, totalCredits)
}

func TestDuplicateAccountCode(t *testing.T) {
	env := newLedgerEnv(t)

	_, err := env.svc.CreateAccount(context.Background(), env.mosqueID, domain.CodeCash, "Cash Again", domain.AccountAsset)
	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)
}
