package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wekezahq/coopledger-backend/pkg/db/models"
	"github.com/wekezahq/coopledger-backend/pkg/enums"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	funds := `
CREATE TABLE IF NOT EXISTS funds (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'general',
  status TEXT NOT NULL DEFAULT 'active',
  balance TEXT NOT NULL DEFAULT '0',
  project_id TEXT,
  reconciliation_status TEXT NOT NULL DEFAULT 'unverified',
  reconciled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	members := `
CREATE TABLE IF NOT EXISTS members (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT,
  phone TEXT,
  shares INTEGER NOT NULL DEFAULT 0,
  total_contributed TEXT NOT NULL DEFAULT '0',
  status TEXT NOT NULL DEFAULT 'active',
  user_id TEXT,
  joined_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	projects := `
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  category TEXT NOT NULL,
  tags TEXT,
  initial_investment TEXT NOT NULL DEFAULT '0',
  budget TEXT NOT NULL DEFAULT '0',
  expected_return TEXT NOT NULL DEFAULT '0',
  total_shares INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'planned',
  health TEXT NOT NULL DEFAULT 'on_track',
  fund_id TEXT NOT NULL,
  current_fund_balance TEXT NOT NULL DEFAULT '0',
  total_earnings TEXT NOT NULL DEFAULT '0',
  total_expenses TEXT NOT NULL DEFAULT '0',
  created_at DATETIME,
  updated_at DATETIME
);`
	projectUpdates := `
CREATE TABLE IF NOT EXISTS project_updates (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  sequence INTEGER NOT NULL,
  type TEXT NOT NULL,
  amount TEXT NOT NULL,
  description TEXT NOT NULL,
  balance_before TEXT NOT NULL,
  balance_after TEXT NOT NULL,
  transaction_id TEXT,
  created_at DATETIME,
  UNIQUE (project_id, sequence)
);`
	transactions := `
CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  amount TEXT NOT NULL,
  description TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  date DATETIME NOT NULL,
  member_id TEXT,
  project_id TEXT,
  fund_id TEXT,
  method TEXT,
  authorized_by TEXT NOT NULL,
  reference TEXT,
  balance_before TEXT NOT NULL DEFAULT '0',
  balance_after TEXT NOT NULL DEFAULT '0',
  metadata TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`

	for _, ddl := range []string{funds, members, projects, projectUpdates, transactions} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func TestRepositoryTransactionRoundtrip(t *testing.T) {
	t.Parallel()

	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	fundID := uuid.New()
	memberID := uuid.New()
	method := enums.DepositMethodCash
	txn := &models.Transaction{
		ID:            uuid.New(),
		Type:          enums.TransactionTypeDeposit,
		Amount:        decimal.RequireFromString("150.00"),
		Description:   "monthly contribution",
		Status:        enums.TransactionStatusPending,
		Date:          testDate(t),
		MemberID:      &memberID,
		FundID:        &fundID,
		Method:        &method,
		AuthorizedBy:  "Treasurer",
		Reference:     "DEP-TEST",
		BalanceBefore: decimal.Zero,
		BalanceAfter:  decimal.Zero,
	}
	require.NoError(t, repo.CreateTransaction(ctx, txn))

	found, err := repo.FindTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionTypeDeposit, found.Type)
	assert.True(t, found.Amount.Equal(decimal.RequireFromString("150.00")))
	require.NotNil(t, found.Method)
	assert.Equal(t, enums.DepositMethodCash, *found.Method)

	require.NoError(t, repo.UpdateTransaction(ctx, txn.ID, map[string]any{
		"status":        enums.TransactionStatusCompleted,
		"authorized_by": "Chair",
	}))
	found, err = repo.FindTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCompleted, found.Status)
	assert.Equal(t, "Chair", found.AuthorizedBy)

	require.NoError(t, repo.DeleteTransaction(ctx, txn.ID))
	_, err = repo.FindTransaction(ctx, txn.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryNextProjectUpdateSequence(t *testing.T) {
	t.Parallel()

	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	projectID := uuid.New()
	seq, err := repo.NextProjectUpdateSequence(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	require.NoError(t, repo.CreateProjectUpdate(ctx, &models.ProjectUpdate{
		ID:            uuid.New(),
		ProjectID:     projectID,
		Sequence:      seq,
		Type:          enums.ProjectUpdateTypeEarning,
		Amount:        decimal.RequireFromString("40.00"),
		Description:   "first sale",
		BalanceBefore: decimal.Zero,
		BalanceAfter:  decimal.RequireFromString("40.00"),
	}))

	seq, err = repo.NextProjectUpdateSequence(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)

	// Sequences are scoped per project.
	other, err := repo.NextProjectUpdateSequence(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}

func TestRepositoryListActiveShareholders(t *testing.T) {
	t.Parallel()

	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seed := []models.Member{
		{ID: uuid.New(), Name: "Holder", Shares: 10, Status: enums.MemberStatusActive},
		{ID: uuid.New(), Name: "Zero", Shares: 0, Status: enums.MemberStatusActive},
		{ID: uuid.New(), Name: "Suspended", Shares: 5, Status: enums.MemberStatusSuspended},
	}
	for i := range seed {
		seed[i].TotalContributed = decimal.Zero
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	members, err := repo.ListActiveShareholders(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Holder", members[0].Name)
}

func TestRepositorySumCompletedByFund(t *testing.T) {
	t.Parallel()

	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	fundID := uuid.New()
	otherFund := uuid.New()
	rows := []models.Transaction{
		{Type: enums.TransactionTypeDeposit, Amount: decimal.RequireFromString("300.00"), Status: enums.TransactionStatusCompleted},
		{Type: enums.TransactionTypeEarning, Amount: decimal.RequireFromString("50.00"), Status: enums.TransactionStatusCompleted},
		{Type: enums.TransactionTypeExpense, Amount: decimal.RequireFromString("80.00"), Status: enums.TransactionStatusCompleted},
		// Pending rows never count.
		{Type: enums.TransactionTypeDeposit, Amount: decimal.RequireFromString("999.00"), Status: enums.TransactionStatusPending},
		// Adjustments contribute their signed snapshot delta.
		{
			Type:          enums.TransactionTypeAdjustment,
			Amount:        decimal.RequireFromString("10.00"),
			Status:        enums.TransactionStatusCompleted,
			BalanceBefore: decimal.RequireFromString("270.00"),
			BalanceAfter:  decimal.RequireFromString("260.00"),
		},
	}
	for i := range rows {
		rows[i].ID = uuid.New()
		rows[i].FundID = &fundID
		rows[i].Description = "seed"
		rows[i].AuthorizedBy = "Treasurer"
		rows[i].Date = testDate(t)
		require.NoError(t, db.Create(&rows[i]).Error)
	}
	foreign := models.Transaction{
		ID:           uuid.New(),
		Type:         enums.TransactionTypeDeposit,
		Amount:       decimal.RequireFromString("500.00"),
		Status:       enums.TransactionStatusCompleted,
		Description:  "seed",
		AuthorizedBy: "Treasurer",
		Date:         testDate(t),
		FundID:       &otherFund,
	}
	require.NoError(t, db.Create(&foreign).Error)

	flows, err := repo.SumCompletedByFund(ctx, fundID)
	require.NoError(t, err)
	// 300 + 50 deposits/earnings, minus 10 adjustment delta.
	assert.True(t, flows.TotalIn.Equal(decimal.RequireFromString("340.00")), "total in %s", flows.TotalIn)
	assert.True(t, flows.TotalOut.Equal(decimal.RequireFromString("80.00")), "total out %s", flows.TotalOut)
	assert.True(t, flows.Net().Equal(decimal.RequireFromString("260.00")), "net %s", flows.Net())
}

func TestRepositoryWithTxBindsTransaction(t *testing.T) {
	t.Parallel()

	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	fund := models.Fund{
		ID:      uuid.New(),
		Name:    "General",
		Type:    enums.FundTypeGeneral,
		Status:  enums.FundStatusActive,
		Balance: decimal.RequireFromString("100.00"),
	}
	require.NoError(t, db.Create(&fund).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		bound := repo.WithTx(tx)
		if err := bound.UpdateFund(ctx, fund.ID, map[string]any{"balance": decimal.RequireFromString("40.00")}); err != nil {
			return err
		}
		return fmt.Errorf("force rollback")
	})
	require.Error(t, err)

	found, err := repo.FindFund(ctx, fund.ID)
	require.NoError(t, err)
	assert.True(t, found.Balance.Equal(decimal.RequireFromString("100.00")), "balance %s", found.Balance)
}

func testDate(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
}
