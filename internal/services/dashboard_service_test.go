package services

import (
	"context"
	"testing"

	"github.com/cashora/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Admin(t *testing.T) {
	env := newTestEnv(t)
	svc := NewDashboardService(env.store)

	d := svc.Admin()
	assert.Equal(t, 1, d.TotalUsers)
	assert.Equal(t, 3, d.TransactionCount)
	assert.Zero(t, d.TotalDeposits, "nothing approved yet")
	assert.Equal(t, 1, d.PendingDeposits)
	assert.Equal(t, 1, d.PendingWithdrawals)
	assert.Equal(t, 1, d.PendingSends)
	assert.Equal(t, 1, d.PendingRegistrations)
	assert.Len(t, d.Recent, 3)

	var march *MonthlyActivity
	for i := range d.Monthly {
		if d.Monthly[i].Month == "2024-03" {
			march = &d.Monthly[i]
		}
	}
	require.NotNil(t, march)
	assert.Equal(t, 3, march.Transactions)
	for i := 1; i < len(d.Monthly); i++ {
		assert.Less(t, d.Monthly[i-1].Month, d.Monthly[i].Month)
	}

	_, err := env.requests().Approve(context.Background(), 3, models.KindDeposit, 1, nil)
	require.NoError(t, err)
	d = svc.Admin()
	assert.Equal(t, 500.0, d.TotalDeposits)
	assert.Zero(t, d.PendingDeposits)
}

func TestDashboardService_Recent(t *testing.T) {
	env := newTestEnv(t)
	svc := NewDashboardService(env.store)

	assert.Len(t, svc.Recent("all", ""), 3)
	assert.Len(t, svc.Recent("", ""), 3)
	assert.Equal(t, []int{2}, ids(svc.Recent("withdrawal", "")))
	assert.Equal(t, []int{2}, ids(svc.Recent("all", "1000")))
	assert.Len(t, svc.Recent("all", "JOHN"), 3)
	assert.Len(t, svc.Recent("all", "2024-03"), 3)
	assert.Empty(t, svc.Recent("deposit", "jane"))

	ctx := context.Background()
	requests := env.requests()
	for i := 0; i < 12; i++ {
		_, err := requests.CreateDeposit(ctx, 1, DepositRequest{FullName: "John Doe", Amount: float64(10 + i)}, "")
		require.NoError(t, err)
	}
	recent := svc.Recent("all", "")
	require.Len(t, recent, 10)
	assert.Equal(t, 15, recent[0].ID, "newest first")
}

func TestDashboardService_User(t *testing.T) {
	env := newTestEnv(t)
	svc := NewDashboardService(env.store)

	d, err := svc.User(1)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, d.Balance)
	assert.Equal(t, 3, d.TransactionCount)
	assert.Len(t, d.Recent, 3)

	_, err = env.requests().Approve(context.Background(), 3, models.KindWithdrawal, 2, &models.BankTransactionDetails{Reference: "TRX-9"})
	require.NoError(t, err)
	d, _ = svc.User(1)
	assert.Equal(t, 1000.0, d.TotalWithdrawals)
	assert.Zero(t, d.TotalDeposits)

	_, err = svc.User(2)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDashboardService_UserRecentNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	svc := NewDashboardService(env.store)

	ctx := context.Background()
	requests := env.requests()
	for i := 0; i < 12; i++ {
		_, err := requests.CreateDeposit(ctx, 1, DepositRequest{FullName: "John Doe", Amount: float64(10 + i)}, "")
		require.NoError(t, err)
	}

	d, err := svc.User(1)
	require.NoError(t, err)
	assert.Equal(t, 15, d.TransactionCount)
	require.Len(t, d.Recent, 10)
	assert.Equal(t, 15, d.Recent[0].ID, "newest first")
	assert.Equal(t, 6, d.Recent[9].ID)
}
