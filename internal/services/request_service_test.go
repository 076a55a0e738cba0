package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cashora/backend/internal/events"
	"github.com/cashora/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRequestService_CreateDeposit(t *testing.T) {
	env := newTestEnv(t)
	svc := env.requests()
	ctx := context.Background()

	r, err := svc.CreateDeposit(ctx, 1, DepositRequest{FullName: " John Doe ", Amount: 75}, "receipt.pdf")
	require.NoError(t, err)
	assert.Equal(t, 4, r.ID)
	assert.Equal(t, models.KindDeposit, r.Kind)
	assert.Equal(t, models.RequestStatusPending, r.Status)
	assert.Equal(t, "John Doe", r.FullName)
	assert.Equal(t, "receipt.pdf", r.Document)
	assert.Zero(t, r.Fee)
	assert.Equal(t, 1, env.metrics.created["deposit"])
	assert.Equal(t, 2, env.metrics.pending["deposit"])

	_, err = svc.CreateDeposit(ctx, 1, DepositRequest{FullName: "J", Amount: 75}, "")
	assert.ErrorIs(t, err, models.ErrFullNameRequired)

	_, err = svc.CreateDeposit(ctx, 1, DepositRequest{FullName: "John Doe", Amount: 0}, "")
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = svc.CreateDeposit(ctx, 2, DepositRequest{FullName: "Jane Smith", Amount: 10}, "")
	assert.ErrorIs(t, err, models.ErrNotFound, "pending registrants are not users yet")
}

func TestRequestService_CreateWithdrawal(t *testing.T) {
	env := newTestEnv(t)
	svc := env.requests()
	ctx := context.Background()

	_, err := svc.CreateWithdrawal(ctx, 1, WithdrawalRequest{Amount: 50})
	assert.ErrorIs(t, err, models.ErrAmountOutOfRange)

	r, err := svc.CreateWithdrawal(ctx, 1, WithdrawalRequest{Amount: 200})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, r.Fee, 1e-9, "john's custom 2.5% fee")
	assert.Equal(t, "John Doe", r.UserName)

	_, err = env.store.UpdateUser(1, func(u *models.User) error {
		u.Status = models.UserStatusDeleted
		return nil
	})
	require.NoError(t, err)
	_, err = svc.CreateWithdrawal(ctx, 1, WithdrawalRequest{Amount: 200})
	assert.ErrorIs(t, err, models.ErrUserNotActive)
}

func TestRequestService_CreateSend(t *testing.T) {
	env := newTestEnv(t)
	svc := env.requests()
	ctx := context.Background()

	_, err := svc.CreateSend(ctx, 1, SendRequest{Recipient: "jane@example.com", Amount: 100})
	assert.ErrorIs(t, err, models.ErrNotFound, "recipient must be an approved user")

	env.approveJane(t)

	r, err := svc.CreateSend(ctx, 1, SendRequest{Recipient: "JaneSmith", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, r.RecipientID)
	assert.Equal(t, "Jane Smith", r.RecipientName)
	assert.InDelta(t, 2.5, r.Fee, 1e-9)

	tests := []struct {
		name      string
		recipient string
		amount    float64
		want      error
	}{
		{"self", "johndoe", 100, models.ErrSelfTransfer},
		{"admin", "admin", 100, models.ErrNotFound},
		{"unknown", "nobody@example.com", 100, models.ErrNotFound},
		{"above user limit", "jane@example.com", 1500, models.ErrAmountOutOfRange},
		{"below user limit", "jane@example.com", 5, models.ErrAmountOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSend(ctx, 1, SendRequest{Recipient: tt.recipient, Amount: tt.amount})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// Jane has no custom limits; the system send range applies.
	_, err = svc.CreateSend(ctx, 2, SendRequest{Recipient: "johndoe", Amount: 4999})
	assert.NoError(t, err)
}

func TestRequestService_ApproveWithdrawal(t *testing.T) {
	env := newTestEnv(t)
	svc := env.requests()
	svc.now = func() time.Time { return time.Date(2024, 3, 21, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	_, err := svc.Approve(ctx, 3, models.KindWithdrawal, 2, nil)
	assert.ErrorIs(t, err, models.ErrReferenceRequired)

	_, err = svc.Approve(ctx, 3, models.KindWithdrawal, 2, &models.BankTransactionDetails{Reference: "  "})
	assert.ErrorIs(t, err, models.ErrReferenceRequired)

	_, err = svc.Approve(ctx, 3, models.KindDeposit, 2, nil)
	assert.ErrorIs(t, err, models.ErrNotFound, "id belongs to another kind")

	r, err := svc.Approve(ctx, 3, models.KindWithdrawal, 2, &models.BankTransactionDetails{
		Reference: " TRX-001 ",
		BankName:  "Bank A",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, r.Status)
	assert.Equal(t, 3, r.DecidedBy)
	require.NotNil(t, r.BankDetails)
	assert.Equal(t, "TRX-001", r.BankDetails.Reference)
	assert.Equal(t, "2024-03-21", r.BankDetails.TransactionDate)

	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "john@example.com", sent[0].To)
	assert.Equal(t, "Your withdrawal request has been approved", sent[0].Subject)

	env.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e events.StatusEvent) bool {
		return e.Key() == "withdrawal:2" && e.Status == "approved" && e.Amount == 1000
	}))
	assert.Equal(t, 1, env.metrics.decided["withdrawal:approved"])
	assert.Equal(t, 0, env.metrics.pending["withdrawal"])

	_, err = svc.Reject(ctx, 3, models.KindWithdrawal, 2, "too late")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = svc.Approve(ctx, 3, models.KindWithdrawal, 2, &models.BankTransactionDetails{Reference: "TRX-002"})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	stored, _ := svc.Get(models.KindWithdrawal, 2)
	assert.Equal(t, "TRX-001", stored.BankDetails.Reference, "first decision stands")
	assert.Len(t, env.mailer.Sent(), 1)
}

func TestRequestService_Reject(t *testing.T) {
	env := newTestEnv(t)
	svc := env.requests()
	ctx := context.Background()

	_, err := svc.Reject(ctx, 3, models.KindDeposit, 1, " ")
	assert.ErrorIs(t, err, models.ErrReasonRequired)

	r, err := svc.Reject(ctx, 3, models.KindDeposit, 1, "Receipt is unreadable")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, r.Status)
	assert.Equal(t, "Receipt is unreadable", r.RejectReason)
	assert.Nil(t, r.BankDetails)

	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Your deposit request has been rejected. Reason: Receipt is unreadable", sent[0].Body)

	r, err = svc.Reject(ctx, 3, models.KindSend, 3, "")
	require.NoError(t, err, "a send can be rejected without a reason")
	assert.Equal(t, models.RequestStatusRejected, r.Status)
}

func TestRequestService_ApproveIgnoresDetailsForOtherKinds(t *testing.T) {
	env := newTestEnv(t)
	r, err := env.requests().Approve(context.Background(), 3, models.KindDeposit, 1, &models.BankTransactionDetails{Reference: "X"})
	require.NoError(t, err)
	assert.Nil(t, r.BankDetails)
}

func TestRequestService_SideEffectsNeverUndoDecision(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.fail["john@example.com"] = true
	publisher := &MockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	env.publisher = publisher

	svc := env.requests()
	r, err := svc.Approve(context.Background(), 3, models.KindDeposit, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, r.Status)

	stored, err := svc.Get(models.KindDeposit, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, stored.Status)
	assert.Empty(t, env.mailer.Sent())
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestRequestService_List(t *testing.T) {
	env := newTestEnv(t)
	env.approveJane(t)
	svc := env.requests()
	ctx := context.Background()

	_, err := svc.CreateSend(ctx, 2, SendRequest{Recipient: "johndoe", Amount: 42})
	require.NoError(t, err)
	_, err = svc.Reject(ctx, 3, models.KindSend, 3, "")
	require.NoError(t, err)

	sends := svc.List(models.KindSend, RequestFilter{})
	require.Len(t, sends, 2)

	pending := svc.List(models.KindSend, RequestFilter{Status: models.RequestStatusPending})
	require.Len(t, pending, 1)
	assert.Equal(t, 42.0, pending[0].Amount)

	assert.Len(t, svc.List(models.KindSend, RequestFilter{Search: "jane"}), 2)
	assert.Len(t, svc.List(models.KindSend, RequestFilter{Search: "42"}), 1)
	assert.Len(t, svc.List("", RequestFilter{Search: "2024-03-20"}), 3)
	assert.Empty(t, svc.List(models.KindDeposit, RequestFilter{Search: "zzz"}))

	janes := svc.ListForUser(2)
	require.Len(t, janes, 2, "filed and received")
	assert.Equal(t, 3, janes[0].ID)
}

func TestRequestService_Get(t *testing.T) {
	env := newTestEnv(t)
	svc := env.requests()

	r, err := svc.Get(models.KindSend, 3)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", r.RecipientName)

	_, err = svc.Get(models.KindDeposit, 3)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.Get(models.KindDeposit, 99)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
