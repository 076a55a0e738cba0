package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Transition(t *testing.T) {
	now := time.Date(2024, 3, 21, 10, 0, 0, 0, time.UTC)

	t.Run("pending to approved", func(t *testing.T) {
		r := Request{ID: 1, Status: RequestStatusPending}
		require.NoError(t, r.Transition(RequestStatusApproved, now))
		assert.Equal(t, RequestStatusApproved, r.Status)
		assert.Equal(t, now, r.UpdatedAt)
	})

	t.Run("pending to rejected", func(t *testing.T) {
		r := Request{ID: 1, Status: RequestStatusPending}
		require.NoError(t, r.Transition(RequestStatusRejected, now))
		assert.Equal(t, RequestStatusRejected, r.Status)
	})

	t.Run("double approval is refused", func(t *testing.T) {
		r := Request{ID: 1, Status: RequestStatusApproved}
		err := r.Transition(RequestStatusApproved, now)
		assert.True(t, errors.Is(err, ErrInvalidTransition))
		assert.Equal(t, RequestStatusApproved, r.Status)
	})

	t.Run("rejected cannot be approved", func(t *testing.T) {
		r := Request{ID: 1, Status: RequestStatusRejected}
		assert.ErrorIs(t, r.Transition(RequestStatusApproved, now), ErrInvalidTransition)
	})

	t.Run("back to pending is refused", func(t *testing.T) {
		r := Request{ID: 1, Status: RequestStatusPending}
		assert.ErrorIs(t, r.Transition(RequestStatusPending, now), ErrInvalidTransition)
		assert.Equal(t, RequestStatusPending, r.Status)
	})
}

func TestParseRequestKind(t *testing.T) {
	for in, want := range map[string]RequestKind{
		"deposit":     KindDeposit,
		"Deposits":    KindDeposit,
		"withdrawals": KindWithdrawal,
		" send ":      KindSend,
	} {
		got, err := ParseRequestKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseRequestKind("refund")
	assert.Error(t, err)
}

func TestUser_CloneIsDeep(t *testing.T) {
	floor := 100.0
	u := User{
		AssignedBanks: []int{1},
		CustomFee:     &CustomFee{Type: FeeFixed, Value: 3},
		Limits:        &Limits{Withdrawal: Range{Min: &floor}},
	}

	c := u.Clone()
	c.AssignedBanks[0] = 9
	c.CustomFee.Value = 10
	*c.Limits.Withdrawal.Min = 1

	assert.Equal(t, 1, u.AssignedBanks[0])
	assert.Equal(t, 3.0, u.CustomFee.Value)
	assert.Equal(t, 100.0, *u.Limits.Withdrawal.Min)
}

func TestCustomFee_Amount(t *testing.T) {
	assert.Equal(t, 25.0, CustomFee{Type: FeePercentage, Value: 2.5}.Amount(1000))
	assert.Equal(t, 4.0, CustomFee{Type: FeeFixed, Value: 4}.Amount(1000))
}

func TestRegistration_ToUser(t *testing.T) {
	now := time.Now()
	reg := UserRegistration{ID: 2, FirstName: "Jane", LastName: "Smith", Email: "jane@example.com", IDCard: "id.jpg"}

	u := reg.ToUser(now)

	assert.Equal(t, 2, u.ID)
	assert.Equal(t, UserStatusApproved, u.Status)
	assert.Equal(t, RoleUser, u.Role)
	assert.Zero(t, u.Balance)
	assert.Empty(t, u.AssignedBanks)
	assert.Equal(t, "id.jpg", u.IDDocument)
	assert.Equal(t, "Jane Smith", u.FullName())
}

func TestSystemSettings_Validate(t *testing.T) {
	assert.NoError(t, DefaultSystemSettings().Validate())

	bad := DefaultSystemSettings()
	bad.WithdrawalMinLimit = 20000
	assert.ErrorIs(t, bad.Validate(), ErrInvalidSettings)

	bad = DefaultSystemSettings()
	bad.DefaultTransactionFee = 150
	assert.ErrorIs(t, bad.Validate(), ErrInvalidSettings)

	fixed := DefaultSystemSettings()
	fixed.IsPercentageFee = false
	fixed.DefaultTransactionFee = 150
	assert.NoError(t, fixed.Validate())
}

func TestSettingsPatch_Apply(t *testing.T) {
	fee := 1.0
	percentage := false
	got := SettingsPatch{DefaultTransactionFee: &fee, IsPercentageFee: &percentage}.Apply(DefaultSystemSettings())

	assert.Equal(t, 1.0, got.DefaultTransactionFee)
	assert.False(t, got.IsPercentageFee)
	assert.Equal(t, 10000.0, got.WithdrawalMaxLimit)
}

func TestTransactionFilter_Matches(t *testing.T) {
	tx := Transaction{Type: KindWithdrawal, Amount: 300, Date: "2024-03-19"}
	lo, hi := 100.0, 250.0

	assert.True(t, TransactionFilter{}.Matches(tx))
	assert.True(t, TransactionFilter{Type: KindWithdrawal, DateFrom: "2024-03-19", DateTo: "2024-03-19"}.Matches(tx))
	assert.False(t, TransactionFilter{Type: KindDeposit}.Matches(tx))
	assert.False(t, TransactionFilter{DateFrom: "2024-03-20"}.Matches(tx))
	assert.True(t, TransactionFilter{MinAmount: &lo}.Matches(tx))
	assert.False(t, TransactionFilter{MaxAmount: &hi}.Matches(tx))
}

func TestTransactionFromRequest(t *testing.T) {
	assert.Equal(t, TransactionPending, TransactionFromRequest(Request{Status: RequestStatusPending}).Status)
	assert.Equal(t, TransactionCompleted, TransactionFromRequest(Request{Status: RequestStatusApproved}).Status)
	assert.Equal(t, TransactionFailed, TransactionFromRequest(Request{Status: RequestStatusRejected}).Status)
}
