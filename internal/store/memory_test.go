package store

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cashora/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	require.NoError(t, Seed(s, SeedOptions{
		AdminEmail:        "admin@cashora.com",
		AdminPasswordHash: "admin-hash",
		DemoPasswordHash:  "demo-hash",
	}))
	return s
}

func TestSeed(t *testing.T) {
	s := seededStore(t)

	john, err := s.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", john.FullName())
	assert.Equal(t, []int{1}, john.AssignedBanks)
	require.NotNil(t, john.Limits)
	assert.Equal(t, 5000.0, *john.Limits.Withdrawal.Max)

	jane, err := s.GetRegistration(2)
	require.NoError(t, err)
	assert.Equal(t, "janesmith", jane.Username)

	admin, err := s.FindUser("ADMIN@cashora.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	banks := s.ListBanks()
	require.Len(t, banks, 3)
	assert.Equal(t, 1, banks[0].AssignedUsers)
	assert.Equal(t, 0, banks[1].AssignedUsers)

	assert.Len(t, s.ListRequests(""), 3)
	deposits := s.ListRequests(models.KindDeposit)
	require.Len(t, deposits, 1)
	assert.Equal(t, models.RequestStatusPending, deposits[0].Status)
	sends := s.ListRequests(models.KindSend)
	require.Len(t, sends, 1)
	assert.Equal(t, "Jane Smith", sends[0].RecipientName)
}

func TestMemoryStore_ReadsAreCopies(t *testing.T) {
	s := seededStore(t)

	u, _ := s.GetUser(1)
	u.AssignedBanks[0] = 99
	u.Balance = 0

	again, _ := s.GetUser(1)
	assert.Equal(t, []int{1}, again.AssignedBanks)
	assert.Equal(t, 1000.0, again.Balance)
}

func TestMemoryStore_DuplicateIdentity(t *testing.T) {
	s := seededStore(t)

	_, err := s.CreateRegistration(models.UserRegistration{Email: "JOHN@example.com", Username: "someone"})
	assert.ErrorIs(t, err, models.ErrDuplicateUser)

	_, err = s.CreateRegistration(models.UserRegistration{Email: "new@example.com", Username: "janesmith"})
	assert.ErrorIs(t, err, models.ErrDuplicateUser)

	reg, err := s.CreateRegistration(models.UserRegistration{Email: "new@example.com", Username: "newbie"})
	require.NoError(t, err)
	assert.Equal(t, 4, reg.ID)
}

func TestMemoryStore_PromoteRegistration(t *testing.T) {
	s := seededStore(t)

	u, err := s.PromoteRegistration(2)
	require.NoError(t, err)
	assert.Equal(t, 2, u.ID)
	assert.Equal(t, models.UserStatusApproved, u.Status)

	_, err = s.GetRegistration(2)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = s.PromoteRegistration(2)
	assert.ErrorIs(t, err, models.ErrNotFound)

	found, err := s.FindUser("janesmith")
	require.NoError(t, err)
	assert.Equal(t, 2, found.ID)
}

func TestMemoryStore_UpdateUser(t *testing.T) {
	s := seededStore(t)

	t.Run("unknown bank is refused", func(t *testing.T) {
		_, err := s.UpdateUser(1, func(u *models.User) error {
			u.AssignedBanks = []int{1, 42}
			return nil
		})
		assert.ErrorIs(t, err, models.ErrUnknownBank)

		u, _ := s.GetUser(1)
		assert.Equal(t, []int{1}, u.AssignedBanks)
	})

	t.Run("failing mutation leaves user untouched", func(t *testing.T) {
		_, err := s.UpdateUser(1, func(u *models.User) error {
			u.Balance = 5
			return errors.New("boom")
		})
		assert.Error(t, err)

		u, _ := s.GetUser(1)
		assert.Equal(t, 1000.0, u.Balance)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := s.UpdateUser(404, func(u *models.User) error { return nil })
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestMemoryStore_DeleteBankUnassigns(t *testing.T) {
	s := seededStore(t)

	require.NoError(t, s.DeleteBank(1))

	u, _ := s.GetUser(1)
	assert.Empty(t, u.AssignedBanks)
	assert.Len(t, s.ListBanks(), 2)
	assert.ErrorIs(t, s.DeleteBank(1), models.ErrNotFound)

	b, err := s.CreateBank("Bank D")
	require.NoError(t, err)
	assert.Equal(t, 4, b.ID, "ids are never reused after a delete")
}

func TestMemoryStore_RequestDecidedOnce(t *testing.T) {
	s := seededStore(t)

	var wg sync.WaitGroup
	var wins int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateRequest(1, func(r *models.Request) error {
				return r.Transition(models.RequestStatusApproved, time.Now())
			})
			if err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	r, _ := s.GetRequest(1)
	assert.Equal(t, models.RequestStatusApproved, r.Status)
}

func TestMemoryStore_CreateRequestForcesPending(t *testing.T) {
	s := NewMemoryStore()
	fixed := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	r, err := s.CreateRequest(models.Request{Kind: models.KindDeposit, Amount: 10, Status: models.RequestStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, r.Status)
	assert.Equal(t, "2024-04-01", r.Date)
}
