package store

import (
	"time"

	"github.com/cashora/backend/internal/models"
)

// SeedOptions carries the credentials for the seeded accounts. Hashes are
// computed by the caller so this package stays free of crypto config.
type SeedOptions struct {
	AdminEmail        string
	AdminPasswordHash string
	DemoPasswordHash  string
}

func float(v float64) *float64 { return &v }

// Seed loads the demo dataset the portal ships with: one approved user,
// one pending registration, an admin, three banks and one pending request
// of each kind.
func Seed(s *MemoryStore, opts SeedOptions) error {
	for _, name := range []string{"Bank A", "Bank B", "Bank C"} {
		if _, err := s.CreateBank(name); err != nil {
			return err
		}
	}

	john, err := s.CreateUser(models.User{
		FirstName:    "John",
		LastName:     "Doe",
		Username:     "johndoe",
		Email:        "john@example.com",
		PasswordHash: opts.DemoPasswordHash,
		DateOfBirth:  time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		PlaceOfBirth: "New York",
		Residence:    "Los Angeles",
		Nationality:  "USA",
		Status:       models.UserStatusApproved,
		Role:         models.RoleUser,
		Balance:      1000,
		CustomFee:    &models.CustomFee{Type: models.FeePercentage, Value: 2.5},
		Limits: &models.Limits{
			Withdrawal: models.Range{Min: float(100), Max: float(5000)},
			Send:       models.Range{Min: float(10), Max: float(1000)},
		},
		AssignedBanks: []int{1},
	})
	if err != nil {
		return err
	}

	jane, err := s.CreateRegistration(models.UserRegistration{
		FirstName:    "Jane",
		LastName:     "Smith",
		Username:     "janesmith",
		Email:        "jane@example.com",
		PasswordHash: opts.DemoPasswordHash,
		DateOfBirth:  time.Date(1992, time.June, 15, 0, 0, 0, 0, time.UTC),
		PlaceOfBirth: "Chicago",
		Residence:    "Miami",
		Nationality:  "USA",
		IDCard:       "id-card.jpg",
		PhoneNumber:  "+1234567890",
		Address:      "123 Main St",
	})
	if err != nil {
		return err
	}

	if _, err := s.CreateUser(models.User{
		FirstName:     "John",
		LastName:      "Carter",
		Username:      "admin",
		Email:         opts.AdminEmail,
		PasswordHash:  opts.AdminPasswordHash,
		PhoneNumber:   "+1 (555) 123-4567",
		Residence:     "New York, USA",
		Status:        models.UserStatusApproved,
		Role:          models.RoleAdmin,
		AssignedBanks: []int{},
		CreatedAt:     time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		return err
	}

	seeded := []models.Request{
		{Kind: models.KindDeposit, UserID: john.ID, UserName: john.FullName(), FullName: john.FullName(), Amount: 500, Date: "2024-03-20"},
		{Kind: models.KindWithdrawal, UserID: john.ID, UserName: john.FullName(), Amount: 1000, Date: "2024-03-20"},
		{Kind: models.KindSend, UserID: john.ID, UserName: john.FullName(), RecipientID: jane.ID, RecipientName: jane.FullName(), Amount: 300, Date: "2024-03-20"},
	}
	for _, r := range seeded {
		if _, err := s.CreateRequest(r); err != nil {
			return err
		}
	}
	return nil
}
