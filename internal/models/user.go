package models

import (
	"strings"
	"time"
)

type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
	UserStatusRejected UserStatus = "rejected"
	UserStatusDeleted  UserStatus = "deleted"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type FeeType string

const (
	FeePercentage FeeType = "percentage"
	FeeFixed      FeeType = "fixed"
)

// CustomFee overrides the system default fee for a single user
type CustomFee struct {
	Type  FeeType `json:"type" validate:"required,oneof=percentage fixed" example:"percentage"`
	Value float64 `json:"value" validate:"gte=0" example:"2.5"`
}

// Amount returns the fee owed on amount.
func (f CustomFee) Amount(amount float64) float64 {
	if f.Type == FeePercentage {
		return amount * f.Value / 100
	}
	return f.Value
}

// Range is an optional min/max pair; nil bounds fall back to system settings.
type Range struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type Limits struct {
	Withdrawal Range `json:"withdrawal"`
	Send       Range `json:"send"`
}

// User is an approved (or formerly approved) portal account
type User struct {
	ID            int        `json:"id" example:"1"`
	FirstName     string     `json:"firstName" example:"John"`
	LastName      string     `json:"lastName" example:"Doe"`
	Username      string     `json:"username" example:"johndoe"`
	Email         string     `json:"email" example:"john@example.com"`
	PasswordHash  string     `json:"-"`
	PhoneNumber   string     `json:"phoneNumber,omitempty"`
	Address       string     `json:"address,omitempty"`
	DateOfBirth   time.Time  `json:"dateOfBirth"`
	PlaceOfBirth  string     `json:"placeOfBirth"`
	Residence     string     `json:"residence"`
	Nationality   string     `json:"nationality"`
	Status        UserStatus `json:"status" example:"approved"`
	Role          Role       `json:"role" example:"user"`
	Balance       float64    `json:"balance" example:"1000"`
	CustomFee     *CustomFee `json:"customFee,omitempty"`
	Limits        *Limits    `json:"limits,omitempty"`
	AssignedBanks []int      `json:"assignedBanks"`
	IDDocument    string     `json:"idDocument,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusApproved
}

// Clone returns a deep copy so callers never share slices or pointers
// with the store.
func (u User) Clone() User {
	c := u
	c.AssignedBanks = append([]int{}, u.AssignedBanks...)
	if u.CustomFee != nil {
		fee := *u.CustomFee
		c.CustomFee = &fee
	}
	if u.Limits != nil {
		limits := Limits{
			Withdrawal: u.Limits.Withdrawal.clone(),
			Send:       u.Limits.Send.clone(),
		}
		c.Limits = &limits
	}
	return c
}

func (r Range) clone() Range {
	var c Range
	if r.Min != nil {
		v := *r.Min
		c.Min = &v
	}
	if r.Max != nil {
		v := *r.Max
		c.Max = &v
	}
	return c
}

// HasBank reports whether bankID is assigned to the user.
func (u *User) HasBank(bankID int) bool {
	for _, id := range u.AssignedBanks {
		if id == bankID {
			return true
		}
	}
	return false
}

// UserRegistration is a sign-up waiting for KYC approval
type UserRegistration struct {
	ID           int       `json:"id" example:"2"`
	FirstName    string    `json:"firstName" example:"Jane"`
	LastName     string    `json:"lastName" example:"Smith"`
	Username     string    `json:"username" example:"janesmith"`
	Email        string    `json:"email" example:"jane@example.com"`
	PasswordHash string    `json:"-"`
	DateOfBirth  time.Time `json:"dateOfBirth"`
	PlaceOfBirth string    `json:"placeOfBirth"`
	Residence    string    `json:"residence"`
	Nationality  string    `json:"nationality"`
	IDCard       string    `json:"idCard,omitempty" example:"id-card.jpg"`
	PhoneNumber  string    `json:"phoneNumber" example:"+1234567890"`
	Address      string    `json:"address" example:"123 Main St"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r *UserRegistration) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// ToUser promotes the registration; the new user keeps the registration ID.
func (r *UserRegistration) ToUser(now time.Time) User {
	return User{
		ID:            r.ID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Username:      r.Username,
		Email:         r.Email,
		PasswordHash:  r.PasswordHash,
		PhoneNumber:   r.PhoneNumber,
		Address:       r.Address,
		DateOfBirth:   r.DateOfBirth,
		PlaceOfBirth:  r.PlaceOfBirth,
		Residence:     r.Residence,
		Nationality:   r.Nationality,
		Status:        UserStatusApproved,
		Role:          RoleUser,
		Balance:       0,
		AssignedBanks: []int{},
		IDDocument:    r.IDCard,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
