package models

import (
	"fmt"
	"strings"
	"time"
)

type RequestKind string

const (
	KindDeposit    RequestKind = "deposit"
	KindWithdrawal RequestKind = "withdrawal"
	KindSend       RequestKind = "send"
)

// ParseRequestKind accepts the singular or plural route form.
func ParseRequestKind(s string) (RequestKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit", "deposits":
		return KindDeposit, nil
	case "withdrawal", "withdrawals":
		return KindWithdrawal, nil
	case "send", "sends":
		return KindSend, nil
	}
	return "", fmt.Errorf("unknown request kind %q", s)
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// DateLayout is the calendar format used for request dates and filters.
const DateLayout = "2006-01-02"

// BankTransactionDetails records the payout made for an approved withdrawal
type BankTransactionDetails struct {
	Reference       string `json:"reference" validate:"required" example:"TRX-20240320-001"`
	BankName        string `json:"bankName" example:"Bank A"`
	AccountNumber   string `json:"accountNumber" example:"0123456789"`
	TransactionDate string `json:"transactionDate" example:"2024-03-20"`
	Notes           string `json:"notes"`
}

// Request is a deposit, withdrawal or send awaiting an admin decision
type Request struct {
	ID            int                     `json:"id" example:"1"`
	Kind          RequestKind             `json:"kind" example:"deposit"`
	UserID        int                     `json:"userId" example:"1"`
	UserName      string                  `json:"user" example:"John Doe"`
	RecipientID   int                     `json:"recipientId,omitempty"`
	RecipientName string                  `json:"recipient,omitempty" example:"Jane Smith"`
	Amount        float64                 `json:"amount" example:"500"`
	Fee           float64                 `json:"fee"`
	Date          string                  `json:"date" example:"2024-03-20"`
	Status        RequestStatus           `json:"status" example:"pending"`
	FullName      string                  `json:"fullName,omitempty"`
	Document      string                  `json:"document,omitempty"`
	BankDetails   *BankTransactionDetails `json:"bankDetails,omitempty"`
	RejectReason  string                  `json:"rejectReason,omitempty"`
	DecidedBy     int                     `json:"decidedBy,omitempty"`
	CreatedAt     time.Time               `json:"createdAt"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

// Transition moves a pending request to approved or rejected. Every other
// move is refused, so a request can be decided exactly once.
func (r *Request) Transition(to RequestStatus, at time.Time) error {
	if r.Status != RequestStatusPending {
		return fmt.Errorf("%w: request %d is already %s", ErrInvalidTransition, r.ID, r.Status)
	}
	if to != RequestStatusApproved && to != RequestStatusRejected {
		return fmt.Errorf("%w: cannot move request %d to %s", ErrInvalidTransition, r.ID, to)
	}
	r.Status = to
	r.UpdatedAt = at
	return nil
}

// Clone returns a copy that does not share BankDetails with r.
func (r Request) Clone() Request {
	c := r
	if r.BankDetails != nil {
		details := *r.BankDetails
		c.BankDetails = &details
	}
	return c
}
