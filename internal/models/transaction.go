package models

import "time"

type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionPending   TransactionStatus = "pending"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction is the admin ledger view of a request
type Transaction struct {
	ID        int               `json:"id" example:"1"`
	Type      RequestKind       `json:"type" example:"deposit"`
	User      string            `json:"user" example:"John Doe"`
	Recipient string            `json:"recipient,omitempty" example:"Bob Wilson"`
	Amount    float64           `json:"amount" example:"500"`
	Date      string            `json:"date" example:"2024-03-20"`
	Status    TransactionStatus `json:"status" example:"completed"`
}

// TransactionFromRequest maps request status onto the ledger vocabulary.
func TransactionFromRequest(r Request) Transaction {
	status := TransactionPending
	switch r.Status {
	case RequestStatusApproved:
		status = TransactionCompleted
	case RequestStatusRejected:
		status = TransactionFailed
	}
	return Transaction{
		ID:        r.ID,
		Type:      r.Kind,
		User:      r.UserName,
		Recipient: r.RecipientName,
		Amount:    r.Amount,
		Date:      r.Date,
		Status:    status,
	}
}

// TransactionFilter narrows the ledger; zero values match everything.
// Date bounds are inclusive YYYY-MM-DD strings.
type TransactionFilter struct {
	Type      RequestKind
	DateFrom  string
	DateTo    string
	MinAmount *float64
	MaxAmount *float64
}

func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	// YYYY-MM-DD sorts lexically in date order.
	if f.DateFrom != "" && t.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && t.Date > f.DateTo {
		return false
	}
	if f.MinAmount != nil && t.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && t.Amount > *f.MaxAmount {
		return false
	}
	return true
}

// TransactionSummary aggregates the ledger per type
type TransactionSummary struct {
	Type  RequestKind `json:"type"`
	Count int         `json:"count"`
	Total float64     `json:"total"`
}

// Document is an uploaded supporting file (receipt or ID card)
type Document struct {
	Name        string    `json:"name"`
	Original    string    `json:"original"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}
