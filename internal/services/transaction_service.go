package services

import (
	"sort"

	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/store"
)

// TransactionService is the admin ledger: every request, whatever its kind,
// flattened into one history.
type TransactionService struct {
	store *store.MemoryStore
}

func NewTransactionService(st *store.MemoryStore) *TransactionService {
	return &TransactionService{store: st}
}

// List returns matching transactions newest first.
func (ts *TransactionService) List(filter models.TransactionFilter) []models.Transaction {
	var out []models.Transaction
	for _, r := range ts.store.ListRequests("") {
		tx := models.TransactionFromRequest(r)
		if filter.Matches(tx) {
			out = append(out, tx)
		}
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date != txs[j].Date {
			return txs[i].Date > txs[j].Date
		}
		return txs[i].ID > txs[j].ID
	})
}

// Summary reports count and total per kind, always in deposit, withdrawal,
// send order.
func (ts *TransactionService) Summary() []models.TransactionSummary {
	summary := []models.TransactionSummary{
		{Type: models.KindDeposit},
		{Type: models.KindWithdrawal},
		{Type: models.KindSend},
	}
	index := map[models.RequestKind]int{
		models.KindDeposit:    0,
		models.KindWithdrawal: 1,
		models.KindSend:       2,
	}

	for _, r := range ts.store.ListRequests("") {
		i, ok := index[r.Kind]
		if !ok {
			continue
		}
		summary[i].Count++
		summary[i].Total += r.Amount
	}
	return summary
}
