package services

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/store"
)

const recentLimit = 10

// AdminDashboard is the admin landing page summary
// @Description Admin dashboard structure
type AdminDashboard struct {
	TotalUsers           int                  `json:"totalUsers" example:"1"`
	TotalDeposits        float64              `json:"totalDeposits" example:"0"`
	TotalWithdrawals     float64              `json:"totalWithdrawals" example:"0"`
	TotalSends           float64              `json:"totalSends" example:"0"`
	TransactionCount     int                  `json:"transactionCount" example:"3"`
	PendingDeposits      int                  `json:"pendingDeposits" example:"1"`
	PendingWithdrawals   int                  `json:"pendingWithdrawals" example:"1"`
	PendingSends         int                  `json:"pendingSends" example:"1"`
	PendingRegistrations int                  `json:"pendingRegistrations" example:"1"`
	Monthly              []MonthlyActivity    `json:"monthly"`
	Recent               []models.Transaction `json:"recent"`
}

// MonthlyActivity counts requests filed and users created per month
type MonthlyActivity struct {
	Month        string `json:"month" example:"2024-03"`
	Transactions int    `json:"transactions" example:"3"`
	Users        int    `json:"users" example:"1"`
}

// UserDashboard is the portal landing page summary
// @Description User dashboard structure
type UserDashboard struct {
	Balance          float64          `json:"balance" example:"1000"`
	TotalDeposits    float64          `json:"totalDeposits" example:"0"`
	TotalWithdrawals float64          `json:"totalWithdrawals" example:"0"`
	TransactionCount int              `json:"transactionCount" example:"3"`
	Recent           []models.Request `json:"recent"`
}

type DashboardService struct {
	store *store.MemoryStore
}

func NewDashboardService(st *store.MemoryStore) *DashboardService {
	return &DashboardService{store: st}
}

// Admin totals count approved amounts only; pending counts cover what still
// awaits a decision.
func (s *DashboardService) Admin() AdminDashboard {
	var d AdminDashboard
	months := map[string]*MonthlyActivity{}
	month := func(key string) *MonthlyActivity {
		m, ok := months[key]
		if !ok {
			m = &MonthlyActivity{Month: key}
			months[key] = m
		}
		return m
	}

	for _, u := range s.store.ListUsers() {
		if u.Role != models.RoleUser || u.Status == models.UserStatusDeleted {
			continue
		}
		d.TotalUsers++
		month(u.CreatedAt.Format("2006-01")).Users++
	}

	for _, r := range s.store.ListRequests("") {
		d.TransactionCount++
		if len(r.Date) >= 7 {
			month(r.Date[:7]).Transactions++
		}

		switch r.Status {
		case models.RequestStatusApproved:
			switch r.Kind {
			case models.KindDeposit:
				d.TotalDeposits += r.Amount
			case models.KindWithdrawal:
				d.TotalWithdrawals += r.Amount
			case models.KindSend:
				d.TotalSends += r.Amount
			}
		case models.RequestStatusPending:
			switch r.Kind {
			case models.KindDeposit:
				d.PendingDeposits++
			case models.KindWithdrawal:
				d.PendingWithdrawals++
			case models.KindSend:
				d.PendingSends++
			}
		}
	}
	d.PendingRegistrations = len(s.store.ListRegistrations())

	d.Monthly = make([]MonthlyActivity, 0, len(months))
	for _, m := range months {
		d.Monthly = append(d.Monthly, *m)
	}
	sort.Slice(d.Monthly, func(i, j int) bool { return d.Monthly[i].Month < d.Monthly[j].Month })

	d.Recent = s.Recent("all", "")
	return d
}

// Recent filters the latest transactions by type ("all" or a kind) and a
// search term matched against the user name, the amount and the date.
func (s *DashboardService) Recent(txType, search string) []models.Transaction {
	search = strings.ToLower(search)

	var out []models.Transaction
	for _, r := range s.store.ListRequests("") {
		tx := models.TransactionFromRequest(r)
		if txType != "" && txType != "all" && string(tx.Type) != txType {
			continue
		}
		if search != "" && !recentMatches(tx, search) {
			continue
		}
		out = append(out, tx)
	}

	sortNewestFirst(out)
	if len(out) > recentLimit {
		out = out[:recentLimit]
	}
	return out
}

func recentMatches(tx models.Transaction, search string) bool {
	return strings.Contains(strings.ToLower(tx.User), search) ||
		strings.Contains(strconv.FormatFloat(tx.Amount, 'f', -1, 64), search) ||
		strings.Contains(tx.Date, search)
}

func (s *DashboardService) User(userID int) (UserDashboard, error) {
	u, err := s.store.GetUser(userID)
	if err != nil {
		return UserDashboard{}, err
	}

	d := UserDashboard{Balance: u.Balance}
	for _, r := range s.store.ListRequests("") {
		if r.UserID != userID && r.RecipientID != userID {
			continue
		}
		d.TransactionCount++
		d.Recent = append(d.Recent, r)
		if r.Status != models.RequestStatusApproved || r.UserID != userID {
			continue
		}
		switch r.Kind {
		case models.KindDeposit:
			d.TotalDeposits += r.Amount
		case models.KindWithdrawal:
			d.TotalWithdrawals += r.Amount
		}
	}

	sort.SliceStable(d.Recent, func(i, j int) bool {
		if d.Recent[i].Date != d.Recent[j].Date {
			return d.Recent[i].Date > d.Recent[j].Date
		}
		return d.Recent[i].ID > d.Recent[j].ID
	})
	if len(d.Recent) > recentLimit {
		d.Recent = d.Recent[:recentLimit]
	}
	return d, nil
}
