package handlers

import (
	"net/http"
	"time"

	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/services"
)

// AdminHandler serves the read-mostly admin pages: dashboard, ledger,
// settings and email management.
type AdminHandler struct {
	dashboard    *services.DashboardService
	transactions *services.TransactionService
	settings     *services.SettingsService
	emails       *services.EmailService
	validator    *services.ValidationHelper
	log          *logging.Logger
}

func NewAdminHandler(
	dashboard *services.DashboardService,
	transactions *services.TransactionService,
	settings *services.SettingsService,
	emails *services.EmailService,
) *AdminHandler {
	return &AdminHandler{
		dashboard:    dashboard,
		transactions: transactions,
		settings:     settings,
		emails:       emails,
		validator:    services.NewValidationHelper(),
		log:          logging.L().Named("admin_handler"),
	}
}

// Dashboard returns the admin summary
// @Summary Admin dashboard
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param type query string false "Recent transactions type: all, deposit, withdrawal or send"
// @Param search query string false "Recent transactions search"
// @Success 200 {object} services.AdminDashboard
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d := h.dashboard.Admin()

	q := r.URL.Query()
	if q.Get("type") != "" || q.Get("search") != "" {
		d.Recent = h.dashboard.Recent(q.Get("type"), q.Get("search"))
	}
	if d.Recent == nil {
		d.Recent = []models.Transaction{}
	}
	services.SendJSON(w, http.StatusOK, d)
}

// Transactions returns the ledger newest first
// @Summary List transactions
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param type query string false "deposit, withdrawal or send"
// @Param from query string false "Inclusive start date (YYYY-MM-DD)"
// @Param to query string false "Inclusive end date (YYYY-MM-DD)"
// @Param min query number false "Minimum amount"
// @Param max query number false "Maximum amount"
// @Success 200 {array} models.Transaction
// @Failure 400 {object} services.ErrorResponse
// @Router /admin/transactions [get]
func (h *AdminHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilter(r)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	out := h.transactions.List(filter)
	if out == nil {
		out = []models.Transaction{}
	}
	services.SendJSON(w, http.StatusOK, out)
}

func transactionFilter(r *http.Request) (models.TransactionFilter, error) {
	q := r.URL.Query()
	var f models.TransactionFilter

	if t := q.Get("type"); t != "" && t != "all" {
		kind, err := models.ParseRequestKind(t)
		if err != nil {
			return f, err
		}
		f.Type = kind
	}
	for _, d := range []struct {
		raw string
		dst *string
	}{{q.Get("from"), &f.DateFrom}, {q.Get("to"), &f.DateTo}} {
		if d.raw == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, d.raw); err != nil {
			return f, errInvalidQuery("date must be YYYY-MM-DD")
		}
		*d.dst = d.raw
	}

	var err error
	if f.MinAmount, err = parseOptionalFloat(q.Get("min")); err != nil {
		return f, errInvalidQuery("min must be a number")
	}
	if f.MaxAmount, err = parseOptionalFloat(q.Get("max")); err != nil {
		return f, errInvalidQuery("max must be a number")
	}
	return f, nil
}

type errInvalidQuery string

func (e errInvalidQuery) Error() string { return string(e) }

// TransactionSummary reports count and total per kind
// @Summary Transaction summary
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.TransactionSummary
// @Router /admin/transactions/summary [get]
func (h *AdminHandler) TransactionSummary(w http.ResponseWriter, r *http.Request) {
	services.SendJSON(w, http.StatusOK, h.transactions.Summary())
}

// GetSettings returns the system settings
// @Summary Get settings
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SystemSettings
// @Router /admin/settings [get]
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	services.SendJSON(w, http.StatusOK, h.settings.Get())
}

// UpdateSettings changes fee and limits
// @Summary Update settings
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SettingsPatch true "Fields to change"
// @Success 200 {object} models.SystemSettings
// @Failure 400 {object} services.ErrorResponse
// @Router /admin/settings [put]
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}

	var patch models.SettingsPatch
	if !h.validator.DecodeAndValidate(w, r, &patch) {
		return
	}

	updated, err := h.settings.Update(r.Context(), claims.UserID, patch)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusOK, updated)
}

// SendEmail mails all approved users or a selection
// @Summary Send email
// @Tags Emails
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.EmailRequest true "Email"
// @Success 200 {object} services.EmailResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/emails [post]
func (h *AdminHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}

	var req services.EmailRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.emails.Send(r.Context(), claims.UserID, req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusOK, res)
}
