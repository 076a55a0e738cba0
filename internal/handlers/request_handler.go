package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cashora/backend/internal/documents"
	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/services"
	"go.uber.org/zap"
)

// RequestHandler serves deposits, withdrawals and sends. Admin routes are
// built per kind so one set of methods covers all three review pages.
type RequestHandler struct {
	service   *services.RequestService
	docs      *documents.Store
	validator *services.ValidationHelper
	log       *logging.Logger
}

func NewRequestHandler(service *services.RequestService, docs *documents.Store) *RequestHandler {
	return &RequestHandler{
		service:   service,
		docs:      docs,
		validator: services.NewValidationHelper(),
		log:       logging.L().Named("request_handler"),
	}
}

// CreateDeposit files a deposit
// @Summary Create deposit
// @Description Accepts JSON, or multipart/form-data with fullName, amount and a receipt file
// @Tags Portal
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body services.DepositRequest true "Deposit"
// @Success 201 {object} models.Request
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /portal/deposits [post]
func (h *RequestHandler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}

	var req services.DepositRequest
	receipt := ""

	if isMultipart(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
		if err := r.ParseMultipartForm(maxUploadBody); err != nil {
			services.SendErrorResponse(w, "Invalid multipart form", http.StatusBadRequest, nil)
			return
		}
		amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
		if err != nil {
			services.SendErrorResponse(w, models.ErrInvalidAmount.Error(), http.StatusBadRequest, nil)
			return
		}
		req = services.DepositRequest{FullName: r.FormValue("fullName"), Amount: amount}
		if err := h.validator.ValidateStruct(&req); err != nil {
			services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
			return
		}

		_, fh, err := r.FormFile("receipt")
		switch {
		case err == nil:
			doc, err := h.docs.SaveUpload(fh)
			if err != nil {
				writeServiceError(w, h.log, err)
				return
			}
			receipt = doc.Name
		case !errors.Is(err, http.ErrMissingFile):
			services.SendErrorResponse(w, "Invalid receipt upload", http.StatusBadRequest, nil)
			return
		}
	} else if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.service.CreateDeposit(r.Context(), claims.UserID, req, receipt)
	if err != nil {
		if receipt != "" {
			h.docs.Remove(receipt)
		}
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, created)
}

// CreateWithdrawal files a withdrawal
// @Summary Create withdrawal
// @Tags Portal
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.WithdrawalRequest true "Withdrawal"
// @Success 201 {object} models.Request
// @Failure 400 {object} services.ErrorResponse
// @Router /portal/withdrawals [post]
func (h *RequestHandler) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}

	var req services.WithdrawalRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.service.CreateWithdrawal(r.Context(), claims.UserID, req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, created)
}

// CreateSend files a transfer to another user
// @Summary Send money
// @Tags Portal
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.SendRequest true "Transfer"
// @Success 201 {object} models.Request
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /portal/sends [post]
func (h *RequestHandler) CreateSend(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}

	var req services.SendRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.service.CreateSend(r.Context(), claims.UserID, req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, created)
}

// ListMine returns the caller's requests, sent and received
// @Summary My requests
// @Tags Portal
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Request
// @Router /portal/requests [get]
func (h *RequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}

	out := h.service.ListForUser(claims.UserID)
	if out == nil {
		out = []models.Request{}
	}
	services.SendJSON(w, http.StatusOK, out)
}

// List returns requests of one kind
// @Summary List requests
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param kind path string true "deposits, withdrawals or sends"
// @Param status query string false "pending, approved or rejected"
// @Param search query string false "Matches user, recipient, amount or date"
// @Success 200 {array} models.Request
// @Router /admin/{kind} [get]
func (h *RequestHandler) List(kind models.RequestKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		out := h.service.List(kind, services.RequestFilter{
			Status: models.RequestStatus(q.Get("status")),
			Search: q.Get("search"),
		})
		if out == nil {
			out = []models.Request{}
		}
		services.SendJSON(w, http.StatusOK, out)
	}
}

// Get returns one request
// @Summary Get request
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param kind path string true "deposits, withdrawals or sends"
// @Param id path int true "Request ID"
// @Success 200 {object} models.Request
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/{kind}/{id} [get]
func (h *RequestHandler) Get(kind models.RequestKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		req, err := h.service.Get(kind, id)
		if err != nil {
			writeServiceError(w, h.log, err)
			return
		}
		services.SendJSON(w, http.StatusOK, req)
	}
}

// Approve decides a pending request
// @Summary Approve request
// @Description Withdrawals require the payout's bank transaction details; other kinds take no body
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "deposits, withdrawals or sends"
// @Param id path int true "Request ID"
// @Param request body models.BankTransactionDetails false "Bank transaction details"
// @Success 200 {object} models.Request
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /admin/{kind}/{id}/approve [post]
func (h *RequestHandler) Approve(kind models.RequestKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := actor(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var details *models.BankTransactionDetails
		if kind == models.KindWithdrawal {
			var body models.BankTransactionDetails
			present, ok := decodeOptional(h.validator, w, r, &body)
			if !ok {
				return
			}
			if present {
				details = &body
			}
		}

		decided, err := h.service.Approve(r.Context(), claims.UserID, kind, id, details)
		if err != nil {
			writeServiceError(w, h.log, err)
			return
		}
		h.log.Info("approved", zap.String("kind", string(kind)), zap.Int("request_id", id))
		services.SendJSON(w, http.StatusOK, decided)
	}
}

// Reject decides a pending request
// @Summary Reject request
// @Description A reason is required for deposits and withdrawals
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "deposits, withdrawals or sends"
// @Param id path int true "Request ID"
// @Param request body services.RejectRequest false "Rejection reason"
// @Success 200 {object} models.Request
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /admin/{kind}/{id}/reject [post]
func (h *RequestHandler) Reject(kind models.RequestKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := actor(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req services.RejectRequest
		if _, ok := decodeOptional(h.validator, w, r, &req); !ok {
			return
		}

		decided, err := h.service.Reject(r.Context(), claims.UserID, kind, id, req.Reason)
		if err != nil {
			writeServiceError(w, h.log, err)
			return
		}
		services.SendJSON(w, http.StatusOK, decided)
	}
}
