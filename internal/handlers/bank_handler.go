package handlers

import (
	"net/http"

	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/services"
)

type BankHandler struct {
	service   *services.BankService
	validator *services.ValidationHelper
	log       *logging.Logger
}

func NewBankHandler(service *services.BankService) *BankHandler {
	return &BankHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		log:       logging.L().Named("bank_handler"),
	}
}

// List returns every bank with its assigned-user count
// @Summary List banks
// @Tags Banks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Bank
// @Router /admin/banks [get]
func (h *BankHandler) List(w http.ResponseWriter, r *http.Request) {
	services.SendJSON(w, http.StatusOK, h.service.List())
}

// Add creates a bank
// @Summary Add bank
// @Tags Banks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.AddBankRequest true "Bank"
// @Success 201 {object} models.Bank
// @Failure 400 {object} services.ErrorResponse
// @Router /admin/banks [post]
func (h *BankHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}

	var req services.AddBankRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	b, err := h.service.Add(r.Context(), claims.UserID, req.Name)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusCreated, b)
}

// Delete removes a bank and unassigns it from all users
// @Summary Delete bank
// @Tags Banks
// @Security BearerAuth
// @Param id path int true "Bank ID"
// @Success 204
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/banks/{id} [delete]
func (h *BankHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), claims.UserID, id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
