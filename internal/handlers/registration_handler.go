package handlers

import (
	"net/http"

	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/services"
)

type RegistrationHandler struct {
	service   *services.RegistrationService
	validator *services.ValidationHelper
	log       *logging.Logger
}

func NewRegistrationHandler(service *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		log:       logging.L().Named("registration_handler"),
	}
}

// List returns registrations awaiting review
// @Summary Pending registrations
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserRegistration
// @Router /admin/registrations [get]
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	services.SendJSON(w, http.StatusOK, h.service.ListPending())
}

// Get returns one registration
// @Summary Get registration
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Success 200 {object} models.UserRegistration
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/registrations/{id} [get]
func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	reg, err := h.service.Get(id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusOK, reg)
}

// Approve promotes a registration to an active user
// @Summary Approve registration
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Success 200 {object} models.User
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/registrations/{id}/approve [post]
func (h *RegistrationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	u, err := h.service.Approve(r.Context(), claims.UserID, id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusOK, u)
}

// Reject discards a registration
// @Summary Reject registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Param request body services.RejectRequest true "Rejection reason"
// @Success 200 {object} models.UserRegistration
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/registrations/{id}/reject [post]
func (h *RegistrationHandler) Reject(w http.ResponseWriter, r *http.Request) {
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

	reg, err := h.service.Reject(r.Context(), claims.UserID, id, req.Reason)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusOK, reg)
}
