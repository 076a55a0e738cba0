package handlers

import (
	"net/http"

	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/services"
)

// PortalHandler serves the user dashboard and the support chat.
type PortalHandler struct {
	dashboard *services.DashboardService
	support   *services.SupportService
	validator *services.ValidationHelper
	log       *logging.Logger
}

func NewPortalHandler(dashboard *services.DashboardService, support *services.SupportService) *PortalHandler {
	return &PortalHandler{
		dashboard: dashboard,
		support:   support,
		validator: services.NewValidationHelper(),
		log:       logging.L().Named("portal_handler"),
	}
}

// Dashboard returns the caller's balance and recent activity
// @Summary User dashboard
// @Tags Portal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.UserDashboard
// @Router /portal/dashboard [get]
func (h *PortalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}

	d, err := h.dashboard.User(claims.UserID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if d.Recent == nil {
		d.Recent = []models.Request{}
	}
	services.SendJSON(w, http.StatusOK, d)
}

// SupportHistory returns the support conversation
// @Summary Support history
// @Tags Support
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ChatMessage
// @Router /portal/support/messages [get]
func (h *PortalHandler) SupportHistory(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}

	history, err := h.support.History(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusOK, history)
}

// SupportSend asks the support bot a question
// @Summary Send support message
// @Description The reply arrives after the configured delay
// @Tags Support
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.SendMessageRequest true "Message"
// @Success 200 {object} services.SupportExchange
// @Failure 400 {object} services.ErrorResponse
// @Router /portal/support/messages [post]
func (h *PortalHandler) SupportSend(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}

	var req services.SendMessageRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	exchange, err := h.support.Send(r.Context(), claims.UserID, req.Text)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusOK, exchange)
}

// SupportReset clears the conversation
// @Summary Reset support chat
// @Tags Support
// @Security BearerAuth
// @Success 204
// @Router /portal/support/messages [delete]
func (h *PortalHandler) SupportReset(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}

	if err := h.support.Reset(r.Context(), claims.UserID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
