package handlers

import (
	"net/http"

	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/services"
)

type UserHandler struct {
	service   *services.UserService
	validator *services.ValidationHelper
	log       *logging.Logger
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		log:       logging.L().Named("user_handler"),
	}
}

// List returns portal users
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param search query string false "Matches name, username or email"
// @Param status query string false "approved, rejected or deleted"
// @Success 200 {array} models.User
// @Router /admin/users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users := h.service.List(services.UserFilter{
		Search: q.Get("search"),
		Status: models.UserStatus(q.Get("status")),
	})
	if users == nil {
		users = []models.User{}
	}
	services.SendJSON(w, http.StatusOK, users)
}

// Get returns one user
// @Summary Get user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	u, err := h.service.Get(id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusOK, u)
}

// Update manages balance, custom fee, limits and bank assignments
// @Summary Manage user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body services.UserPatch true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch services.UserPatch
	if !h.validator.DecodeAndValidate(w, r, &patch) {
		return
	}

	u, err := h.service.Update(r.Context(), claims.UserID, id, patch)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusOK, u)
}

// Delete soft-deletes a user
// @Summary Delete user
// @Tags Users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
