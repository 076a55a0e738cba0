package handlers

import (
	"errors"
	"net/http"

	"github.com/cashora/backend/internal/documents"
	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/services"
	"go.uber.org/zap"
)

const maxUploadBody = documents.MaxDocumentSize + 1<<20

type AuthHandler struct {
	service   *services.AuthService
	docs      *documents.Store
	validator *services.ValidationHelper
	log       *logging.Logger
}

func NewAuthHandler(service *services.AuthService, docs *documents.Store) *AuthHandler {
	return &AuthHandler{
		service:   service,
		docs:      docs,
		validator: services.NewValidationHelper(),
		log:       logging.L().Named("auth_handler"),
	}
}

// SignUp files a registration for KYC review
// @Summary Sign up
// @Description Create a pending registration. Accepts JSON, or multipart/form-data with the same fields plus an idCard file.
// @Tags Auth
// @Accept json,mpfd
// @Produce json
// @Param request body services.SignUpRequest true "Sign-up details"
// @Success 201 {object} models.UserRegistration
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req services.SignUpRequest
	idCard := ""

	if isMultipart(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
		if err := r.ParseMultipartForm(maxUploadBody); err != nil {
			services.SendErrorResponse(w, "Invalid multipart form", http.StatusBadRequest, nil)
			return
		}
		req = services.SignUpRequest{
			FirstName:    r.FormValue("firstName"),
			LastName:     r.FormValue("lastName"),
			Username:     r.FormValue("username"),
			Email:        r.FormValue("email"),
			Password:     r.FormValue("password"),
			PhoneNumber:  r.FormValue("phoneNumber"),
			Address:      r.FormValue("address"),
			DateOfBirth:  r.FormValue("dateOfBirth"),
			PlaceOfBirth: r.FormValue("placeOfBirth"),
			Residence:    r.FormValue("residence"),
			Nationality:  r.FormValue("nationality"),
		}
		if err := h.validator.ValidateStruct(&req); err != nil {
			services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
			return
		}

		_, fh, err := r.FormFile("idCard")
		switch {
		case err == nil:
			doc, err := h.docs.SaveUpload(fh)
			if err != nil {
				writeServiceError(w, h.log, err)
				return
			}
			idCard = doc.Name
		case !errors.Is(err, http.ErrMissingFile):
			services.SendErrorResponse(w, "Invalid idCard upload", http.StatusBadRequest, nil)
			return
		}
	} else if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	reg, err := h.service.SignUp(r.Context(), req, idCard)
	if err != nil {
		if idCard != "" {
			h.docs.Remove(idCard)
		}
		writeServiceError(w, h.log, err)
		return
	}

	h.log.Info("sign-up accepted", zap.Int("registration_id", reg.ID))
	services.SendJSON(w, http.StatusCreated, reg)
}

// SignIn authenticates a portal user
// @Summary Sign in
// @Description Authenticate a portal user by email or username
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body services.SignInRequest true "Credentials"
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req services.SignInRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusOK, resp)
}

// AdminSignIn authenticates an administrator
// @Summary Admin sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body services.AdminSignInRequest true "Credentials"
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /admin/signin [post]
func (h *AuthHandler) AdminSignIn(w http.ResponseWriter, r *http.Request) {
	var req services.AdminSignInRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.AdminSignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusOK, resp)
}

// Logout revokes the caller's token
// @Summary Logout
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}

	if err := h.service.Logout(r.Context(), claims); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Profile returns the signed-in account
// @Summary Profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} services.ErrorResponse
// @Router /portal/profile [get]
// @Router /admin/profile [get]
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}

	u, err := h.service.Profile(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	services.SendJSON(w, http.StatusOK, u)
}
