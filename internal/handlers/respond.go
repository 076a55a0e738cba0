package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/cashora/backend/internal/logging"
	mW "github.com/cashora/backend/internal/middleware"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// writeServiceError maps domain errors onto HTTP statuses. Anything it
// does not recognise is logged and reported as a 500 without detail.
func writeServiceError(w http.ResponseWriter, log *logging.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrDuplicateUser):
		status = http.StatusConflict
	case errors.Is(err, models.ErrReasonRequired),
		errors.Is(err, models.ErrReferenceRequired),
		errors.Is(err, models.ErrAmountOutOfRange),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrBankNameRequired),
		errors.Is(err, models.ErrUnknownBank),
		errors.Is(err, models.ErrSelfTransfer),
		errors.Is(err, models.ErrInvalidSettings),
		errors.Is(err, models.ErrEmptyMessage),
		errors.Is(err, models.ErrMessageTooLong),
		errors.Is(err, models.ErrInvalidDocument),
		errors.Is(err, models.ErrFullNameRequired),
		errors.Is(err, services.ErrInvalidDateOfBirth):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrTokenRevoked):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrUserNotActive),
		errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		status = http.StatusRequestTimeout
	}

	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		services.SendErrorResponse(w, "Internal server error", status, nil)
		return
	}
	services.SendErrorResponse(w, err.Error(), status, nil)
}

// pathID reads the {id} route parameter, answering 400 itself when it is
// not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		services.SendErrorResponse(w, "Invalid id", http.StatusBadRequest, nil)
		return 0, false
	}
	return id, true
}

// actor returns the authenticated caller, answering 401 when there is none.
func actor(w http.ResponseWriter, r *http.Request) (*services.Claims, bool) {
	claims, ok := mW.ClaimsFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return nil, false
	}
	return claims, true
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// decodeOptional accepts an empty body; otherwise it behaves like
// DecodeAndValidate. present reports whether a body was sent.
func decodeOptional(vh *services.ValidationHelper, w http.ResponseWriter, r *http.Request, dst any) (present, ok bool) {
	if err := services.DecodeJSON(w, r, dst); err != nil {
		if errors.Is(err, io.EOF) {
			return false, true
		}
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false, false
	}
	if err := vh.ValidateStruct(dst); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return true, false
	}
	return true, true
}

func parseOptionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
