package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type withdrawalForm struct {
	FullName string  `json:"fullName" validate:"required,min=2"`
	Email    string  `json:"email" validate:"required,email"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid struct", func(t *testing.T) {
		err := vh.ValidateStruct(&withdrawalForm{FullName: "John Doe", Email: "john@example.com", Amount: 25})
		assert.NoError(t, err)
	})

	t.Run("field errors use json names", func(t *testing.T) {
		err := vh.ValidateStruct(&withdrawalForm{FullName: "J", Email: "invalid-email"})
		require.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		require.True(t, ok)
		assert.Len(t, validationErrors, 3)
		assert.Equal(t, "fullName", validationErrors[0].Field())
		assert.Equal(t, "email", validationErrors[1].Tag())
	})
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("without validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Something went wrong", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Something went wrong", response.Error)
		assert.Nil(t, response.Details)
	})

	t.Run("with validation errors", func(t *testing.T) {
		validationErr := NewValidationHelper().ValidateStruct(&withdrawalForm{FullName: "J", Email: "x", Amount: -1})

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, validationErr)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Contains(t, response.Details, "fullName")
		assert.Contains(t, response.Details, "email")
		assert.Equal(t, "Field Validation Failed on 'gt' tag", response.Details["amount"])
	})

	t.Run("non-validator error carries no details", func(t *testing.T) {
		w := httptest.NewRecorder()
		SendErrorResponse(w, "Conflict", http.StatusConflict, assert.AnError)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Nil(t, response.Details)
	})
}

func TestDecodeAndValidate(t *testing.T) {
	vh := NewValidationHelper()

	cases := []struct {
		name    string
		body    string
		ok      bool
		message string
	}{
		{"valid", `{"fullName":"John Doe","email":"john@example.com","amount":10}`, true, ""},
		{"unknown field", `{"fullName":"John Doe","email":"john@example.com","amount":10,"admin":true}`, false, "Invalid request body"},
		{"two objects", `{"fullName":"John Doe","email":"john@example.com","amount":10}{}`, false, "Request body must only contain a single JSON object"},
		{"fails validation", `{"fullName":"John Doe","email":"john@example.com","amount":0}`, false, "Validation failed"},
		{"malformed", `{"fullName":`, false, "Invalid request body"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			w := httptest.NewRecorder()

			var form withdrawalForm
			ok := vh.DecodeAndValidate(w, r, &form)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, 10.0, form.Amount)
				return
			}

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tc.message, response.Error)
		})
	}
}
