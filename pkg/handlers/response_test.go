package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kinworks/kin-engine/pkg/apperrors"
)

func TestServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{"wrapped not found", fmt.Errorf("context: %w", apperrors.ErrNotFound), http.StatusNotFound, "not_found"},
		{"validation", fmt.Errorf("%w: bad input", apperrors.ErrValidation), http.StatusBadRequest, "validation_failed"},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := ServiceError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestWriteJSONSetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	err := WriteJSON(rec, http.StatusOK, map[string]string{"hello": "world"})

	assert.NoError(t, err)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}

func TestErrorResponseBody(t *testing.T) {
	rec := httptest.NewRecorder()
	err := ErrorResponse(rec, http.StatusBadRequest, "invalid_id", "Invalid person ID format")

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid_id","message":"Invalid person ID format"}`, rec.Body.String())
}
