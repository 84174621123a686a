package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// --- WriteJSON / WriteData ---

func TestWriteJSON_SetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, Response{Data: "hello"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestWriteData_WithoutWarnings_OmitsField(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, map[string]int{"count": 2})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "warnings")
	assert.NotContains(t, rec.Body.String(), `"error"`)
}

func TestWriteData_WithWarnings(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, map[string]int{"count": 2}, "cart was updated but could not be saved")

	resp := decode(t, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"cart was updated but could not be saved"}, resp.Warnings)
	assert.NotNil(t, resp.Data)
}

// --- WriteError ---

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/99", nil)

	WriteError(rec, req, apperrors.NotFound("product", "99"), testLogger())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "product with id 99 not found", resp.Error.Message)
}

func TestWriteError_UnavailableHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)

	err := apperrors.Unavailable("CATALOG_UNAVAILABLE", "catalog is unavailable", fmt.Errorf("dial tcp: refused"))
	WriteError(rec, req, err, testLogger())

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")
	assert.Equal(t, "CATALOG_UNAVAILABLE", decode(t, rec).Error.Code)
}

func TestWriteError_ValidationError(t *testing.T) {
	type body struct {
		Email string `json:"email" validate:"required,email"`
	}
	verr := validator.Validate(body{Email: "nope"})
	require.Error(t, verr)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	WriteError(rec, req, verr, testLogger())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "must be a valid email address", resp.Error.Fields["email"])
}

func TestWriteError_Sentinels(t *testing.T) {
	tests := []struct {
		err      error
		status   int
		wantCode string
	}{
		{fmt.Errorf("lookup: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("dup: %w", apperrors.ErrConflict), http.StatusConflict, "CONFLICT"},
		{fmt.Errorf("bad id: %w", apperrors.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{fmt.Errorf("redis: %w", apperrors.ErrServiceUnavail), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{fmt.Errorf("submit: %w", apperrors.ErrOrderRejected), http.StatusUnprocessableEntity, "ORDER_REJECTED"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			WriteError(rec, req, tt.err, testLogger())

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.wantCode, decode(t, rec).Error.Code)
		})
	}
}

func TestWriteError_UnknownError_DoesNotLeakMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	WriteError(rec, req, fmt.Errorf("pq: password authentication failed"), testLogger())

	assert.NotContains(t, rec.Body.String(), "password")
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(logger.WithCorrelationID(req.Context(), "corr-123"))

	WriteError(rec, req, apperrors.InvalidInput("bad"), testLogger())

	assert.Equal(t, "corr-123", decode(t, rec).Error.RequestID)
}

func TestWriteError_NoCorrelationID_OmitsRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil).WithContext(context.Background())

	WriteError(rec, req, apperrors.InvalidInput("bad"), testLogger())

	assert.NotContains(t, rec.Body.String(), "request_id")
}

func TestWriteError_NilFallbackUsesDefault(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	assert.NotPanics(t, func() {
		WriteError(rec, req, fmt.Errorf("boom"), nil)
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// --- WriteBadRequest ---

func TestWriteBadRequest_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)

	WriteBadRequest(rec, req, fmt.Errorf("decode request body: unexpected EOF"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "unexpected EOF")
}
