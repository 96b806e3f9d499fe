package response

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waajacu/minerals/pkg/errors"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]int{"count": 3})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"count":3},"error":null}`, rec.Body.String())
}

func TestFail(t *testing.T) {
	resp := Fail("TEST_ERROR", "Test error message", "Additional details")
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "TEST_ERROR", resp.Error.Code)
	assert.Equal(t, "Additional details", resp.Error.Details)
}

func TestErrorFromType(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:       "not found",
			err:        errors.NewNotFoundError("mineral", "record.quartz.0x0a0b0c0d"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:        "validation carries operator message",
			err:         errors.NewValidationError("hardness_mohs", "x", "'hardness_mohs' must be a number"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "BAD_REQUEST",
			wantMessage: "'hardness_mohs' must be a number",
		},
		{
			name:        "wrapped validation",
			err:         fmt.Errorf("publish: %w", errors.NewValidationError("common_name", "", "'common_name' is required")),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "BAD_REQUEST",
			wantMessage: "'common_name' is required",
		},
		{
			name:       "unauthorized",
			err:        errors.NewUnauthorizedError("invalid admin password"),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "provider error",
			err:        errors.NewAPIError("openai", 500, "boom"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "UPSTREAM_ERROR",
		},
		{
			name:       "provider timeout",
			err:        errors.NewTimeoutError("suggest", "45s", "deadline exceeded"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "UPSTREAM_ERROR",
		},
		{
			name:       "non-conforming model output",
			err:        errors.NewParseError("json", "openai", "empty model output", nil),
			wantStatus: http.StatusBadGateway,
			wantCode:   "UPSTREAM_ERROR",
		},
		{
			name:        "storage is generic",
			err:         errors.NewIOError("write", "/srv/data/minerals/x/record.json", stderrors.New("disk full")),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_ERROR",
			wantMessage: "Internal server error",
		},
		{
			name:        "internal is generic",
			err:         errors.NewInternalError("publish", "failed to allocate unique mineral id", nil),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_ERROR",
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ErrorFromType(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Error.Message)
			}
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, rec.Body.String(), "disk full")
				assert.NotContains(t, rec.Body.String(), "/srv/data")
				assert.NotContains(t, rec.Body.String(), "allocate")
			}
		})
	}
}

func TestErr_Logs(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	Err(rec, req, errors.NewNotFoundError("mineral", "x"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
