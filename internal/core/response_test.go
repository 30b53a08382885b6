package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridpulse/internal/types"
)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) APIErrorResponse {
	t.Helper()
	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestJSONEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/grid", nil)
	rec := httptest.NewRecorder()

	JSON(rec, req, http.StatusOK, APIResponse{Data: map[string]string{"hello": "world"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"hello":"world"}}`, rec.Body.String())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "app error maps code to status",
			err:         types.NewAppError(types.ErrCodeNotFoundSnapshot, "no snapshot has been captured yet", nil),
			wantStatus:  http.StatusNotFound,
			wantCode:    string(types.ErrCodeNotFoundSnapshot),
			wantMessage: "no snapshot has been captured yet",
		},
		{
			name:        "wrapped app error is unwrapped",
			err:         errors.Join(errors.New("handler context"), types.NewAppError(types.ErrCodeValidationInvalidFeed, "unknown feed name", nil)),
			wantStatus:  http.StatusBadRequest,
			wantCode:    string(types.ErrCodeValidationInvalidFeed),
			wantMessage: "unknown feed name",
		},
		{
			name:        "feed failure gets a generic message",
			err:         types.NewAppError(types.ErrCodeFeedTransport, "dial tcp 10.1.2.3:443: i/o timeout", errors.New("i/o timeout")),
			wantStatus:  http.StatusBadGateway,
			wantCode:    string(types.ErrCodeFeedTransport),
			wantMessage: "upstream feed is currently unavailable",
		},
		{
			name:        "plain error becomes 500",
			err:         errors.New("nil pointer somewhere"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    string(types.ErrCodeInternalUnexpected),
			wantMessage: "an unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/grid", nil)
			req = req.WithContext(types.WithRequestID(req.Context(), "req-123"))
			rec := httptest.NewRecorder()

			Error(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeErrorBody(t, rec)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
			assert.Equal(t, "req-123", resp.Error.RequestID)
		})
	}
}
