package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RequestOption customizes a request built by Perform.
type RequestOption func(*http.Request)

// WithBearer sets an Authorization bearer token.
func WithBearer(token string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// Perform sends a request to handler and returns the recorded response.
// A []byte body is sent as-is; any other non-nil body is sent as JSON.
func Perform(t *testing.T, handler http.Handler, method, path string, body interface{}, opts ...RequestOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// envelope mirrors the API response wrapper.
type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// DecodeData asserts a successful envelope and returns its data.
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var resp envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to parse response: %s", w.Body.String())
	require.True(t, resp.Success, "Expected success, got: %s", w.Body.String())
	return resp.Data
}

// AssertErrorCode asserts the status and the error code of an error envelope.
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	assert.Equal(t, status, w.Code, "Unexpected status: %s", w.Body.String())

	var resp envelope[json.RawMessage]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to parse response: %s", w.Body.String())
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error, "Expected error object in response")
	assert.Equal(t, code, resp.Error.Code)
}

// JSONResponseAs parses the recorded body of tc into T.
func JSONResponseAs[T any](t *testing.T, tc *TestContext) T {
	t.Helper()

	var result T
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &result), "Failed to parse JSON response")
	return result
}
