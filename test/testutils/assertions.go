// Package testutils provides custom assertions for storefront tests
package testutils

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/basketful/storefront/internal/domain/cart"
	apperrors "github.com/basketful/storefront/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Envelope mirrors the API success body with raw data
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// Success asserts the status code and decodes the envelope's data into target.
// A nil target skips decoding.
func (ha *HTTPAssertions) Success(rec *httptest.ResponseRecorder, expectedCode int, target interface{}) Envelope {
	ha.t.Helper()
	require.Equal(ha.t, expectedCode, rec.Code, "body: %s", rec.Body.String())

	var env Envelope
	require.NoError(ha.t, json.Unmarshal(rec.Body.Bytes(), &env), "Response should be valid JSON")
	assert.True(ha.t, env.Success)

	if target != nil {
		require.NoError(ha.t, json.Unmarshal(env.Data, target))
	}
	return env
}

// Error asserts the status code and the error code of an error body
func (ha *HTTPAssertions) Error(rec *httptest.ResponseRecorder, expectedCode int, errorCode apperrors.ErrorCode) apperrors.ErrorDetails {
	ha.t.Helper()
	require.Equal(ha.t, expectedCode, rec.Code, "body: %s", rec.Body.String())

	contentType := rec.Header().Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)

	var resp apperrors.ErrorResponse
	require.NoError(ha.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(ha.t, errorCode, resp.Error.Code)
	return resp.Error
}

// SecurityHeaders asserts the headers every API response carries
func (ha *HTTPAssertions) SecurityHeaders(rec *httptest.ResponseRecorder) {
	ha.t.Helper()
	for _, header := range []string{
		"X-Content-Type-Options",
		"X-Frame-Options",
		"Content-Security-Policy",
	} {
		assert.NotEmpty(ha.t, rec.Header().Get(header), "Security header %s should be present", header)
	}
}

// AssertTotals compares a cart price breakdown to the expected values
func AssertTotals(t *testing.T, expected, actual cart.Totals) {
	t.Helper()
	assert.InDelta(t, expected.Subtotal, actual.Subtotal, 0.001, "subtotal")
	assert.InDelta(t, expected.PackagingFee, actual.PackagingFee, 0.001, "packaging fee")
	assert.InDelta(t, expected.Total, actual.Total, 0.001, "total")
	assert.Equal(t, expected.ItemCount, actual.ItemCount, "item count")
}

// AssertEvents asserts the dispatcher saw exactly these event names in order
func AssertEvents(t *testing.T, d *RecordingDispatcher, names ...string) {
	t.Helper()
	if len(names) == 0 {
		assert.Empty(t, d.Names(), "no events should be dispatched")
		return
	}
	assert.Equal(t, names, d.Names())
}

// AssertPasswordHash asserts hash is a bcrypt hash of password
func AssertPasswordHash(t *testing.T, hash, password string) {
	t.Helper()
	assert.True(t, strings.HasPrefix(hash, "$2"), "Password should be bcrypt hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)))
}
