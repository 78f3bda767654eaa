package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"libraryapi/internal/book"
	"libraryapi/internal/platform/crypto"
)

// TestSecret is the shared secret used across handler tests.
const TestSecret = "test-secret-key"

func strPtr(s string) *string { return &s }

// TestBook is a stored book for testing
var TestBook = book.Book{
	ID:       1,
	ISBN:     "9780134190440",
	Title:    "The Go Programming Language",
	Author:   "Alan A. A. Donovan",
	Summary:  strPtr("An introduction to Go."),
	CoverURL: nil,
	Status:   true,
}

// GenerateTestToken generates a valid library token for testing
func GenerateTestToken(secret string) string {
	token, _ := crypto.GenerateToken(secret, crypto.LibraryIdentity, time.Hour)
	return token
}

// GenerateExpiredToken generates an expired library token for testing
func GenerateExpiredToken(secret string) string {
	return signClaims(secret, crypto.Claims{
		Identity: crypto.LibraryIdentity,
		Type:     "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	})
}

// GenerateForeignIdentityToken generates a correctly signed token for a different project
func GenerateForeignIdentityToken(secret string) string {
	return signClaims(secret, crypto.Claims{
		Identity: crypto.Identity{Project: "warehouse"},
		Type:     "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
}

func signClaims(secret string, c crypto.Claims) string {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	token, _ := t.SignedString([]byte(secret))
	return token
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body any) *http.Request {
	var r *http.Request
	switch b := body.(type) {
	case nil:
		r = httptest.NewRequest(method, path, nil)
	case string:
		r = httptest.NewRequest(method, path, bytes.NewBufferString(b))
		r.Header.Set("Content-Type", "application/json")
	default:
		bodyBytes, _ := json.Marshal(b)
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// NewRequestWithAuth creates a new HTTP request with a bearer token for testing
func NewRequestWithAuth(method, path string, body any, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]any
	Raw    []byte
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]any
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
		Raw:    bodyBytes,
	}
}
