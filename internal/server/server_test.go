package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/kalafo-api/internal/auth"
	"github.com/hongminglow/kalafo-api/internal/config"
	"github.com/hongminglow/kalafo-api/internal/storage/memory"
)

func testConfig() config.Config {
	return config.Config{
		Port:        "0",
		JWTSecret:   "server-test-secret",
		JWTIssuer:   "kalafo-test",
		JWTTTL:      time.Hour,
		BcryptCost:  bcrypt.MinCost,
		CORSOrigins: []string{"http://localhost:3000", "https://*.vercel.app"},
	}
}

func newTestHandler() http.Handler {
	cfg := testConfig()
	return NewHandler(cfg, memory.New(), auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL))
}

func TestHealthThroughChain(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://kalafo.vercel.app")
	newTestHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://kalafo.vercel.app", rec.Header().Get("Access-Control-Allow-Origin"))

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Data["status"])
}

func TestPreflightShortCircuits(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard/admin", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	newTestHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRegisterLoginThroughChain(t *testing.T) {
	handler := newTestHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(
		`{"email":"admin@kalafo.com","password":"pass1234","first_name":"Ada","last_name":"Admin","role":"admin"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(
		`{"email":"admin@kalafo.com","password":"pass1234"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))
	require.NotEmpty(t, login.Data.Token)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/admin", nil)
	req.Header.Set("Authorization", "Bearer "+login.Data.Token)
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
