package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/kalafo-api/internal/apperr"
	"github.com/hongminglow/kalafo-api/internal/auth"
	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/storage/memory"
)

func newGuardFixture(t *testing.T) (*Guard, *auth.TokenManager, *memory.Store) {
	t.Helper()
	store := memory.New()
	tokens := auth.NewTokenManager("guard-secret", "kalafo-test", time.Hour)
	return NewGuard(tokens, store), tokens, store
}

func TestAuthorize(t *testing.T) {
	guard, tokens, store := newGuardFixture(t)
	ctx := context.Background()
	patient, err := store.CreateUser(ctx, models.User{Email: "p@kalafo.com", Role: models.RolePatient, IsActive: true})
	require.NoError(t, err)
	token, err := tokens.Generate(patient)
	require.NoError(t, err)

	user, err := guard.Authorize(ctx, "Bearer "+token, models.RolePatient)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, user.ID)

	user, err = guard.Authorize(ctx, "Bearer "+token)
	require.NoError(t, err, "empty allow-list admits any role")
	assert.Equal(t, patient.ID, user.ID)

	_, err = guard.Authorize(ctx, "Bearer "+token, models.RoleDoctor)
	assert.Equal(t, apperr.KindAuthorization, apperr.From(err).Kind)

	for _, header := range []string{"", token, "Basic " + token, "Bearer ", "Bearer garbage"} {
		_, err = guard.Authorize(ctx, header, models.RolePatient)
		assert.Equal(t, apperr.KindAuthentication, apperr.From(err).Kind, "header %q", header)
	}
}

func TestAuthorizeUnknownSubject(t *testing.T) {
	guard, tokens, _ := newGuardFixture(t)
	token, err := tokens.Generate(models.User{ID: 77, Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = guard.Authorize(context.Background(), "Bearer "+token, models.RoleAdmin)
	assert.Equal(t, apperr.KindNotFound, apperr.From(err).Kind)
}

func TestAllowPassesResolvedUser(t *testing.T) {
	guard, tokens, store := newGuardFixture(t)
	doctor, err := store.CreateUser(context.Background(), models.User{Email: "d@kalafo.com", Role: models.RoleDoctor})
	require.NoError(t, err)
	token, err := tokens.Generate(doctor)
	require.NoError(t, err)

	var got models.User
	handler := guard.Allow(func(w http.ResponseWriter, r *http.Request, user models.User) {
		got = user
		w.WriteHeader(http.StatusNoContent)
	}, models.RoleDoctor, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, doctor.ID, got.ID)

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/patients", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := CORS([]string{"https://kalafo.com", "https://*.vercel.app"}, next)

	cases := map[string]bool{
		"https://kalafo.com":          true,
		"https://preview.vercel.app":  true,
		"https://a.b.vercel.app":      false,
		"https://evil.com":            false,
		"https://kalafo.com.evil.com": false,
	}
	for origin, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if want {
			assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"), origin)
		} else {
			assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), origin)
		}
	}

	preflight := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	preflight.Header.Set("Origin", "https://kalafo.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecover(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}
