package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:     http.StatusBadRequest,
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindNotFound:       http.StatusNotFound,
		KindConflict:       http.StatusConflict,
		KindInternal:       http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.Status())
	}
}

func TestFromWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", Authentication("invalid_credentials", "invalid email or password"))

	got := From(wrapped)
	assert.Equal(t, KindAuthentication, got.Kind)
	assert.True(t, Is(wrapped, "invalid_credentials"))
}

func TestFromUntypedErrorIsInternal(t *testing.T) {
	cause := errors.New("connection reset")

	got := From(cause)
	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, "internal_error", got.Code)
	assert.ErrorIs(t, got, cause)
	assert.NotContains(t, got.Message, "connection reset")
}
