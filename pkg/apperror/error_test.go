package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromKeepsAppErrors(t *testing.T) {
	wrapped := fmt.Errorf("signup: %w", EmailAlreadyExists())
	got := From(wrapped)
	assert.Equal(t, KindEmailAlreadyExists, got.Kind)
	assert.Equal(t, http.StatusBadRequest, got.Code)
	assert.True(t, IsKind(wrapped, KindEmailAlreadyExists))
}

func TestFromWrapsUnknownAsInternal(t *testing.T) {
	cause := errors.New("connection reset")
	got := From(cause)
	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, http.StatusInternalServerError, got.Code)
	assert.Equal(t, MsgInternal, got.Message)
	assert.ErrorIs(t, got, cause)
}

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("bad", nil).Code)
	assert.Equal(t, http.StatusBadRequest, InvalidCredentials().Code)
	assert.Equal(t, http.StatusUnauthorized, Unauthorized(MsgNoToken).Code)
	assert.Equal(t, http.StatusNotFound, NotFound(MsgUserNotFound).Code)
}
