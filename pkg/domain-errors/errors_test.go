package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("load case file: %w", Wrap(cause, CodeNotFound, "case file not found"))

	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(cause))
}

func TestIs(t *testing.T) {
	assert.ErrorIs(t, New(CodeUnauthorized, "invalid token"), New(CodeUnauthorized, "invalid token"))
	assert.NotErrorIs(t, New(CodeUnauthorized, "invalid token"), New(CodeUnauthorized, "token has expired"))
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(CodeValidation))
	assert.Equal(t, http.StatusUnauthorized, ToHTTPStatus(CodeUnauthorized))
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusGatewayTimeout, ToHTTPStatus(CodeTimeout))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(CodeInternal))
}
