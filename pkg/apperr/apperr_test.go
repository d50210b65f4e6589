package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain error is internal", errors.New("connection refused"), KindInternal},
		{"direct", NotFound("store %s not found", "x"), KindNotFound},
		{"wrapped", fmt.Errorf("submit: %w", Conflict("already rated")), KindConflict},
		{"validation", Validation("validation failed", map[string]string{"Rating": "bad"}), KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(KindUnauthenticated))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(KindForbidden))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindValidation))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindConflict))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindInternal))
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindInternal, "load stores", cause)

	assert.Equal(t, "load stores: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "forbidden", Forbidden("forbidden").Error())
}
