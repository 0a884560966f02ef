package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"wrapped domain error", fmt.Errorf("load: %w", NewUnavailable("store", cause)), "DEPENDENCY_UNAVAILABLE", http.StatusServiceUnavailable},
		{"sql no rows", sql.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"pgx no rows", fmt.Errorf("query: %w", pgx.ErrNoRows), "NOT_FOUND", http.StatusNotFound},
		{"plain error", cause, "INTERNAL_ERROR", http.StatusInternalServerError},
		{"integrity", NewDataIntegrity("bad dates", cause), "DATA_INTEGRITY", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
		})
	}

	assert.Nil(t, ToDomainError(nil))
}

func TestDomainErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := NewUnavailable("redis", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "redis unavailable: boom", err.Error())
}
