package database

import (
	"errors"
	"fmt"
	"testing"

	"shop_backend/pkg/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	plain := errors.New("boom")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"lock timeout", &pgconn.PgError{Code: pgLockNotAvailable}, apperr.ErrConcurrencyConflict},
		{"deadlock", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: pgDeadlockDetected}), apperr.ErrConcurrencyConflict},
		{"serialization", &pgconn.PgError{Code: pgSerializationFailure}, apperr.ErrConcurrencyConflict},
		{"stock check", &pgconn.PgError{Code: pgCheckViolation, ConstraintName: "products_stock_check"}, apperr.ErrInsufficientStock},
		{"malformed uuid", &pgconn.PgError{Code: pgInvalidTextRepr, Message: `invalid input syntax for type uuid: "abc"`}, apperr.ErrNotFound},
		{"other", plain, plain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("create: %w", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "uq_return_requests_active_order"})
	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "uq_return_requests_active_order"))
	assert.False(t, IsUniqueViolation(err, "idx_users_email"))
	assert.False(t, IsUniqueViolation(errors.New("x"), ""))
}
