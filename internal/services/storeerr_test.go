package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/medialog/medialog-backend/internal/apierr"
)

func TestStoreErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, true},
		{"deadline exceeded", fmt.Errorf("apply delta: %w", context.DeadlineExceeded), true},
		{"constraint violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := storeError(tt.err)
			require.Equal(t, tt.wantTransient, apierr.IsCode(got, apierr.CodeTransientStoreError))
			require.ErrorIs(t, got, tt.err)
		})
	}
}

func TestStoreErrorKeepsTypedErrors(t *testing.T) {
	in := apierr.NotFound("entry missing")
	require.Same(t, error(in), storeError(in))
	require.NoError(t, storeError(nil))
}
