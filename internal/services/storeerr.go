package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medialog/medialog-backend/internal/apierr"
)

// Postgres SQLSTATEs a retry can clear: serialization failure, deadlock,
// lock timeout.
var retryableSQLStates = map[string]bool{
	"40001": true,
	"40P01": true,
	"55P03": true,
}

// storeError classifies an error leaving a datastore transaction. Typed
// API errors pass through untouched; retryable driver failures become
// transient store errors so clients see a 503 with a retry code instead
// of an uncoded 500.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	if isRetryableStoreError(err) {
		return apierr.TransientStore(err)
	}
	return err
}

func isRetryableStoreError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return retryableSQLStates[pgErr.Code]
	}
	return false
}
