package lesson

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

// storageErr wraps a driver error as a domain StorageError, logging the
// Postgres SQLSTATE when one is available.
func storageErr(log *logger.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		log.Warn("Postgres error", "op", op, "sqlstate", pgErr.Code, "severity", pgErr.Severity, "detail", pgErr.Detail)
	} else {
		log.Warn("Storage error", "op", op, "error", err)
	}
	return domain.Storage(op, err)
}

// SQLState returns the Postgres error code for err, or "".
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
