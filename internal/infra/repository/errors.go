package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// unique_violation
const pgUniqueViolation = "23505"

// isUniqueViolation はPostgresのユニーク制約違反かどうか判定する。
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
