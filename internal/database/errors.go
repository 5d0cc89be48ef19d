package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClass groups PostgreSQL failures by how a caller should react.
type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

// PostgreSQL SQLSTATE codes.
const (
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
	CodeLockNotAvailable     = "55P03"
	CodeUniqueViolation      = "23505"
	CodeForeignKeyViolation  = "23503"
	CodeNotNullViolation     = "23502"
	CodeCheckViolation       = "23514"
)

// ClassifyError reports the class of err. Anything that is not a known
// PostgreSQL concurrency failure is permanent.
func ClassifyError(err error) ErrorClass {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ErrorClassPermanent
	}
	switch pgErr.Code {
	case CodeSerializationFailure:
		return ErrorClassSerialization
	case CodeDeadlockDetected:
		return ErrorClassDeadlock
	case CodeLockNotAvailable:
		return ErrorClassTransient
	}
	return ErrorClassPermanent
}

// IsRetryable reports whether the operation that produced err may succeed if repeated.
func IsRetryable(err error) bool {
	switch ClassifyError(err) {
	case ErrorClassTransient, ErrorClassDeadlock, ErrorClassSerialization:
		return true
	}
	return false
}

// IsViolation reports whether err is a PostgreSQL error with the given SQLSTATE code.
func IsViolation(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
