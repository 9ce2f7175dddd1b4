package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fassa-ttu/fassa-backend/internal/domain"
)

const uniqueViolation = "23505"

// constraint name -> request field reported to the caller
var conflictFields = map[string]string{
	"accounts_email_key":                        "email",
	"accounts_index_number_key":                 "index_number",
	"accounts_verification_token_key":           "verification_token",
	"courses_code_key":                          "code",
	"course_registrations_account_course_key":   "course",
	"password_resets_token_key":                 "token",
}

// mapConflict converts a postgres unique violation into the domain
// conflict error; any other error passes through unchanged.
func mapConflict(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		field, ok := conflictFields[pgErr.ConstraintName]
		if !ok {
			field = "resource"
		}
		return &domain.ConflictError{Field: field}
	}
	return err
}
