package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateEmail is matched by DuplicateEmailError via errors.Is.
var ErrDuplicateEmail = errors.New("candidate with this email already exists")

// DuplicateEmailError reports an insert rejected by the email uniqueness
// constraint. ExistingID is empty if the existing row could not be looked up.
type DuplicateEmailError struct {
	Email      string
	ExistingID string
}

func (e *DuplicateEmailError) Error() string {
	if e.ExistingID == "" {
		return fmt.Sprintf("candidate with email %s already exists", e.Email)
	}
	return fmt.Sprintf("candidate with email %s already exists as %s", e.Email, e.ExistingID)
}

// Is makes errors.Is(err, ErrDuplicateEmail) hold.
func (e *DuplicateEmailError) Is(target error) bool {
	return target == ErrDuplicateEmail
}

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
