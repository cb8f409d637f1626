package database

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotOwned is returned when a write targets a row that does not exist or
// is not owned by the caller. The two cases are deliberately conflated so
// responses cannot leak resource existence.
var ErrNotOwned = errors.New("resource not found or not owned")

// IsUniqueViolation reports whether err is a postgres unique constraint
// violation. Registration paths pre-check email uniqueness, but two
// concurrent registrations can still race to the INSERT.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
