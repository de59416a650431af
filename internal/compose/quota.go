package compose

import (
	"errors"
	"fmt"
)

// DefaultMaxPasses bounds Refresh. Trees settle in two passes unless a
// duration keeps changing.
const DefaultMaxPasses = 64

// passQuota counts refresh passes against a limit.
type passQuota struct {
	limit   int
	current int
}

func newPassQuota(limit int) *passQuota {
	return &passQuota{limit: limit}
}

// Check counts one pass and fails once the limit is exceeded.
func (q *passQuota) Check() error {
	q.current++
	if q.current > q.limit {
		return &PassesExceededError{Passes: q.current, Limit: q.limit}
	}
	return nil
}

// PassesExceededError is returned when durations do not settle within the
// pass limit.
type PassesExceededError struct {
	Passes int
	Limit  int
}

func (e *PassesExceededError) Error() string {
	return fmt.Sprintf("layout did not settle: %d passes > %d limit", e.Passes, e.Limit)
}

// IsPassesExceeded reports whether err is or wraps a PassesExceededError.
func IsPassesExceeded(err error) bool {
	var pe *PassesExceededError
	return errors.As(err, &pe)
}
