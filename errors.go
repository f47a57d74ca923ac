package medallion

import (
	"fmt"

	"github.com/pkg/errors"
)

// NotFoundError is returned when a read targets a table name or source
// file path not present on disk. It is never retried internally.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}

// IsNotFound reports whether err (or its cause) is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

// ValidationError is returned when a table fails schema validation:
// required columns are missing or a column's observed type conflicts with
// the expected one.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "schema validation: " + e.Reason
}

// IsValidation reports whether err (or its cause) is a ValidationError.
func IsValidation(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}
