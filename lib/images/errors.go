package images

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("image not found")
	ErrAlreadyExists = errors.New("image already exists")
)

// ChecksumMismatchError is returned when a candidate file's computed checksum
// differs from the checksum declared by the appliance definition.
type ChecksumMismatchError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}
