package appliance

import (
	"errors"
	"fmt"
)

var (
	ErrVersionNotFound    = errors.New("version not found")
	ErrInvalidDefinition  = errors.New("invalid appliance definition")
	ErrVersionNotReady    = errors.New("version has missing images")
	ErrUnsupportedVersion = errors.New("unsupported registry version")
)

// VersionNotFoundError reports a lookup for a version name the appliance does
// not declare. This is a usage error, not a user-recoverable condition.
type VersionNotFoundError struct {
	Appliance string
	Version   string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("appliance %s has no version %q", e.Appliance, e.Version)
}

func (e *VersionNotFoundError) Unwrap() error {
	return ErrVersionNotFound
}
