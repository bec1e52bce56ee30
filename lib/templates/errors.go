package templates

import "errors"

var (
	ErrNotFound      = errors.New("template not found")
	ErrAlreadyExists = errors.New("template already exists")
	ErrInvalid       = errors.New("invalid template")
)
