package input

import "errors"

var (
	ErrUnknownSource = errors.New("input: unknown device source")
	ErrTypeMismatch  = errors.New("input: value kind mismatch")
)
