package binding

import (
	"errors"

	"github.com/milk9111/gamify/input"
)

var (
	ErrUnknownSource    = input.ErrUnknownSource
	ErrTypeMismatch     = input.ErrTypeMismatch
	ErrNotFound         = errors.New("binding: action not found")
	ErrDuplicateBinding = errors.New("binding: action already bound")
	ErrInvalidName      = errors.New("binding: invalid action name")
)
