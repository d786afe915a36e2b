package binding

import (
	"fmt"

	"github.com/milk9111/gamify/input"
)

// Handle is a weak reference to an action. It stores the name and the kind it
// was created with and resolves everything else at read time.
type Handle struct {
	reg  *Registry
	name string
	kind input.Kind
}

func (h Handle) Name() string {
	return h.name
}

func (h Handle) Kind() input.Kind {
	return h.kind
}

func (h Handle) Valid() bool {
	return h.reg != nil && h.kind != input.KindInvalid
}

// Value reads the action's current value.
func (h Handle) Value() (Value, error) {
	if h.reg == nil {
		return Value{}, fmt.Errorf("binding: read %q: %w", h.name, ErrNotFound)
	}
	v, err := h.reg.Read(h.name)
	if err != nil {
		return Value{}, err
	}
	if v.Kind() != h.kind {
		if kind, ok := h.reg.staged(h.name); ok && kind == h.kind {
			return Value{}, fmt.Errorf("binding: %q is %s until its rebind to %s applies next tick: %w", h.name, v.Kind(), h.kind, ErrTypeMismatch)
		}
		return Value{}, fmt.Errorf("binding: %q was rebound from %s to %s: %w", h.name, h.kind, v.Kind(), ErrTypeMismatch)
	}
	return v, nil
}

// Float reads a scalar action.
func (h Handle) Float() (float64, error) {
	if h.kind != input.KindScalar {
		return 0, fmt.Errorf("binding: %q is %s, read as scalar: %w", h.name, h.kind, ErrTypeMismatch)
	}
	v, err := h.Value()
	if err != nil {
		return 0, err
	}
	return v.Float()
}

// Vector2 reads a 2-vector action.
func (h Handle) Vector2() (input.Vec2, error) {
	if h.kind != input.KindVector2 {
		return input.Vec2{}, fmt.Errorf("binding: %q is %s, read as vector2: %w", h.name, h.kind, ErrTypeMismatch)
	}
	v, err := h.Value()
	if err != nil {
		return input.Vec2{}, err
	}
	return v.Vector2()
}
