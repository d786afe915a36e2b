package binding

import (
	"fmt"

	"github.com/milk9111/gamify/input"
)

// Value is a resolved binding value: either a scalar or a 2-vector.
type Value struct {
	kind input.Kind
	v    input.Vec2
}

func Scalar(f float64) Value {
	return Value{kind: input.KindScalar, v: input.Vec2{X: f}}
}

func Vector2(x, y float64) Value {
	return Value{kind: input.KindVector2, v: input.Vec2{X: x, Y: y}}
}

func (v Value) Kind() input.Kind {
	return v.kind
}

// Float returns the scalar payload, or ErrTypeMismatch.
func (v Value) Float() (float64, error) {
	if v.kind != input.KindScalar {
		return 0, fmt.Errorf("%w: value is %s, read as scalar", ErrTypeMismatch, v.kind)
	}
	return v.v.X, nil
}

// Vector2 returns the 2-vector payload, or ErrTypeMismatch.
func (v Value) Vector2() (input.Vec2, error) {
	if v.kind != input.KindVector2 {
		return input.Vec2{}, fmt.Errorf("%w: value is %s, read as vector2", ErrTypeMismatch, v.kind)
	}
	return v.v, nil
}

func (v Value) String() string {
	switch v.kind {
	case input.KindScalar:
		return fmt.Sprintf("%g", v.v.X)
	case input.KindVector2:
		return fmt.Sprintf("(%g, %g)", v.v.X, v.v.Y)
	}
	return "<invalid>"
}
