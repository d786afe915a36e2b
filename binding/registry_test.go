package binding

import (
	"testing"

	"github.com/milk9111/gamify/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (*InputContext, *input.StaticPoller) {
	t.Helper()
	poller := &input.StaticPoller{}
	poller.State.Gamepads[0] = input.RawGamepad{
		Connected:    true,
		LeftStick:    input.Vec2{X: 0.5, Y: -0.3},
		RightStick:   input.Vec2{X: -0.6, Y: 0.4},
		LeftTrigger:  0.25,
		RightTrigger: 0.75,
	}
	ctx := NewInputContext(input.NewDevices(poller, input.DefaultOptions()), NewRegistry())
	return ctx, poller
}

func TestBindThenGetKeepsKind(t *testing.T) {
	cases := []struct {
		source string
		kind   input.Kind
	}{
		{"gamepad.left_trigger", input.KindScalar},
		{"gamepad.right_trigger", input.KindScalar},
		{"gamepad.left_joystick", input.KindVector2},
		{"gamepad.right_joystick", input.KindVector2},
		{"mouse.delta", input.KindVector2},
		{"mouse.left", input.KindScalar},
	}

	for _, c := range cases {
		t.Run(c.source, func(t *testing.T) {
			reg := NewRegistry()
			bound, err := reg.Bind("action", c.source)
			require.NoError(t, err)
			got, err := reg.Get("action")
			require.NoError(t, err)
			assert.Equal(t, c.kind, bound.Kind())
			assert.Equal(t, c.kind, got.Kind())
		})
	}
}

func TestGetDoesNotCreate(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("move")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, reg.Names())
}

func TestBindUnknownSource(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Bind("jump", "gamepad.jetpack")
	require.ErrorIs(t, err, ErrUnknownSource)
	_, ok := reg.Lookup("jump")
	assert.False(t, ok)
}

func TestTypeMismatch(t *testing.T) {
	ctx, _ := newTestContext(t)
	up, err := ctx.Bind("up", "gamepad.left_trigger")
	require.NoError(t, err)
	move, err := ctx.Bind("move", "gamepad.left_joystick")
	require.NoError(t, err)
	ctx.Refresh()
	defer ctx.Settle()

	_, err = up.Vector2()
	assert.ErrorIs(t, err, ErrTypeMismatch)
	_, err = move.Float()
	assert.ErrorIs(t, err, ErrTypeMismatch)

	f, err := up.Float()
	require.NoError(t, err)
	assert.Equal(t, 0.25, f)
	v, err := move.Vector2()
	require.NoError(t, err)
	assert.Equal(t, input.Vec2{X: 0.5, Y: -0.3}, v)
}

func TestLateBinding(t *testing.T) {
	ctx, _ := newTestContext(t)
	reg := ctx.Registry()

	up, err := reg.Bind("up", "gamepad.left_trigger")
	require.NoError(t, err)
	ctx.Refresh()
	f, err := up.Float()
	require.NoError(t, err)
	assert.Equal(t, 0.25, f)
	ctx.Settle()

	_, err = reg.Bind("up", "gamepad.right_trigger")
	require.NoError(t, err)
	ctx.Refresh()
	f, err = up.Float()
	require.NoError(t, err)
	assert.Equal(t, 0.75, f)
	ctx.Settle()
}

func TestRebindDuringTickAppliesNextTick(t *testing.T) {
	ctx, _ := newTestContext(t)
	reg := ctx.Registry()
	look, err := reg.Bind("look", "gamepad.left_joystick")
	require.NoError(t, err)

	ctx.Refresh()
	_, err = reg.Bind("look", "gamepad.right_joystick")
	require.NoError(t, err)
	v, err := look.Vector2()
	require.NoError(t, err)
	assert.Equal(t, input.Vec2{X: 0.5, Y: -0.3}, v, "rebind must not be visible inside the same tick")
	ctx.Settle()

	ctx.Refresh()
	v, err = look.Vector2()
	require.NoError(t, err)
	assert.Equal(t, input.Vec2{X: -0.6, Y: 0.4}, v)
	ctx.Settle()
}

func TestStagedKindChangeKeepsBindAndGetInAgreement(t *testing.T) {
	ctx, _ := newTestContext(t)
	reg := ctx.Registry()
	_, err := reg.Bind("move", "gamepad.left_joystick")
	require.NoError(t, err)

	ctx.Refresh()
	bound, err := reg.Bind("move", "gamepad.left_trigger")
	require.NoError(t, err)
	got, err := reg.Get("move")
	require.NoError(t, err)
	assert.Equal(t, input.KindScalar, bound.Kind())
	assert.Equal(t, bound.Kind(), got.Kind())

	_, err = got.Float()
	require.ErrorIs(t, err, ErrTypeMismatch)
	assert.Contains(t, err.Error(), "applies next tick")
	ctx.Settle()

	ctx.Refresh()
	defer ctx.Settle()
	f, err := got.Float()
	require.NoError(t, err)
	assert.Equal(t, 0.25, f)
}

func TestStagedRemoveHidesName(t *testing.T) {
	ctx, _ := newTestContext(t)
	reg := ctx.Registry()
	h, err := reg.Bind("up", "gamepad.left_trigger")
	require.NoError(t, err)

	ctx.Refresh()
	defer ctx.Settle()
	require.NoError(t, reg.Remove("up"))
	_, err = reg.Get("up")
	assert.ErrorIs(t, err, ErrNotFound)

	f, err := h.Float()
	require.NoError(t, err)
	assert.Equal(t, 0.25, f)
}

func TestNewBindingDuringTickIsImmediate(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Refresh()
	defer ctx.Settle()

	h, err := ctx.Bind("down", "gamepad.right_trigger")
	require.NoError(t, err)
	f, err := h.Float()
	require.NoError(t, err)
	assert.Equal(t, 0.75, f)
}

func TestRemovedBindingIsNotFound(t *testing.T) {
	ctx, _ := newTestContext(t)
	reg := ctx.Registry()
	h, err := reg.Bind("up", "gamepad.left_trigger")
	require.NoError(t, err)

	require.NoError(t, reg.Remove("up"))
	ctx.Refresh()
	defer ctx.Settle()

	_, err = h.Float()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, reg.Remove("up"), ErrNotFound)
}

func TestRebindChangingKindFailsOldHandle(t *testing.T) {
	ctx, _ := newTestContext(t)
	reg := ctx.Registry()
	h, err := reg.Bind("aim", "gamepad.left_trigger")
	require.NoError(t, err)
	_, err = reg.Bind("aim", "gamepad.left_joystick")
	require.NoError(t, err)

	ctx.Refresh()
	defer ctx.Settle()

	assert.Equal(t, input.KindScalar, h.Kind())
	_, err = h.Float()
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestAddRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Add("move", "gamepad.left_joystick")
	require.NoError(t, err)
	_, err = reg.Add("move", "gamepad.right_joystick")
	assert.ErrorIs(t, err, ErrDuplicateBinding)

	b, ok := reg.Lookup("move")
	require.True(t, ok)
	assert.Equal(t, "gamepad.left_joystick", b.Source.String())
}

func TestZeroHandle(t *testing.T) {
	var h Handle
	assert.False(t, h.Valid())
	_, err := h.Value()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValueAccessors(t *testing.T) {
	s := Scalar(2)
	_, err := s.Vector2()
	assert.ErrorIs(t, err, ErrTypeMismatch)
	f, err := s.Float()
	require.NoError(t, err)
	assert.Equal(t, 2.0, f)

	v := Vector2(1, -1)
	_, err = v.Float()
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, "(1, -1)", v.String())
}
