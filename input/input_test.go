package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButtonSequence(t *testing.T) {
	poller := &StaticPoller{}
	devices := NewDevices(poller, DefaultOptions())

	downs := []bool{true, true, true, false, false, false}
	want := []ButtonState{Press, Hold, Hold, Release, Released, Released}

	for i, down := range downs {
		poller.Update(func(s *RawState) { s.Mouse.Buttons[MouseButtonLeft] = down })
		snap := devices.Poll()
		assert.Equal(t, want[i], snap.MouseButton(MouseButtonLeft), "tick %d", i)
	}
}

func TestButtonNeverRepeatsEdges(t *testing.T) {
	pattern := []bool{true, false, true, true, false, true, false, false, true}
	var state ButtonState
	var prev ButtonState
	for i, down := range pattern {
		state = state.Advance(down)
		if i > 0 {
			assert.False(t, prev == Press && state == Press, "double press at %d", i)
			assert.False(t, prev == Release && state == Release, "double release at %d", i)
		}
		assert.Equal(t, down, state.Down())
		prev = state
	}
}

func TestParseSource(t *testing.T) {
	cases := []struct {
		spec    string
		kind    Kind
		wantErr bool
	}{
		{"gamepad.left_trigger", KindScalar, false},
		{"gamepad.left_joystick", KindVector2, false},
		{"gamepad2.right_joystick", KindVector2, false},
		{"mouse.delta", KindVector2, false},
		{"mouse.left", KindScalar, false},
		{"gamepad.nope", KindInvalid, true},
		{"keyboard.w", KindInvalid, true},
		{"gamepad9.left_trigger", KindInvalid, true},
		{"left_trigger", KindInvalid, true},
		{"", KindInvalid, true},
	}

	for _, c := range cases {
		t.Run(c.spec, func(t *testing.T) {
			src, err := ParseSource(c.spec)
			if c.wantErr {
				require.ErrorIs(t, err, ErrUnknownSource)
				assert.False(t, src.Valid())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.kind, src.Kind())
			assert.Equal(t, c.spec, src.String())
		})
	}
}

func TestSnapshotReads(t *testing.T) {
	poller := &StaticPoller{}
	poller.State.Gamepads[0] = RawGamepad{
		Connected:   true,
		LeftStick:   Vec2{X: 0.5, Y: -0.3},
		RightStick:  Vec2{X: 0.1, Y: 0.1},
		LeftTrigger: 0.75,
	}
	devices := NewDevices(poller, DefaultOptions())
	snap := devices.Poll()

	t.Run("vector passes through outside dead zone", func(t *testing.T) {
		v, err := snap.ReadVector2(MustParseSource("gamepad.left_joystick"))
		require.NoError(t, err)
		assert.Equal(t, Vec2{X: 0.5, Y: -0.3}, v)
	})

	t.Run("stick inside dead zone reads zero", func(t *testing.T) {
		v, err := snap.ReadVector2(MustParseSource("gamepad.right_joystick"))
		require.NoError(t, err)
		assert.Equal(t, Vec2{}, v)
	})

	t.Run("scalar", func(t *testing.T) {
		f, err := snap.ReadScalar(MustParseSource("gamepad.left_trigger"))
		require.NoError(t, err)
		assert.Equal(t, 0.75, f)
	})

	t.Run("wrong accessor", func(t *testing.T) {
		_, err := snap.ReadScalar(MustParseSource("gamepad.left_joystick"))
		assert.ErrorIs(t, err, ErrTypeMismatch)
		_, err = snap.ReadVector2(MustParseSource("gamepad.left_trigger"))
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})

	t.Run("zero source", func(t *testing.T) {
		_, err := snap.ReadScalar(Source{})
		assert.ErrorIs(t, err, ErrUnknownSource)
	})

	t.Run("repeated reads are identical", func(t *testing.T) {
		src := MustParseSource("gamepad.left_joystick")
		a, _ := snap.ReadVector2(src)
		poller.Update(func(s *RawState) { s.Gamepads[0].LeftStick = Vec2{X: -1} })
		b, _ := snap.ReadVector2(src)
		assert.Equal(t, a, b)
	})
}

func TestStickClamp(t *testing.T) {
	v := applyStickDeadZone(Vec2{X: 3, Y: 4}, 0.2)
	assert.InDelta(t, 1.0, v.X*v.X+v.Y*v.Y, 1e-9)
	assert.Equal(t, 0.0, applyTriggerDeadZone(0.01, 0.05))
	assert.Equal(t, 1.0, applyTriggerDeadZone(1.5, 0.05))
}

func TestMouseDelta(t *testing.T) {
	poller := &StaticPoller{}
	poller.State.Mouse.X, poller.State.Mouse.Y = 100, 50
	devices := NewDevices(poller, DefaultOptions())

	assert.Equal(t, Vec2{}, devices.Poll().MouseDelta())

	poller.Update(func(s *RawState) { s.Mouse.X, s.Mouse.Y = 104, 47 })
	assert.Equal(t, Vec2{X: 4, Y: -3}, devices.Poll().MouseDelta())

	assert.Equal(t, Vec2{}, devices.Poll().MouseDelta())
}

func TestReadButton(t *testing.T) {
	poller := &StaticPoller{}
	poller.State.Gamepads[1].Connected = true
	poller.State.Gamepads[1].Buttons[GamepadSouth] = true
	snap := NewDevices(poller, DefaultOptions()).Poll()

	down, err := snap.ReadButton("gamepad1", "south")
	require.NoError(t, err)
	assert.True(t, down)
	assert.Equal(t, Press, snap.GamepadButton(1, GamepadSouth))

	down, err = snap.ReadButton("gamepad", "south")
	require.NoError(t, err)
	assert.False(t, down)

	_, err = snap.ReadButton("gamepad", "left_joystick")
	assert.ErrorIs(t, err, ErrTypeMismatch)
	_, err = snap.ReadButton("wheel", "left")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestButtonByName(t *testing.T) {
	poller := &StaticPoller{}
	devices := NewDevices(poller, DefaultOptions())
	poller.Update(func(s *RawState) { s.Mouse.Buttons[MouseButtonRight] = true })

	state, err := devices.Poll().Button("mouse", "right")
	require.NoError(t, err)
	assert.Equal(t, Press, state)

	state, err = devices.Poll().Button("mouse", "right")
	require.NoError(t, err)
	assert.Equal(t, Hold, state)

	_, err = devices.Poll().Button("mouse", "delta")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}
