package input

import "fmt"

type padFrame struct {
	connected    bool
	leftStick    Vec2
	rightStick   Vec2
	leftTrigger  float64
	rightTrigger float64
	buttons      [GamepadButtonCount]ButtonState
}

func (p *padFrame) dpad() Vec2 {
	var v Vec2
	if p.buttons[GamepadDPadLeft].Down() {
		v.X--
	}
	if p.buttons[GamepadDPadRight].Down() {
		v.X++
	}
	if p.buttons[GamepadDPadUp].Down() {
		v.Y--
	}
	if p.buttons[GamepadDPadDown].Down() {
		v.Y++
	}
	return v
}

type mouseFrame struct {
	position Vec2
	delta    Vec2
	scroll   Vec2
	buttons  [MouseButtonCount]ButtonState
}

// Snapshot is the normalized device state for one tick. It is a value:
// every read against the same Snapshot returns the same result.
type Snapshot struct {
	Frame uint64

	pads  [MaxGamepads]padFrame
	mouse mouseFrame
}

// ReadScalar reads a scalar source.
func (s Snapshot) ReadScalar(src Source) (float64, error) {
	v, err := s.read(src, KindScalar)
	if err != nil {
		return 0, err
	}
	return v.X, nil
}

// ReadVector2 reads a 2-vector source.
func (s Snapshot) ReadVector2(src Source) (Vec2, error) {
	return s.read(src, KindVector2)
}

// ReadButton reports the raw down state of a button control, e.g.
// ReadButton("mouse", "left") or ReadButton("gamepad", "south").
func (s Snapshot) ReadButton(device, ctrl string) (bool, error) {
	state, err := s.Button(device, ctrl)
	if err != nil {
		return false, err
	}
	return state.Down(), nil
}

// Button returns the edge state of a named button control.
func (s Snapshot) Button(device, ctrl string) (ButtonState, error) {
	class, slot, err := parseDevice(device)
	if err != nil {
		return Released, fmt.Errorf("%w: %q", err, device)
	}
	c, ok := lookupControl(class, ctrl)
	if !ok {
		return Released, fmt.Errorf("%w: %q has no control %q", ErrUnknownSource, device, ctrl)
	}
	if c.button < 0 {
		return Released, fmt.Errorf("%w: %s.%s is not a button", ErrTypeMismatch, device, ctrl)
	}
	if class == deviceMouse {
		return s.mouse.buttons[c.button], nil
	}
	return s.pads[slot].buttons[c.button], nil
}

// MouseButton returns the edge state of a mouse button.
func (s Snapshot) MouseButton(b MouseButton) ButtonState {
	if b < 0 || b >= MouseButtonCount {
		return Released
	}
	return s.mouse.buttons[b]
}

// MouseDelta is the cursor movement since the previous tick.
func (s Snapshot) MouseDelta() Vec2 {
	return s.mouse.delta
}

// MousePosition is the cursor position this tick.
func (s Snapshot) MousePosition() Vec2 {
	return s.mouse.position
}

// GamepadButton returns the edge state of a gamepad button in slot.
func (s Snapshot) GamepadButton(slot int, b GamepadButton) ButtonState {
	if slot < 0 || slot >= MaxGamepads || b < 0 || b >= GamepadButtonCount {
		return Released
	}
	return s.pads[slot].buttons[b]
}

// GamepadConnected reports whether slot held a gamepad this tick.
func (s Snapshot) GamepadConnected(slot int) bool {
	if slot < 0 || slot >= MaxGamepads {
		return false
	}
	return s.pads[slot].connected
}

func (s Snapshot) read(src Source, want Kind) (Vec2, error) {
	if !src.Valid() {
		return Vec2{}, ErrUnknownSource
	}
	c, ok := lookupControl(src.class, src.control)
	if !ok {
		return Vec2{}, fmt.Errorf("%w: %s", ErrUnknownSource, src)
	}
	if c.kind != want {
		return Vec2{}, fmt.Errorf("%w: %s is %s, read as %s", ErrTypeMismatch, src, c.kind, want)
	}
	switch src.class {
	case deviceGamepad:
		if src.slot < 0 || src.slot >= MaxGamepads {
			return Vec2{}, fmt.Errorf("%w: %s", ErrUnknownSource, src)
		}
		return c.pad(&s.pads[src.slot]), nil
	case deviceMouse:
		return c.mouse(&s.mouse), nil
	}
	return Vec2{}, fmt.Errorf("%w: %s", ErrUnknownSource, src)
}
