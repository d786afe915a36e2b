package input

import "strconv"

// MaxGamepads is the number of gamepad slots sampled per tick.
const MaxGamepads = 4

// Vec2 is a polled 2-vector sample.
type Vec2 struct {
	X, Y float64
}

// MouseButton identifies a mouse button by index.
type MouseButton int

const (
	MouseButton0 MouseButton = iota
	MouseButton1
	MouseButton2
	MouseButton3
	MouseButton4
	MouseButton5
	MouseButton6
	MouseButton7
	MouseButton8
	MouseButton9
	MouseButtonCount

	MouseButtonLeft   = MouseButton0
	MouseButtonRight  = MouseButton1
	MouseButtonMiddle = MouseButton2
)

func (b MouseButton) String() string {
	switch b {
	case MouseButtonLeft:
		return "left"
	case MouseButtonRight:
		return "right"
	case MouseButtonMiddle:
		return "middle"
	}
	return "button" + strconv.Itoa(int(b))
}

// GamepadButton identifies a button on a standard-layout gamepad.
type GamepadButton int

const (
	GamepadSouth GamepadButton = iota
	GamepadEast
	GamepadWest
	GamepadNorth
	GamepadLeftBumper
	GamepadRightBumper
	GamepadSelect
	GamepadStart
	GamepadLeftStick
	GamepadRightStick
	GamepadDPadUp
	GamepadDPadDown
	GamepadDPadLeft
	GamepadDPadRight
	GamepadButtonCount
)

// RawGamepad is one gamepad as captured by the engine, before dead zones.
// Triggers are expected in [0,1], sticks in [-1,1] with +Y pointing down
// the way standard gamepad layouts report it.
type RawGamepad struct {
	Connected    bool
	LeftStick    Vec2
	RightStick   Vec2
	LeftTrigger  float64
	RightTrigger float64
	Buttons      [GamepadButtonCount]bool
}

// RawMouse is the cursor, wheel and button state for one tick.
type RawMouse struct {
	X, Y    float64
	ScrollX float64
	ScrollY float64
	Buttons [MouseButtonCount]bool
}

// RawState is everything a Poller reports for one tick.
type RawState struct {
	Gamepads [MaxGamepads]RawGamepad
	Mouse    RawMouse
}

// Poller captures raw device state. Implemented by the host engine.
type Poller interface {
	Poll() RawState
}

// StaticPoller reports whatever State holds. Used headless and in tests.
type StaticPoller struct {
	State RawState
}

func (p *StaticPoller) Poll() RawState {
	if p == nil {
		return RawState{}
	}
	return p.State
}

// Update mutates the reported state in place.
func (p *StaticPoller) Update(fn func(s *RawState)) {
	if p == nil || fn == nil {
		return
	}
	fn(&p.State)
}
