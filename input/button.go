package input

// ButtonState is the per-tick edge state of a button.
type ButtonState uint8

const (
	Released ButtonState = iota
	Press
	Hold
	Release
)

func (s ButtonState) String() string {
	switch s {
	case Press:
		return "press"
	case Hold:
		return "hold"
	case Release:
		return "release"
	default:
		return "released"
	}
}

// Down reports whether the button is physically held this tick.
func (s ButtonState) Down() bool {
	return s == Press || s == Hold
}

// Advance steps the state machine with this tick's raw sample.
// Press and Release each last exactly one tick.
func (s ButtonState) Advance(down bool) ButtonState {
	if down {
		if s.Down() {
			return Hold
		}
		return Press
	}
	if s.Down() {
		return Release
	}
	return Released
}
