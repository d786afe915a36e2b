package input

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind is the value shape a source produces.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindScalar
	KindVector2
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVector2:
		return "vector2"
	default:
		return "invalid"
	}
}

type deviceClass uint8

const (
	deviceNone deviceClass = iota
	deviceGamepad
	deviceMouse
)

// Source identifies one physical control, e.g. "gamepad.left_trigger".
// The zero Source is invalid and fails every read.
type Source struct {
	device  string
	control string
	kind    Kind
	class   deviceClass
	slot    int
}

func (s Source) Device() string  { return s.device }
func (s Source) Control() string { return s.control }
func (s Source) Kind() Kind      { return s.kind }
func (s Source) Valid() bool     { return s.kind != KindInvalid }

func (s Source) String() string {
	if !s.Valid() {
		return "<invalid>"
	}
	return s.device + "." + s.control
}

type control struct {
	kind   Kind
	button int
	pad    func(p *padFrame) Vec2
	mouse  func(m *mouseFrame) Vec2
}

func padButton(b GamepadButton) control {
	return control{kind: KindScalar, button: int(b), pad: func(p *padFrame) Vec2 {
		if p.buttons[b].Down() {
			return Vec2{X: 1}
		}
		return Vec2{}
	}}
}

func mouseButton(b MouseButton) control {
	return control{kind: KindScalar, button: int(b), mouse: func(m *mouseFrame) Vec2 {
		if m.buttons[b].Down() {
			return Vec2{X: 1}
		}
		return Vec2{}
	}}
}

var gamepadControls = map[string]control{
	"left_trigger":   {kind: KindScalar, button: -1, pad: func(p *padFrame) Vec2 { return Vec2{X: p.leftTrigger} }},
	"right_trigger":  {kind: KindScalar, button: -1, pad: func(p *padFrame) Vec2 { return Vec2{X: p.rightTrigger} }},
	"left_joystick":  {kind: KindVector2, button: -1, pad: func(p *padFrame) Vec2 { return p.leftStick }},
	"right_joystick": {kind: KindVector2, button: -1, pad: func(p *padFrame) Vec2 { return p.rightStick }},
	"dpad":           {kind: KindVector2, button: -1, pad: func(p *padFrame) Vec2 { return p.dpad() }},
	"south":          padButton(GamepadSouth),
	"east":           padButton(GamepadEast),
	"west":           padButton(GamepadWest),
	"north":          padButton(GamepadNorth),
	"left_bumper":    padButton(GamepadLeftBumper),
	"right_bumper":   padButton(GamepadRightBumper),
	"select":         padButton(GamepadSelect),
	"start":          padButton(GamepadStart),
	"left_stick":     padButton(GamepadLeftStick),
	"right_stick":    padButton(GamepadRightStick),
	"dpad_up":        padButton(GamepadDPadUp),
	"dpad_down":      padButton(GamepadDPadDown),
	"dpad_left":      padButton(GamepadDPadLeft),
	"dpad_right":     padButton(GamepadDPadRight),
}

var mouseControls = map[string]control{
	"delta":    {kind: KindVector2, button: -1, mouse: func(m *mouseFrame) Vec2 { return m.delta }},
	"position": {kind: KindVector2, button: -1, mouse: func(m *mouseFrame) Vec2 { return m.position }},
	"scroll":   {kind: KindVector2, button: -1, mouse: func(m *mouseFrame) Vec2 { return m.scroll }},
	"left":     mouseButton(MouseButtonLeft),
	"right":    mouseButton(MouseButtonRight),
	"middle":   mouseButton(MouseButtonMiddle),
}

// ParseSource resolves a "device.control" string against the known controls.
// Devices are "mouse", "gamepad" (slot 0) and "gamepad0".."gamepad3".
func ParseSource(spec string) (Source, error) {
	device, ctrl, ok := strings.Cut(strings.TrimSpace(spec), ".")
	if !ok || device == "" || ctrl == "" {
		return Source{}, fmt.Errorf("%w: %q is not device.control", ErrUnknownSource, spec)
	}

	class, slot, err := parseDevice(device)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %q", err, spec)
	}

	c, ok := lookupControl(class, ctrl)
	if !ok {
		return Source{}, fmt.Errorf("%w: %q has no control %q", ErrUnknownSource, device, ctrl)
	}

	return Source{device: device, control: ctrl, kind: c.kind, class: class, slot: slot}, nil
}

// MustParseSource is ParseSource for static tables. It panics on error.
func MustParseSource(spec string) Source {
	src, err := ParseSource(spec)
	if err != nil {
		panic(err)
	}
	return src
}

// Controls lists every known "device.control" name for slot 0 devices.
func Controls() []string {
	out := make([]string, 0, len(gamepadControls)+len(mouseControls))
	for name := range gamepadControls {
		out = append(out, "gamepad."+name)
	}
	for name := range mouseControls {
		out = append(out, "mouse."+name)
	}
	sort.Strings(out)
	return out
}

func parseDevice(device string) (deviceClass, int, error) {
	if device == "mouse" {
		return deviceMouse, 0, nil
	}
	rest, ok := strings.CutPrefix(device, "gamepad")
	if !ok {
		return deviceNone, 0, ErrUnknownSource
	}
	if rest == "" {
		return deviceGamepad, 0, nil
	}
	slot, err := strconv.Atoi(rest)
	if err != nil || slot < 0 || slot >= MaxGamepads {
		return deviceNone, 0, ErrUnknownSource
	}
	return deviceGamepad, slot, nil
}

func lookupControl(class deviceClass, name string) (control, bool) {
	var c control
	var ok bool
	switch class {
	case deviceGamepad:
		c, ok = gamepadControls[name]
	case deviceMouse:
		c, ok = mouseControls[name]
	}
	return c, ok
}
