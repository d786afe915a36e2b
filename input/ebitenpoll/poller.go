// Package ebitenpoll captures raw gamepad and mouse state from ebiten.
package ebitenpoll

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/gamify/input"
)

var padButtons = [input.GamepadButtonCount]ebiten.StandardGamepadButton{
	input.GamepadSouth:       ebiten.StandardGamepadButtonRightBottom,
	input.GamepadEast:        ebiten.StandardGamepadButtonRightRight,
	input.GamepadWest:        ebiten.StandardGamepadButtonRightLeft,
	input.GamepadNorth:       ebiten.StandardGamepadButtonRightTop,
	input.GamepadLeftBumper:  ebiten.StandardGamepadButtonFrontTopLeft,
	input.GamepadRightBumper: ebiten.StandardGamepadButtonFrontTopRight,
	input.GamepadSelect:      ebiten.StandardGamepadButtonCenterLeft,
	input.GamepadStart:       ebiten.StandardGamepadButtonCenterRight,
	input.GamepadLeftStick:   ebiten.StandardGamepadButtonLeftStick,
	input.GamepadRightStick:  ebiten.StandardGamepadButtonRightStick,
	input.GamepadDPadUp:      ebiten.StandardGamepadButtonLeftTop,
	input.GamepadDPadDown:    ebiten.StandardGamepadButtonLeftBottom,
	input.GamepadDPadLeft:    ebiten.StandardGamepadButtonLeftLeft,
	input.GamepadDPadRight:   ebiten.StandardGamepadButtonLeftRight,
}

// Poller reads ebiten's input state. It must be polled from the ebiten
// Update callback.
type Poller struct {
	ids []ebiten.GamepadID
}

func New() *Poller {
	return &Poller{}
}

func (p *Poller) Poll() input.RawState {
	var raw input.RawState

	p.ids = ebiten.AppendGamepadIDs(p.ids[:0])
	slot := 0
	for _, id := range p.ids {
		if slot >= input.MaxGamepads {
			break
		}
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		raw.Gamepads[slot] = readGamepad(id)
		slot++
	}

	mx, my := ebiten.CursorPosition()
	raw.Mouse.X = float64(mx)
	raw.Mouse.Y = float64(my)
	raw.Mouse.ScrollX, raw.Mouse.ScrollY = ebiten.Wheel()
	for b := ebiten.MouseButton0; b <= ebiten.MouseButtonMax && int(b) < int(input.MouseButtonCount); b++ {
		raw.Mouse.Buttons[b] = ebiten.IsMouseButtonPressed(b)
	}

	return raw
}

func readGamepad(id ebiten.GamepadID) input.RawGamepad {
	pad := input.RawGamepad{Connected: true}
	pad.LeftStick = input.Vec2{
		X: ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal),
		Y: ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical),
	}
	pad.RightStick = input.Vec2{
		X: ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal),
		Y: ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical),
	}
	pad.LeftTrigger = ebiten.StandardGamepadButtonValue(id, ebiten.StandardGamepadButtonFrontBottomLeft)
	pad.RightTrigger = ebiten.StandardGamepadButtonValue(id, ebiten.StandardGamepadButtonFrontBottomRight)
	for i, b := range padButtons {
		pad.Buttons[i] = ebiten.IsStandardGamepadButtonPressed(id, b)
	}
	return pad
}
