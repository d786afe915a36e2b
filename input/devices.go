package input

import (
	"io"
	"math"
)

// Options controls analog normalization.
type Options struct {
	// StickDeadZone zeroes sticks whose magnitude is below it.
	StickDeadZone float64
	// TriggerDeadZone zeroes triggers below it.
	TriggerDeadZone float64
}

func DefaultOptions() Options {
	return Options{
		StickDeadZone:   0.2,
		TriggerDeadZone: 0.05,
	}
}

// Devices turns raw polls into Snapshots and owns the button state machines.
type Devices struct {
	poller Poller
	opts   Options

	frame     uint64
	current   Snapshot
	lastMouse Vec2
	hasMouse  bool
}

func NewDevices(poller Poller, opts Options) *Devices {
	return &Devices{poller: poller, opts: opts}
}

// Poll samples the poller once and advances every button by one tick.
func (d *Devices) Poll() Snapshot {
	if d == nil {
		return Snapshot{}
	}

	var raw RawState
	if d.poller != nil {
		raw = d.poller.Poll()
	}

	d.frame++
	next := Snapshot{Frame: d.frame}

	for slot := range raw.Gamepads {
		rp := raw.Gamepads[slot]
		prev := &d.current.pads[slot]
		pf := &next.pads[slot]
		pf.connected = rp.Connected
		if rp.Connected {
			pf.leftStick = applyStickDeadZone(rp.LeftStick, d.opts.StickDeadZone)
			pf.rightStick = applyStickDeadZone(rp.RightStick, d.opts.StickDeadZone)
			pf.leftTrigger = applyTriggerDeadZone(rp.LeftTrigger, d.opts.TriggerDeadZone)
			pf.rightTrigger = applyTriggerDeadZone(rp.RightTrigger, d.opts.TriggerDeadZone)
		}
		for b := range pf.buttons {
			pf.buttons[b] = prev.buttons[b].Advance(rp.Connected && rp.Buttons[b])
		}
	}

	pos := Vec2{X: raw.Mouse.X, Y: raw.Mouse.Y}
	next.mouse.position = pos
	if d.hasMouse {
		next.mouse.delta = Vec2{X: pos.X - d.lastMouse.X, Y: pos.Y - d.lastMouse.Y}
	}
	d.lastMouse = pos
	d.hasMouse = true
	next.mouse.scroll = Vec2{X: raw.Mouse.ScrollX, Y: raw.Mouse.ScrollY}
	for b := range next.mouse.buttons {
		next.mouse.buttons[b] = d.current.mouse.buttons[b].Advance(raw.Mouse.Buttons[b])
	}

	d.current = next
	return next
}

// Snapshot returns the most recent poll.
func (d *Devices) Snapshot() Snapshot {
	if d == nil {
		return Snapshot{}
	}
	return d.current
}

// Close releases the poller if it holds resources.
func (d *Devices) Close() error {
	if d == nil || d.poller == nil {
		return nil
	}
	if c, ok := d.poller.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func applyStickDeadZone(v Vec2, deadZone float64) Vec2 {
	v.X = clamp(v.X, -1, 1)
	v.Y = clamp(v.Y, -1, 1)
	mag := math.Hypot(v.X, v.Y)
	if mag < deadZone || mag == 0 {
		return Vec2{}
	}
	if mag > 1 {
		return Vec2{X: v.X / mag, Y: v.Y / mag}
	}
	return v
}

func applyTriggerDeadZone(v, deadZone float64) float64 {
	v = clamp(v, 0, 1)
	if v < deadZone {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}
