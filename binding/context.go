package binding

import "github.com/milk9111/gamify/input"

// InputContext is the input surface handed to components. The frame loop
// owns it and calls Refresh once per tick.
type InputContext struct {
	devices  *input.Devices
	registry *Registry
}

func NewInputContext(devices *input.Devices, registry *Registry) *InputContext {
	if registry == nil {
		registry = NewRegistry()
	}
	return &InputContext{devices: devices, registry: registry}
}

// Refresh polls the devices and opens a new binding tick.
func (c *InputContext) Refresh() input.Snapshot {
	snap := c.devices.Poll()
	c.registry.BeginTick(snap)
	return snap
}

// Settle closes the binding tick opened by Refresh.
func (c *InputContext) Settle() {
	c.registry.EndTick()
}

func (c *InputContext) Bind(name, source string) (Handle, error) {
	return c.registry.Bind(name, source)
}

func (c *InputContext) Get(name string) (Handle, error) {
	return c.registry.Get(name)
}

func (c *InputContext) MouseButton(b input.MouseButton) input.ButtonState {
	return c.registry.Snapshot().MouseButton(b)
}

func (c *InputContext) MouseDelta() input.Vec2 {
	return c.registry.Snapshot().MouseDelta()
}

func (c *InputContext) GamepadButton(slot int, b input.GamepadButton) input.ButtonState {
	return c.registry.Snapshot().GamepadButton(slot, b)
}

func (c *InputContext) Snapshot() input.Snapshot {
	return c.registry.Snapshot()
}

func (c *InputContext) Registry() *Registry {
	return c.registry
}

// Close releases the devices.
func (c *InputContext) Close() error {
	return c.devices.Close()
}
