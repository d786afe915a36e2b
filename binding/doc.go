// Package binding resolves logical action names to physical device controls.
//
// A Registry maps each action name (e.g. "move") to one input.Source
// (e.g. "gamepad.left_joystick"). Components ask for a Handle with Bind or Get
// and read it every tick with Float or Vector2.
//
// # Late binding
//
// A Handle only remembers the action name and the value kind it was created
// with. Every read resolves the registry's current source and the current
// device snapshot, so rebinding an action changes what existing handles return
// without callers re-resolving them. Reading a removed action returns
// ErrNotFound.
//
// # Tick boundaries
//
// The frame loop calls BeginTick before running components and EndTick after.
// Between the two, rebinds and removals are staged and applied at the next
// BeginTick, so every component in a tick observes the same bindings. A name
// that does not exist yet is created immediately. Outside a tick every change
// applies at once.
//
// # Kinds
//
// Reads are checked, never coerced: Float on a vector2 binding, or Vector2 on
// a scalar binding, returns ErrTypeMismatch.
package binding
