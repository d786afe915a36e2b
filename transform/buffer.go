package transform

import "github.com/go-gl/mathgl/mgl64"

// Buffer stages a tick's mutations against a local copy of an engine
// transform. Reads see staged values; Flush hands the result to the engine.
type Buffer struct {
	target   Transform
	local    Basic
	posDirty bool
	rotDirty bool
}

func NewBuffer(target Transform) *Buffer {
	if target == nil {
		target = NewBasic()
	}
	b := &Buffer{target: target}
	b.Sync()
	return b
}

// Target is the engine transform this buffer flushes into.
func (b *Buffer) Target() Transform {
	return b.target
}

// Sync discards staged changes and reloads from the engine.
func (b *Buffer) Sync() {
	if src, ok := b.target.(*Basic); ok {
		b.local = Basic{position: src.position, orientation: src.rot()}
	} else {
		b.local = Basic{position: b.target.Position(), orientation: quatFromEuler(b.target.Rotation())}
	}
	b.posDirty = false
	b.rotDirty = false
}

// Dirty reports whether anything is staged.
func (b *Buffer) Dirty() bool {
	return b.posDirty || b.rotDirty
}

// Flush applies staged changes to the engine transform.
func (b *Buffer) Flush() bool {
	if !b.Dirty() {
		return false
	}
	if b.posDirty {
		b.target.SetPosition(b.local.position)
	}
	if b.rotDirty {
		if dst, ok := b.target.(*Basic); ok {
			dst.orientation = b.local.rot()
		} else {
			b.target.SetRotation(b.local.Rotation())
		}
	}
	b.posDirty = false
	b.rotDirty = false
	return true
}

func (b *Buffer) Position() mgl64.Vec3 { return b.local.Position() }
func (b *Buffer) Rotation() mgl64.Vec3 { return b.local.Rotation() }
func (b *Buffer) Right() mgl64.Vec3    { return b.local.Right() }
func (b *Buffer) Forward() mgl64.Vec3  { return b.local.Forward() }
func (b *Buffer) Up() mgl64.Vec3       { return b.local.Up() }

func (b *Buffer) Move(delta mgl64.Vec3) {
	b.local.Move(delta)
	b.posDirty = true
}

func (b *Buffer) Rotate(axis mgl64.Vec3, angle float64) {
	b.local.Rotate(axis, angle)
	b.rotDirty = true
}

func (b *Buffer) SetRotation(euler mgl64.Vec3) {
	b.local.SetRotation(euler)
	b.rotDirty = true
}

func (b *Buffer) SetPosition(p mgl64.Vec3) {
	b.local.SetPosition(p)
	b.posDirty = true
}
