package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	axisX    = mgl64.Vec3{1, 0, 0}
	axisY    = mgl64.Vec3{0, 1, 0}
	axisZ    = mgl64.Vec3{0, 0, 1}
	axisNegZ = mgl64.Vec3{0, 0, -1}
)

// Basic is a position plus an orientation quaternion. Forward is -Z.
type Basic struct {
	position    mgl64.Vec3
	orientation mgl64.Quat
}

func NewBasic() *Basic {
	return &Basic{orientation: mgl64.QuatIdent()}
}

func NewBasicAt(position, euler mgl64.Vec3) *Basic {
	b := &Basic{position: position}
	b.SetRotation(euler)
	return b
}

func (b *Basic) Position() mgl64.Vec3 {
	return b.position
}

func (b *Basic) Rotation() mgl64.Vec3 {
	return eulerFromQuat(b.rot())
}

func (b *Basic) Orientation() mgl64.Quat {
	return b.rot()
}

func (b *Basic) Right() mgl64.Vec3 {
	return b.rot().Rotate(axisX)
}

func (b *Basic) Forward() mgl64.Vec3 {
	return b.rot().Rotate(axisNegZ)
}

func (b *Basic) Up() mgl64.Vec3 {
	return b.rot().Rotate(axisY)
}

// Move translates in world space.
func (b *Basic) Move(delta mgl64.Vec3) {
	b.position = b.position.Add(delta)
}

// Rotate turns around a world-space axis. A zero axis is ignored.
func (b *Basic) Rotate(axis mgl64.Vec3, angle float64) {
	if axis.Len() == 0 {
		return
	}
	q := mgl64.QuatRotate(angle, axis.Normalize())
	b.orientation = q.Mul(b.rot()).Normalize()
}

func (b *Basic) SetRotation(euler mgl64.Vec3) {
	b.orientation = quatFromEuler(euler)
}

func (b *Basic) SetPosition(p mgl64.Vec3) {
	b.position = p
}

// rot treats the zero quaternion of a zero Basic as identity.
func (b *Basic) rot() mgl64.Quat {
	if b.orientation == (mgl64.Quat{}) {
		return mgl64.QuatIdent()
	}
	return b.orientation
}

func quatFromEuler(euler mgl64.Vec3) mgl64.Quat {
	yaw := mgl64.QuatRotate(euler.Y(), axisY)
	pitch := mgl64.QuatRotate(euler.X(), axisX)
	roll := mgl64.QuatRotate(euler.Z(), axisZ)
	return yaw.Mul(pitch).Mul(roll).Normalize()
}

// eulerFromQuat inverts quatFromEuler (R = Ry * Rx * Rz).
func eulerFromQuat(q mgl64.Quat) mgl64.Vec3 {
	m := q.Mat4()
	sp := -m.At(1, 2)
	sp = math.Max(-1, math.Min(1, sp))
	pitch := math.Asin(sp)
	yaw := math.Atan2(m.At(0, 2), m.At(2, 2))
	roll := math.Atan2(m.At(1, 0), m.At(1, 1))
	return mgl64.Vec3{pitch, yaw, roll}
}
