// Package transform holds the engine transform contract and a mathgl-backed
// implementation of it.
package transform

import "github.com/go-gl/mathgl/mgl64"

// Transform is what the engine exposes for a game object. Rotation is Euler
// angles in radians: X pitch, Y yaw, Z roll, applied yaw then pitch then roll.
type Transform interface {
	Position() mgl64.Vec3
	Rotation() mgl64.Vec3

	Right() mgl64.Vec3
	Forward() mgl64.Vec3
	Up() mgl64.Vec3

	Move(delta mgl64.Vec3)
	Rotate(axis mgl64.Vec3, angle float64)
	SetRotation(euler mgl64.Vec3)
	SetPosition(p mgl64.Vec3)
}
