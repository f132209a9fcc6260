// Package instance reads the dataset's JSON placement and element
// definitions and turns per-instance 4x4 transforms into the
// position + orientation arrays a point instancer consumes.
package instance

import "github.com/go-gl/mathgl/mgl64"

// Mat4 builds a column-major mgl64 matrix from the 16-float linear
// layout the dataset stores. The dataset writes row-major matrices that
// act on row vectors; loading them column-major yields the equivalent
// column-vector matrix, so no transpose is needed.
func Mat4(m [16]float64) mgl64.Mat4 {
	return mgl64.Mat4(m)
}

// Decompose splits a rigid transform into its translation and a unit
// rotation quaternion. Scale and shear components are not separated
// out; non-rigid inputs bleed into the quaternion.
func Decompose(m [16]float64) (mgl64.Vec3, mgl64.Quat) {
	mat := Mat4(m)
	pos := mat.Col(3).Vec3()
	rot := mgl64.Mat4ToQuat(mat).Normalize()
	return pos, rot
}
