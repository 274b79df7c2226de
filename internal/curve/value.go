package curve

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Value is anything a curve can interpolate.
type Value[T any] interface {
	Add(T) T
	Sub(T) T
	Scale(float64) T
}

// Scalar is a float channel value.
type Scalar float64

func (s Scalar) Add(o Scalar) Scalar    { return s + o }
func (s Scalar) Sub(o Scalar) Scalar    { return s - o }
func (s Scalar) Scale(f float64) Scalar { return Scalar(float64(s) * f) }
func (s Scalar) Float() float64         { return float64(s) }

// Vector is a 3D vector. Rotations reuse it as pitch/yaw/roll in degrees.
type Vector struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vector) Add(o Vector) Vector    { return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vector) Sub(o Vector) Vector    { return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vector) Scale(f float64) Vector { return Vector{v.X * f, v.Y * f, v.Z * f} }

// Len returns the euclidean length of v.
func (v Vector) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Component returns the axis value for index 0..2.
func (v Vector) Component(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Color is a linear RGBA color.
type Color struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
	A float64 `yaml:"a"`
}

func (c Color) Add(o Color) Color     { return Color{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A} }
func (c Color) Sub(o Color) Color     { return Color{c.R - o.R, c.G - o.G, c.B - o.B, c.A - o.A} }
func (c Color) Scale(f float64) Color { return Color{c.R * f, c.G * f, c.B * f, c.A * f} }

// Transform is a location plus a rotation (degrees).
type Transform struct {
	Position Vector `yaml:"position"`
	Rotation Vector `yaml:"rotation"`
}

func (t Transform) Add(o Transform) Transform {
	return Transform{t.Position.Add(o.Position), t.Rotation.Add(o.Rotation)}
}

func (t Transform) Sub(o Transform) Transform {
	return Transform{t.Position.Sub(o.Position), t.Rotation.Sub(o.Rotation)}
}

func (t Transform) Scale(f float64) Transform {
	return Transform{t.Position.Scale(f), t.Rotation.Scale(f)}
}

// RotationMatrix builds a row-major rotation from pitch (Y), yaw (Z) and roll (X) degrees.
func RotationMatrix(rot Vector) f64.Mat3 {
	p, y, r := rad(rot.X), rad(rot.Y), rad(rot.Z)
	sp, cp := math.Sin(p), math.Cos(p)
	sy, cy := math.Sin(y), math.Cos(y)
	sr, cr := math.Sin(r), math.Cos(r)

	// Rz(yaw) * Ry(pitch) * Rx(roll)
	return f64.Mat3{
		cy * cp, cy*sp*sr - sy*cr, cy*sp*cr + sy*sr,
		sy * cp, sy*sp*sr + cy*cr, sy*sp*cr - cy*sr,
		-sp, cp * sr, cp * cr,
	}
}

// Rotate applies m to v.
func Rotate(m f64.Mat3, v Vector) Vector {
	return Vector{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Transpose returns the inverse of a rotation matrix.
func Transpose(m f64.Mat3) f64.Mat3 {
	return f64.Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Compose places local in the space of parent. Rotations add component-wise.
func Compose(parent, local Transform) Transform {
	return Transform{
		Position: parent.Position.Add(Rotate(RotationMatrix(parent.Rotation), local.Position)),
		Rotation: parent.Rotation.Add(local.Rotation),
	}
}

// Relative is the inverse of Compose: it expresses world in the space of parent.
func Relative(parent, world Transform) Transform {
	inv := Transpose(RotationMatrix(parent.Rotation))
	return Transform{
		Position: Rotate(inv, world.Position.Sub(parent.Position)),
		Rotation: world.Rotation.Sub(parent.Rotation),
	}
}

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}
