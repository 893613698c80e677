package geom

import (
	"strconv"
	"strings"
)

// Transform is an affine map [a, b, c, d, e, f]:
//
//	x' = a·x + c·y + e
//	y' = b·x + d·y + f
type Transform [6]float64

// Identity is the transform that leaves points unchanged.
var Identity = Transform{1, 0, 0, 1, 0, 0}

// orthogonalPatterns lists the linear parts (a, b, c, d) of the eight
// rotations/reflections by multiples of 90°.
var orthogonalPatterns = [8][4]float64{
	{1, 0, 0, 1},   // identity
	{0, 1, -1, 0},  // rotate 90° clockwise
	{-1, 0, 0, -1}, // rotate 180°
	{0, -1, 1, 0},  // rotate 270° clockwise
	{1, 0, 0, -1},  // flip y
	{-1, 0, 0, 1},  // flip x
	{0, 1, 1, 0},   // transpose
	{0, -1, -1, 0}, // anti-transpose
}

// Translate returns the pure translation by (x, y).
func Translate(x, y float64) Transform {
	return Transform{1, 0, 0, 1, x, y}
}

// Apply maps p through the transform.
func (t Transform) Apply(p Vec) Vec {
	return Vec{
		X: t[0]*p.X + t[2]*p.Y + t[4],
		Y: t[1]*p.X + t[3]*p.Y + t[5],
	}
}

// ApplyVector maps a direction vector through the linear part only.
func (t Transform) ApplyVector(v Vec) Vec {
	return Vec{
		X: t[0]*v.X + t[2]*v.Y,
		Y: t[1]*v.X + t[3]*v.Y,
	}
}

// ApplyRect returns the bounds of the transformed corners of r.
func (t Transform) ApplyRect(r Rect) Rect {
	c := r.Corners()
	return RectFromPoints(t.Apply(c[0]), t.Apply(c[1]), t.Apply(c[2]), t.Apply(c[3]))
}

// Determinant of the linear part.
func (t Transform) Determinant() float64 {
	return t[0]*t[3] - t[2]*t[1]
}

// Inverse returns the inverse transform, or false if t is singular.
func (t Transform) Inverse() (Transform, bool) {
	det := t.Determinant()
	if det == 0 {
		return Transform{}, false
	}
	a := t[3] / det
	b := -t[1] / det
	c := -t[2] / det
	d := t[0] / det
	return Transform{
		a, b, c, d,
		-(a*t[4] + c*t[5]),
		-(b*t[4] + d*t[5]),
	}, true
}

// Orthogonal reports whether the linear part is one of the eight
// 90° rotations/reflections.
func (t Transform) Orthogonal() bool {
	for _, p := range orthogonalPatterns {
		if t[0] == p[0] && t[1] == p[1] && t[2] == p[2] && t[3] == p[3] {
			return true
		}
	}
	return false
}

// String formats the transform as "[a,b,c,d,e,f]". Used inside node ids,
// so the output must be stable for equal transforms.
func (t Transform) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range t {
		if i > 0 {
			sb.WriteByte(',')
		}
		if v == 0 {
			v = 0 // drop negative zero
		}
		sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	sb.WriteByte(']')
	return sb.String()
}
