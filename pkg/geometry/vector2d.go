package geometry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Epsilon is the tolerance used by every approximate comparison in the package.
// Meshes authored in screen units (hundreds to thousands) stay well above it.
const (
	Epsilon = 1e-8
)

var (
	// ErrDivisionByZero is returned by Div when a divisor component is zero.
	ErrDivisionByZero = errors.New("vector cannot be divided by zero")
	// ErrZeroLength is returned by angle computations on a zero-length vector.
	ErrZeroLength = errors.New("angle is undefined for a zero-length vector")
)

// Vector2D represents a 2D vector or point in cartesian space.
// Fields are public so literals stay short: v := Vector2D{1, 2}
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewVector creates a new Vector2D.
func NewVector(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// Splat returns a vector with both components set to s.
// It is the scalar form of every componentwise operation: v.Add(Splat(2)).
func Splat(s float64) Vector2D {
	return Vector2D{X: s, Y: s}
}

// IsClose reports whether a and b differ by at most Epsilon.
func IsClose(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

// Clip clamps v to the closed interval [lo, hi].
func Clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ---------------------------------------------------------------------
// Stringer Interface
// ---------------------------------------------------------------------

// String implements the fmt.Stringer interface, e.g. "{ x: 5, y: 6 }".
func (v Vector2D) String() string {
	return fmt.Sprintf("{ x: %s, y: %s }", formatCoord(v.X), formatCoord(v.Y))
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// Value receivers returning new values keep Vector2D immutable.
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{v.X + other.X, v.Y + other.Y}
}

// Sub subtracts the other vector from the current vector.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{v.X - other.X, v.Y - other.Y}
}

// Mul multiplies the two vectors component by component.
func (v Vector2D) Mul(other Vector2D) Vector2D {
	return Vector2D{v.X * other.X, v.Y * other.Y}
}

// Scale scales the vector by a scalar value.
func (v Vector2D) Scale(scalar float64) Vector2D {
	return Vector2D{v.X * scalar, v.Y * scalar}
}

// Div divides the vector by other component by component.
// If a component of other is zero the result holds +Inf and ErrDivisionByZero is returned.
func (v Vector2D) Div(other Vector2D) (Vector2D, error) {
	if other.X == 0 || other.Y == 0 {
		return Vector2D{math.Inf(1), math.Inf(1)}, ErrDivisionByZero
	}
	return Vector2D{v.X / other.X, v.Y / other.Y}, nil
}

// ---------------------------------------------------------------------
// Vector2D Products
// ---------------------------------------------------------------------

// Dot calculates the dot product of two vectors.
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross calculates the 2D scalar cross product (z-component of 3D cross product).
// Positive when other is counterclockwise from v.
func (v Vector2D) Cross(other Vector2D) float64 {
	return v.X*other.Y - v.Y*other.X
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector.
// This is faster than Len() as it avoids the square root. Use for comparisons.
func (v Vector2D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Len calculates the magnitude (length) of the vector.
func (v Vector2D) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns a unit vector in the same direction.
// Returns a zero vector if the length is effectively zero.
func (v Vector2D) Normalize() Vector2D {
	l := v.Len()
	if l < Epsilon {
		return Vector2D{0, 0}
	}
	return v.Scale(1 / l)
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vector2D) DistanceTo(other Vector2D) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector2D) DistanceSquaredTo(other Vector2D) float64 {
	return v.Sub(other).LenSqr()
}

// Heading returns the angle (in radians) of the vector relative to the X-axis.
// Range: [-Pi, Pi]
func (v Vector2D) Heading() float64 {
	return math.Atan2(v.Y, v.X)
}

// Angle returns the unsigned angle between v and other, in [0, Pi].
func (v Vector2D) Angle(other Vector2D) (float64, error) {
	lv, lo := v.Len(), other.Len()
	if lv < Epsilon || lo < Epsilon {
		return 0, ErrZeroLength
	}
	// rounding can push the ratio slightly outside [-1, 1]
	return math.Acos(Clip(v.Dot(other)/(lv*lo), -1, 1)), nil
}

// CounterclockwiseAngle returns the angle needed to rotate v counterclockwise onto other, in [0, 2*Pi).
func (v Vector2D) CounterclockwiseAngle(other Vector2D) (float64, error) {
	angle, err := v.Angle(other)
	if err != nil {
		return 0, err
	}
	if v.Cross(other) >= 0 {
		return angle, nil
	}
	return 2*math.Pi - angle, nil
}

// Lerp (Linear Interpolate) calculates a point between v and target based on t [0, 1].
func (v Vector2D) Lerp(target Vector2D, t float64) Vector2D {
	return v.Add(target.Sub(v).Scale(t))
}

// Project projects vector v onto vector on.
func (v Vector2D) Project(on Vector2D) Vector2D {
	scalar := v.Dot(on) / on.LenSqr()
	return on.Scale(scalar)
}

// ---------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector2D) Eq(other Vector2D) bool {
	return IsClose(v.X, other.X) && IsClose(v.Y, other.Y)
}

// IsFinite reports whether both coordinates are neither NaN nor infinite.
func (v Vector2D) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
