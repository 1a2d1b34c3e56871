package common

import "math"

// BoundingBox is an axis-aligned bounding box in local or world space.
// A zero-value BoundingBox is considered empty.
type BoundingBox struct {
	// Min is the minimum corner of the box.
	Min [3]float32
	// Max is the maximum corner of the box.
	Max [3]float32
	// Valid reports whether the box encloses at least one point.
	Valid bool
}

// NewBoundingBox builds a BoundingBox from glTF-style min/max slices. Slices shorter than
// three components yield an empty box.
//
// Parameters:
//   - min: the minimum corner components
//   - max: the maximum corner components
//
// Returns:
//   - BoundingBox: the box, or an empty box if the input is incomplete
func NewBoundingBox(min, max []float32) BoundingBox {
	if len(min) < 3 || len(max) < 3 {
		return BoundingBox{}
	}
	return BoundingBox{
		Min:   [3]float32{min[0], min[1], min[2]},
		Max:   [3]float32{max[0], max[1], max[2]},
		Valid: true,
	}
}

// Union returns the smallest box enclosing both b and other.
//
// Parameters:
//   - other: the box to merge with
//
// Returns:
//   - BoundingBox: the merged box
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	if !other.Valid {
		return b
	}
	if !b.Valid {
		return other
	}
	out := b
	for i := 0; i < 3; i++ {
		out.Min[i] = float32(math.Min(float64(b.Min[i]), float64(other.Min[i])))
		out.Max[i] = float32(math.Max(float64(b.Max[i]), float64(other.Max[i])))
	}
	return out
}

// Scaled returns the box scaled component-wise about the origin. Negative scale factors
// swap the corresponding min/max components so the result stays well-formed.
//
// Parameters:
//   - s: the scale factors along each axis
//
// Returns:
//   - BoundingBox: the scaled box
func (b BoundingBox) Scaled(s [3]float32) BoundingBox {
	if !b.Valid {
		return b
	}
	out := b
	for i := 0; i < 3; i++ {
		lo, hi := b.Min[i]*s[i], b.Max[i]*s[i]
		if lo > hi {
			lo, hi = hi, lo
		}
		out.Min[i], out.Max[i] = lo, hi
	}
	return out
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) * 0.5,
		(b.Min[1] + b.Max[1]) * 0.5,
		(b.Min[2] + b.Max[2]) * 0.5,
	}
}

// Radius returns the radius of the sphere enclosing the box, measured from its center.
func (b BoundingBox) Radius() float32 {
	if !b.Valid {
		return 0
	}
	dx := b.Max[0] - b.Min[0]
	dy := b.Max[1] - b.Min[1]
	dz := b.Max[2] - b.Min[2]
	return float32(math.Sqrt(float64(dx*dx+dy*dy+dz*dz))) * 0.5
}

// UnitScale is the identity scaling vector.
var UnitScale = [3]float32{1, 1, 1}
