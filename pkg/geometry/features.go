package geometry

import "math"

// Bounds is an axis-aligned bounding box over a landmark set.
type Bounds struct {
	Min Point
	Max Point
}

// Width returns the horizontal extent of the box.
func (b Bounds) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the vertical extent of the box.
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

// Center returns the midpoint of the box.
func (b Bounds) Center() Point {
	return Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

// FaceBounds computes the bounding box over all landmark points.
// Returns the zero Bounds for an empty point set.
func FaceBounds(points []Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
	}
	return b
}

// HeadYaw extracts the left/right head rotation in degrees from the
// rotation block of a pose transform: atan2(m[0][2], m[0][0]).
// Returns 0 for a nil pose.
func HeadYaw(p *Pose) float64 {
	if p == nil {
		return 0
	}
	yaw := math.Atan2(p[0][2], p[0][0]) * 180 / math.Pi
	if math.IsNaN(yaw) {
		return 0
	}
	return yaw
}

// MouthGap returns the vertical lip separation scaled by face height.
// Used only when the frame carries no expression scores. Returns 0 when
// the lip landmarks are missing or the face has zero height.
func MouthGap(f *LandmarkFrame) float64 {
	if f == nil || len(f.Points) <= LowerLipIndex {
		return 0
	}
	height := FaceBounds(f.Points).Height()
	if height <= 0 {
		return 0
	}
	gap := math.Abs(f.Points[LowerLipIndex].Y-f.Points[UpperLipIndex].Y) / height
	if math.IsNaN(gap) || math.IsInf(gap, 0) {
		return 0
	}
	return gap
}
