// Package geometry derives scalar facial features from raw landmark frames.
// All functions are pure: malformed or empty input yields zero-value
// sentinels, never a panic or an error.
package geometry

import "math"

// Landmark indices following the MediaPipe FaceLandmarker convention.
// Each eye contour is the 6-point subset used for the eye aspect ratio,
// ordered corner, upper-1, upper-2, corner, lower-2, lower-1.
var (
	LeftEyeIndices  = [6]int{33, 160, 158, 133, 153, 144}
	RightEyeIndices = [6]int{362, 385, 387, 263, 373, 380}
)

// Lip landmarks used for the geometric mouth gap fallback.
const (
	UpperLipIndex = 13
	LowerLipIndex = 14
)

// ExpressionJawOpen is the expression score key for mouth opening.
const ExpressionJawOpen = "jawOpen"

// Point is a landmark position in normalized [0,1] image coordinates.
// Z carries relative depth when the inference collaborator provides it.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Pose is a row-major head-pose transform. Only the upper-left 3x3
// rotation block is inspected, so 4x4 transforms work unchanged.
type Pose [4][4]float64

// PoseFromFlat builds a Pose from a flat row-major 16-element matrix,
// the layout produced by MediaPipe facial transformation matrixes.
// Returns nil if vals has the wrong length.
func PoseFromFlat(vals []float64) *Pose {
	if len(vals) != 16 {
		return nil
	}
	var p Pose
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			p[r][c] = vals[r*4+c]
		}
	}
	return &p
}

// LandmarkFrame is one timestamped set of facial geometry signals from
// the external inference collaborator. Points empty means no face was
// detected, which is a valid non-error result. Expressions and Pose are
// optional; MotionEnergy is an optional precomputed mean absolute
// grayscale difference over the face region supplied by the capture
// collaborator.
type LandmarkFrame struct {
	Points       []Point            `json:"points"`
	Expressions  map[string]float64 `json:"expressions,omitempty"`
	Pose         *Pose              `json:"-"`
	MotionEnergy *float64           `json:"motionEnergy,omitempty"`
	Timestamp    float64            `json:"timestamp"`
}

// HasFace reports whether the frame contains a detected face.
func (f *LandmarkFrame) HasFace() bool {
	return f != nil && len(f.Points) > 0
}

// ExpressionScore returns the named expression score and whether the
// frame carries one.
func (f *LandmarkFrame) ExpressionScore(name string) (float64, bool) {
	if f == nil || f.Expressions == nil {
		return 0, false
	}
	score, ok := f.Expressions[name]
	return score, ok
}

func distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// EyeAspectRatio computes (|p2-p6| + |p3-p5|) / (2*|p1-p4|) over a
// 6-point eye contour. Returns 0 when the horizontal span is zero.
func EyeAspectRatio(eye [6]Point) float64 {
	vertical := distance(eye[1], eye[5]) + distance(eye[2], eye[4])
	horizontal := distance(eye[0], eye[3])
	if horizontal == 0 {
		return 0
	}
	ear := vertical / (2 * horizontal)
	if math.IsNaN(ear) || math.IsInf(ear, 0) {
		return 0
	}
	return ear
}

// AverageEAR extracts both eye contours from the frame and averages
// their aspect ratios. Returns 0 if the frame lacks the eye landmarks.
func AverageEAR(f *LandmarkFrame) float64 {
	left, ok := eyeSubset(f, LeftEyeIndices)
	if !ok {
		return 0
	}
	right, ok := eyeSubset(f, RightEyeIndices)
	if !ok {
		return 0
	}
	return (EyeAspectRatio(left) + EyeAspectRatio(right)) / 2
}

func eyeSubset(f *LandmarkFrame, indices [6]int) ([6]Point, bool) {
	var eye [6]Point
	if f == nil {
		return eye, false
	}
	for i, idx := range indices {
		if idx >= len(f.Points) {
			return eye, false
		}
		eye[i] = f.Points[idx]
	}
	return eye, true
}
