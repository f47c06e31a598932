// Package challenge implements the liveness challenge-response engine:
// per-user calibration, one stateful detector per physical action, and
// the randomized challenge sequencer.
package challenge

// Action identifies one physical liveness challenge.
type Action string

const (
	ActionBlink       Action = "blink"
	ActionTurnLeft    Action = "turn-left"
	ActionTurnRight   Action = "turn-right"
	ActionMouthOpen   Action = "mouth-open"
	ActionLeanForward Action = "lean-forward"
)

// Actions is the fixed challenge set, in canonical order.
var Actions = []Action{
	ActionBlink,
	ActionTurnLeft,
	ActionTurnRight,
	ActionMouthOpen,
	ActionLeanForward,
}

var actionLabels = map[Action]string{
	ActionBlink:       "Blink twice",
	ActionTurnLeft:    "Turn your head left",
	ActionTurnRight:   "Turn your head right",
	ActionMouthOpen:   "Open your mouth",
	ActionLeanForward: "Lean toward the camera",
}

// Label returns the human-readable prompt for the action.
func (a Action) Label() string {
	if label, ok := actionLabels[a]; ok {
		return label
	}
	return string(a)
}

// Signals carries the per-frame features a detector consumes. It is
// derived once per frame by the session controller from the extracted
// geometry; optional signals carry a presence flag.
type Signals struct {
	SmoothedEAR float64

	Yaw    float64
	HasYaw bool

	MouthScore    float64
	HasMouthScore bool
	MouthGap      float64

	FaceWidth  float64
	FaceHeight float64
}

// Detector consumes per-frame signals for one challenge action and
// reports satisfaction plus fractional progress. Implementations own
// their mutable state exclusively; Reset is called each time the
// associated challenge becomes the active one.
type Detector interface {
	Action() Action
	Observe(sig Signals)
	Satisfied() bool
	Progress() float64
	Reset()
}

func clampProgress(current, required int) float64 {
	if required <= 0 {
		return 1
	}
	p := float64(current) / float64(required)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
