package gateway

import "github.com/presenceid/liveguard/pkg/geometry"

// Inbound message types accepted from the inference collaborator.
const (
	msgTypeFrame = "frame"
	msgTypeStop  = "stop"
)

// Outbound control message types. Session output events marshal with
// their own type discriminators (status, challenges, verdict).
const (
	msgTypeSession = "session"
	msgTypeRelease = "release"
)

// inboundMessage is one client message on the verification socket.
type inboundMessage struct {
	Type  string        `json:"type"`
	Frame *frameMessage `json:"frame,omitempty"`
}

// frameMessage is the wire form of one landmark frame. Pose is the
// flat row-major 4x4 facial transformation matrix when available.
type frameMessage struct {
	Timestamp    float64            `json:"timestamp"`
	Points       []geometry.Point   `json:"points"`
	Expressions  map[string]float64 `json:"expressions,omitempty"`
	Pose         []float64          `json:"pose,omitempty"`
	MotionEnergy *float64           `json:"motionEnergy,omitempty"`
}

func (m *frameMessage) toLandmarkFrame() *geometry.LandmarkFrame {
	return &geometry.LandmarkFrame{
		Points:       m.Points,
		Expressions:  m.Expressions,
		Pose:         geometry.PoseFromFlat(m.Pose),
		MotionEnergy: m.MotionEnergy,
		Timestamp:    m.Timestamp,
	}
}

// sessionMessage greets a new connection with its session handle.
type sessionMessage struct {
	Type             string `json:"type"`
	SessionID        string `json:"sessionId"`
	TimeLimitSeconds int    `json:"timeLimitSeconds"`
}

// releaseMessage instructs the client to release its capture device.
// Sent exactly once per session, on whichever terminal path comes first.
type releaseMessage struct {
	Type string `json:"type"`
}
