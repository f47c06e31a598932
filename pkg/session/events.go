package session

// State is the session's position in its global state machine.
type State string

const (
	StateCalibrating State = "CALIBRATING"
	StateChallenge   State = "CHALLENGE_ACTIVE"
	StateComplete    State = "COMPLETE"
	StateFake        State = "FAKE"
	StateTimeout     State = "TIMEOUT"
	StateStopped     State = "STOPPED"
)

// Terminal reports whether no further frame processing can occur.
func (s State) Terminal() bool {
	switch s {
	case StateComplete, StateFake, StateTimeout, StateStopped:
		return true
	}
	return false
}

// Severity classifies a status message for the rendering collaborator.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Outcome is the terminal result of a verification attempt.
type Outcome string

const (
	VerdictVerified Outcome = "VERIFIED"
	VerdictFake     Outcome = "FAKE"
	VerdictTimeout  Outcome = "TIMEOUT"
)

// Verdict is the terminal result plus, for FAKE, the trigger reason.
type Verdict struct {
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}

// Status is a transient prompt for the rendering collaborator.
type Status struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// ChallengeView is one entry of the ordered challenge list render.
// Progress is a percentage in [0, 100].
type ChallengeView struct {
	Label    string `json:"label"`
	Done     bool   `json:"done"`
	Active   bool   `json:"active"`
	Progress int    `json:"progress"`
}

// EventType discriminates the output event union.
type EventType string

const (
	EventStatus     EventType = "status"
	EventChallenges EventType = "challenges"
	EventVerdict    EventType = "verdict"
)

// Event is one output message to the rendering collaborator. Exactly
// one of the payload fields is set, selected by Type.
type Event struct {
	Type       EventType       `json:"type"`
	Status     *Status         `json:"status,omitempty"`
	Challenges []ChallengeView `json:"challenges,omitempty"`
	Verdict    *Verdict        `json:"verdict,omitempty"`
}

func statusEvent(severity Severity, message string) Event {
	return Event{Type: EventStatus, Status: &Status{Severity: severity, Message: message}}
}

func challengesEvent(views []ChallengeView) Event {
	return Event{Type: EventChallenges, Challenges: views}
}

func verdictEvent(v Verdict) Event {
	return Event{Type: EventVerdict, Verdict: &v}
}
