// Package session orchestrates one liveness verification attempt. The
// controller feeds each incoming landmark frame through calibration,
// the active challenge detector, and the spoof monitor, enforces the
// wall-clock deadline, and resolves a terminal verdict.
package session

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/presenceid/liveguard/pkg/challenge"
	"github.com/presenceid/liveguard/pkg/config"
	"github.com/presenceid/liveguard/pkg/geometry"
	"github.com/presenceid/liveguard/pkg/logging"
	"github.com/presenceid/liveguard/pkg/spoof"
)

// Telemetry is an injectable debug hook invoked at defined decision
// points. It must not block; a nil hook disables telemetry.
type Telemetry func(point string, fields map[string]interface{})

// Option customizes a Controller.
type Option func(*Controller)

// WithRandSource fixes the randomness behind the challenge permutation.
func WithRandSource(src rand.Source) Option {
	return func(c *Controller) { c.rng = rand.New(src) }
}

// WithClock overrides the wall clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithTelemetry installs the debug telemetry hook.
func WithTelemetry(t Telemetry) Option {
	return func(c *Controller) { c.telemetry = t }
}

// WithReleaser registers a hook that releases the externally held
// capture resource. It runs exactly once, on whichever terminal path
// (complete, spoofed, timed out, stopped) comes first.
func WithReleaser(release func()) Option {
	return func(c *Controller) { c.releaser = release }
}

// Controller owns all mutable state of one verification attempt. It is
// not safe for concurrent use: exactly one caller invokes Step, once
// per available frame.
type Controller struct {
	cfg *config.Config
	log *logrus.Entry

	state      State
	calibrator *challenge.Calibrator
	blink      *challenge.BlinkDetector
	detectors  map[challenge.Action]challenge.Detector
	seq        *challenge.Sequencer
	monitor    *spoof.Monitor

	rng       *rand.Rand
	clock     func() time.Time
	startedAt time.Time
	timeLimit time.Duration

	lastTimestamp float64
	seenFrame     bool

	verdict   *Verdict
	telemetry Telemetry
	releaser  func()
	released  bool
}

// New constructs a fresh, independent session with no carryover from
// any prior one.
func New(cfg *config.Config, opts ...Option) *Controller {
	c := &Controller{
		cfg:   cfg,
		log:   logging.Component("session"),
		state: StateCalibrating,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	c.calibrator = challenge.NewCalibrator(
		cfg.Calibration.FrameCount,
		cfg.Calibration.EARSmoothingAlpha,
		cfg.Calibration.FallbackEARThreshold,
	)
	c.blink = challenge.NewBlinkDetector(
		cfg.Challenge.MinClosedFramesForBlink,
		cfg.Challenge.MinOpenFramesAfterBlink,
		cfg.Challenge.RequiredBlinkCount,
	)
	c.detectors = map[challenge.Action]challenge.Detector{
		challenge.ActionBlink: c.blink,
		challenge.ActionTurnLeft: challenge.NewHeadTurnDetector(
			challenge.TurnLeft,
			cfg.Challenge.TurnAngleThresholdDegrees,
			cfg.Challenge.TurnPersistenceFrames,
			cfg.Challenge.HeadPoseCalibrationFrames,
		),
		challenge.ActionTurnRight: challenge.NewHeadTurnDetector(
			challenge.TurnRight,
			cfg.Challenge.TurnAngleThresholdDegrees,
			cfg.Challenge.TurnPersistenceFrames,
			cfg.Challenge.HeadPoseCalibrationFrames,
		),
		challenge.ActionMouthOpen:   challenge.NewMouthOpenDetector(),
		challenge.ActionLeanForward: challenge.NewForwardLeanDetector(),
	}
	c.seq = challenge.NewSequencer(c.rng)
	c.monitor = spoof.NewMonitor(spoof.Config{
		MotionEnergyThreshold: cfg.Spoof.MotionEnergyThreshold,
		EARStabilityEpsilon:   cfg.Spoof.EARStabilityEpsilon,
	})
	c.startedAt = c.clock()
	c.timeLimit = time.Duration(cfg.Session.TimeLimitSeconds) * time.Second

	return c
}

// State returns the current session state.
func (c *Controller) State() State { return c.state }

// Verdict returns the terminal verdict, or nil while unresolved.
// Explicitly stopped sessions resolve no verdict.
func (c *Controller) Verdict() *Verdict { return c.verdict }

// Sequence returns the ordered challenge list with completion flags.
func (c *Controller) Sequence() []challenge.Step { return c.seq.Steps() }

// Step processes one landmark frame and returns the output events it
// produced. Terminal sessions and duplicate-timestamp frames produce
// nothing.
func (c *Controller) Step(frame *geometry.LandmarkFrame) []Event {
	if c.state.Terminal() {
		return nil
	}
	if frame != nil {
		if c.seenFrame && frame.Timestamp == c.lastTimestamp {
			return nil
		}
		c.lastTimestamp = frame.Timestamp
		c.seenFrame = true
	}

	if c.clock().Sub(c.startedAt) > c.timeLimit {
		return c.terminate(StateTimeout,
			Verdict{Outcome: VerdictTimeout},
			SeverityError, "Verification timed out")
	}

	// No face is an expected transient condition, never an error.
	if !frame.HasFace() {
		return []Event{statusEvent(SeverityWarn, "No face detected - center your face in the frame")}
	}

	rawEAR := geometry.AverageEAR(frame)

	if !c.calibrator.Done() {
		return c.calibrate(rawEAR)
	}

	sig := c.extractSignals(frame, c.calibrator.Smooth(rawEAR))

	// The blink detector always observes so the spoof monitor sees a
	// session-wide blink count regardless of the active challenge.
	c.blink.Observe(sig)

	active := c.seq.Active()
	detector := c.detectors[active.Action]
	if active.Action != challenge.ActionBlink {
		detector.Observe(sig)
	}

	c.monitor.Observe(spoof.Sample{
		MotionEnergy: frame.MotionEnergy,
		SmoothedEAR:  sig.SmoothedEAR,
		EARThreshold: c.calibrator.Threshold(),
		BlinkCount:   c.blink.Count(),
	})
	if flagged, reason := c.monitor.Flagged(); flagged {
		c.emit("spoof.flagged", map[string]interface{}{"reason": reason})
		return c.terminate(StateFake,
			Verdict{Outcome: VerdictFake, Reason: reason},
			SeverityError, reason)
	}

	var events []Event
	if c.seq.Advance(detector.Satisfied()) {
		c.emit("challenge.completed", map[string]interface{}{"action": string(active.Action)})
		c.log.Infof("Challenge completed: %s", active.Action)

		if c.seq.Complete() {
			return append(events, c.terminate(StateComplete,
				Verdict{Outcome: VerdictVerified},
				SeverityInfo, "Liveness verified")...)
		}

		next := c.seq.Active()
		c.detectors[next.Action].Reset()
		events = append(events, statusEvent(SeverityInfo, next.Label))
	}

	return append(events, challengesEvent(c.challengeViews()))
}

// calibrate feeds one calibration frame and reports progress. On the
// final frame the calibrated threshold is installed and the first
// challenge becomes active.
func (c *Controller) calibrate(rawEAR float64) []Event {
	c.calibrator.Observe(rawEAR)
	if !c.calibrator.Done() {
		msg := fmt.Sprintf("Calibrating... %d%%", int(c.calibrator.Progress()*100))
		return []Event{statusEvent(SeverityInfo, msg)}
	}

	c.blink.SetThreshold(c.calibrator.Threshold())
	c.state = StateChallenge

	first := c.seq.Active()
	c.detectors[first.Action].Reset()

	c.emit("calibration.done", map[string]interface{}{"threshold": c.calibrator.Threshold()})
	c.log.Infof("Calibration complete, EAR threshold %.3f", c.calibrator.Threshold())

	return []Event{
		statusEvent(SeverityInfo, first.Label),
		challengesEvent(c.challengeViews()),
	}
}

func (c *Controller) extractSignals(frame *geometry.LandmarkFrame, smoothedEAR float64) challenge.Signals {
	bounds := geometry.FaceBounds(frame.Points)
	sig := challenge.Signals{
		SmoothedEAR: smoothedEAR,
		MouthGap:    geometry.MouthGap(frame),
		FaceWidth:   bounds.Width(),
		FaceHeight:  bounds.Height(),
	}
	if frame.Pose != nil {
		sig.Yaw = geometry.HeadYaw(frame.Pose)
		sig.HasYaw = true
	}
	if score, ok := frame.ExpressionScore(geometry.ExpressionJawOpen); ok {
		sig.MouthScore = score
		sig.HasMouthScore = true
	}
	return sig
}

func (c *Controller) challengeViews() []ChallengeView {
	steps := c.seq.Steps()
	views := make([]ChallengeView, len(steps))
	for i, step := range steps {
		views[i] = ChallengeView{Label: step.Label, Done: step.Done}
		switch {
		case step.Done:
			views[i].Progress = 100
		case i == c.seq.Index() && !c.seq.Complete():
			views[i].Active = true
			views[i].Progress = int(c.detectors[step.Action].Progress() * 100)
		}
	}
	return views
}

func (c *Controller) terminate(state State, verdict Verdict, severity Severity, message string) []Event {
	c.state = state
	c.verdict = &verdict
	c.release()

	c.emit("session.verdict", map[string]interface{}{
		"outcome": string(verdict.Outcome),
		"reason":  verdict.Reason,
	})
	if state == StateComplete {
		c.log.Infof("Session resolved: %s", verdict.Outcome)
	} else {
		c.log.Warnf("Session resolved: %s (%s)", verdict.Outcome, message)
	}

	return []Event{
		statusEvent(severity, message),
		verdictEvent(verdict),
	}
}

// Stop halts further frame processing. Idempotent: repeated calls, or
// calls after a terminal state, release nothing further.
func (c *Controller) Stop() {
	c.release()
	if !c.state.Terminal() {
		c.state = StateStopped
		c.log.Debugf("Session stopped before a verdict")
	}
}

// release runs the capture-resource releaser exactly once across all
// terminal paths.
func (c *Controller) release() {
	if c.released {
		return
	}
	c.released = true
	if c.releaser != nil {
		c.releaser()
	}
}

func (c *Controller) emit(point string, fields map[string]interface{}) {
	if c.telemetry != nil {
		c.telemetry(point, fields)
	}
}
