// Package spoof watches for signal patterns characteristic of
// presentation attacks: photos, replays, and printed cutouts. The
// monitor runs unconditionally once calibration completes, independent
// of which challenge is active, and can unilaterally terminate a
// session as fraudulent.
package spoof

// Flag reasons, surfaced verbatim in the FAKE verdict.
const (
	ReasonStaticImage = "Static image detected"
	ReasonStaticEyes  = "Static eye pattern detected"
)

const (
	// motionWindowCapacity bounds the motion-energy history.
	motionWindowCapacity = 25
	// motionMinSamples is the history size required before the
	// static-image heuristic may fire.
	motionMinSamples = 20
	// staticImageGraceFrames and staticEyeGraceFrames arm the
	// respective heuristic. The monitor starts observing when
	// calibration completes, so both count from the calibration end.
	staticImageGraceFrames = 20
	staticEyeGraceFrames   = 40
)

// Config holds the empirically tuned trigger thresholds.
type Config struct {
	// MotionEnergyThreshold is the mean motion-energy floor below
	// which an unblinking face is flagged as a static image.
	MotionEnergyThreshold float64
	// EARStabilityEpsilon is the maximum drift between the smoothed
	// EAR and the calibrated threshold for the static-eye heuristic.
	EARStabilityEpsilon float64
}

// Sample is one post-calibration frame observation.
type Sample struct {
	// MotionEnergy is the mean absolute grayscale difference over
	// the face region, when the capture collaborator provides it.
	MotionEnergy *float64
	SmoothedEAR  float64
	EARThreshold float64
	BlinkCount   int
}

// Monitor accumulates motion and eye-stability statistics. Flagging is
// monotonic: once set it never clears, and further samples are ignored.
type Monitor struct {
	cfg    Config
	motion []float64
	frames int

	flagged bool
	reason  string
}

// NewMonitor builds a spoof monitor.
func NewMonitor(cfg Config) *Monitor {
	return &Monitor{
		cfg:    cfg,
		motion: make([]float64, 0, motionWindowCapacity),
	}
}

// Observe folds in one frame. A no-op once flagged.
func (m *Monitor) Observe(s Sample) {
	if m.flagged {
		return
	}
	m.frames++

	if s.MotionEnergy != nil {
		m.motion = append(m.motion, *s.MotionEnergy)
		if len(m.motion) > motionWindowCapacity {
			m.motion = m.motion[1:]
		}
	}

	if s.BlinkCount > 0 {
		return
	}

	// Static-image heuristic: an unblinking face whose pixels barely
	// change across the window is a photo or a paused replay.
	if len(m.motion) >= motionMinSamples &&
		m.frames > staticImageGraceFrames &&
		m.meanMotion() < m.cfg.MotionEnergyThreshold {
		m.flag(ReasonStaticImage)
		return
	}

	// Static-eye heuristic: an EAR pinned to the calibrated threshold
	// for this long means the eye region never meaningfully varies,
	// as with printed eye cutouts or looped video.
	if m.frames > staticEyeGraceFrames &&
		abs(s.SmoothedEAR-s.EARThreshold) < m.cfg.EARStabilityEpsilon {
		m.flag(ReasonStaticEyes)
	}
}

func (m *Monitor) flag(reason string) {
	m.flagged = true
	m.reason = reason
}

func (m *Monitor) meanMotion() float64 {
	if len(m.motion) == 0 {
		return 0
	}
	var sum float64
	for _, v := range m.motion {
		sum += v
	}
	return sum / float64(len(m.motion))
}

// Flagged returns whether the monitor fired, and the reason.
func (m *Monitor) Flagged() (bool, string) { return m.flagged, m.reason }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
