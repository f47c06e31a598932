package challenge

// BlinkDetector counts closed-then-reopened eye cycles against the
// calibrated closure threshold. It runs for the whole session so the
// spoof monitor always sees a live blink count; the blink challenge
// itself scores only blinks that happen after it became active.
type BlinkDetector struct {
	threshold float64
	minClosed int
	minOpen   int
	required  int

	closedFrames int
	openFrames   int
	latched      bool
	blinks       int

	// blinks counted before the challenge was (re)activated.
	baseline int
}

// NewBlinkDetector builds a blink detector. The closure threshold is
// supplied later via SetThreshold once calibration finishes.
func NewBlinkDetector(minClosed, minOpen, required int) *BlinkDetector {
	return &BlinkDetector{
		minClosed: minClosed,
		minOpen:   minOpen,
		required:  required,
	}
}

// SetThreshold installs the calibrated eye-closure threshold.
func (d *BlinkDetector) SetThreshold(threshold float64) { d.threshold = threshold }

// Action implements Detector.
func (d *BlinkDetector) Action() Action { return ActionBlink }

// Observe scores one frame. The latch guarantees a single sustained
// closure counts exactly once: a new blink can only register after the
// eye has stayed open for minOpen frames.
func (d *BlinkDetector) Observe(sig Signals) {
	if sig.SmoothedEAR < d.threshold {
		d.closedFrames++
		d.openFrames = 0
		return
	}
	if d.closedFrames >= d.minClosed && !d.latched {
		d.blinks++
		d.latched = true
	}
	d.closedFrames = 0
	d.openFrames++
	if d.openFrames >= d.minOpen {
		d.latched = false
	}
}

// Satisfied reports whether enough blinks occurred since activation.
func (d *BlinkDetector) Satisfied() bool {
	return d.blinks-d.baseline >= d.required
}

// Progress implements Detector.
func (d *BlinkDetector) Progress() float64 {
	return clampProgress(d.blinks-d.baseline, d.required)
}

// Reset marks a challenge activation. The session-wide blink count is
// deliberately not cleared; only the challenge's starting point moves.
func (d *BlinkDetector) Reset() { d.baseline = d.blinks }

// Count returns the session-wide blink count.
func (d *BlinkDetector) Count() int { return d.blinks }
