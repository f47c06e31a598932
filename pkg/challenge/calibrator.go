package challenge

// Eye-closure thresholds are always clamped into this band regardless
// of what calibration derives; outside it the signal is noise.
const (
	earThresholdMin = 0.16
	earThresholdMax = 0.28

	// thresholdScale maps the open-eye EAR mean to a closure threshold.
	thresholdScale = 0.75
)

// Calibrator establishes the personalized eye-closure threshold from
// the first frames of a session and owns the exponentially-smoothed EAR
// signal for the session's whole lifetime. The threshold is computed
// exactly once and is immutable afterwards.
type Calibrator struct {
	target   int
	alpha    float64
	fallback float64

	frames   int
	smoothed float64
	seeded   bool
	sum      float64

	done      bool
	threshold float64
}

// NewCalibrator returns a calibrator that derives the threshold from
// target frames with the given smoothing factor. fallback is used when
// calibration cannot derive a meaningful mean (all-zero EAR input).
func NewCalibrator(target int, alpha, fallback float64) *Calibrator {
	return &Calibrator{target: target, alpha: alpha, fallback: fallback}
}

// Smooth folds one raw EAR sample into the running smoothed value and
// returns it. The first sample seeds the filter directly so the signal
// does not ramp up from zero.
func (c *Calibrator) Smooth(raw float64) float64 {
	if !c.seeded {
		c.smoothed = raw
		c.seeded = true
		return c.smoothed
	}
	c.smoothed += c.alpha * (raw - c.smoothed)
	return c.smoothed
}

// Observe accumulates one calibration frame. A no-op once calibration
// is done; callers keep using Smooth for the rest of the session.
func (c *Calibrator) Observe(raw float64) {
	if c.done {
		return
	}
	c.sum += c.Smooth(raw)
	c.frames++
	if c.frames >= c.target {
		c.finish()
	}
}

func (c *Calibrator) finish() {
	mean := c.sum / float64(c.frames)
	threshold := mean * thresholdScale
	if threshold <= 0 {
		threshold = c.fallback
	}
	if threshold < earThresholdMin {
		threshold = earThresholdMin
	}
	if threshold > earThresholdMax {
		threshold = earThresholdMax
	}
	c.threshold = threshold
	c.done = true
}

// Done reports whether the threshold has been derived.
func (c *Calibrator) Done() bool { return c.done }

// Threshold returns the derived eye-closure threshold. Zero until Done.
func (c *Calibrator) Threshold() float64 { return c.threshold }

// SmoothedEAR returns the current smoothed eye aspect ratio.
func (c *Calibrator) SmoothedEAR() float64 { return c.smoothed }

// Progress returns the calibration completion fraction.
func (c *Calibrator) Progress() float64 { return clampProgress(c.frames, c.target) }

// FrameTarget returns the configured calibration frame count.
func (c *Calibrator) FrameTarget() int { return c.target }
