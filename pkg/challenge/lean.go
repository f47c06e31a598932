package challenge

const (
	// leanWindowCapacity bounds the face-width history.
	leanWindowCapacity = 30
	// leanMinSamples is the history size before leaning is scored.
	leanMinSamples = 10
	// leanWidthRatio is the required width growth over the window.
	leanWidthRatio = 1.10
	// leanPersistence is how many frames the growth must be sustained.
	leanPersistence = 3
)

// ForwardLeanDetector models "moving closer to the camera" as a
// sustained growth of the face bounding-box width relative to the
// oldest sample in a bounded window. Momentary width spikes do not
// satisfy the challenge.
type ForwardLeanDetector struct {
	widths   []float64
	progress int
}

// NewForwardLeanDetector builds a forward-lean detector.
func NewForwardLeanDetector() *ForwardLeanDetector {
	return &ForwardLeanDetector{widths: make([]float64, 0, leanWindowCapacity)}
}

// Action implements Detector.
func (d *ForwardLeanDetector) Action() Action { return ActionLeanForward }

// Observe scores one frame.
func (d *ForwardLeanDetector) Observe(sig Signals) {
	d.widths = append(d.widths, sig.FaceWidth)
	if len(d.widths) > leanWindowCapacity {
		d.widths = d.widths[1:]
	}
	if len(d.widths) < leanMinSamples {
		return
	}

	first := d.widths[0]
	if first <= 0 {
		return
	}
	max := first
	for _, w := range d.widths[1:] {
		if w > max {
			max = w
		}
	}

	if max >= first*leanWidthRatio {
		d.progress++
	} else {
		d.progress = 0
	}
}

// Satisfied implements Detector.
func (d *ForwardLeanDetector) Satisfied() bool { return d.progress >= leanPersistence }

// Progress implements Detector.
func (d *ForwardLeanDetector) Progress() float64 { return clampProgress(d.progress, leanPersistence) }

// Reset implements Detector.
func (d *ForwardLeanDetector) Reset() {
	d.widths = d.widths[:0]
	d.progress = 0
}
