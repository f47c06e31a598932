package challenge

const (
	// mouthScoreThreshold activates on the jaw-open expression score.
	mouthScoreThreshold = 0.3
	// mouthGapThreshold activates on the face-height-relative lip gap
	// when no expression scores are available.
	mouthGapThreshold = 0.08

	// The geometric fallback is noisier, so it must persist longer.
	mouthScorePersistence = 4
	mouthGapPersistence   = 6
)

// MouthOpenDetector scores a sustained mouth opening. The counter
// decays symmetrically while the mouth is closed rather than resetting,
// so single-frame signal dropouts do not erase progress.
type MouthOpenDetector struct {
	counter  int
	required int
}

// NewMouthOpenDetector builds a mouth-open detector.
func NewMouthOpenDetector() *MouthOpenDetector {
	return &MouthOpenDetector{required: mouthScorePersistence}
}

// Action implements Detector.
func (d *MouthOpenDetector) Action() Action { return ActionMouthOpen }

// Observe scores one frame, preferring the semantic expression score
// over lip geometry when the frame carries one.
func (d *MouthOpenDetector) Observe(sig Signals) {
	var open bool
	if sig.HasMouthScore {
		open = sig.MouthScore > mouthScoreThreshold
		d.required = mouthScorePersistence
	} else {
		open = sig.MouthGap > mouthGapThreshold
		d.required = mouthGapPersistence
	}

	if open {
		d.counter++
	} else if d.counter > 0 {
		d.counter--
	}
}

// Satisfied implements Detector.
func (d *MouthOpenDetector) Satisfied() bool { return d.counter >= d.required }

// Progress implements Detector.
func (d *MouthOpenDetector) Progress() float64 { return clampProgress(d.counter, d.required) }

// Reset implements Detector.
func (d *MouthOpenDetector) Reset() {
	d.counter = 0
	d.required = mouthScorePersistence
}
