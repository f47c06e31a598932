package challenge

import "math"

// Direction selects which way a head-turn challenge points.
type Direction int

const (
	TurnLeft Direction = iota
	TurnRight
)

// centerThresholdDegrees bounds the yaw delta considered "at center".
const centerThresholdDegrees = 5.0

// HeadTurnDetector scores a deliberate return-then-turn head gesture.
// Each activation re-derives a neutral yaw baseline from the first
// frames, because head pose drifts between challenges; the baseline is
// discarded with the rest of the state on Reset.
type HeadTurnDetector struct {
	dir           Direction
	turnThreshold float64
	required      int
	calibTarget   int

	calibSum    float64
	calibFrames int
	calibrated  bool
	baseline    float64

	leftCount        int
	rightCount       int
	returnedToCenter bool
}

// NewHeadTurnDetector builds a detector for one direction. turnThreshold
// is in degrees; required is the persistence frame count; calibTarget is
// the per-challenge yaw baseline calibration length.
func NewHeadTurnDetector(dir Direction, turnThreshold float64, required, calibTarget int) *HeadTurnDetector {
	d := &HeadTurnDetector{
		dir:           dir,
		turnThreshold: turnThreshold,
		required:      required,
		calibTarget:   calibTarget,
	}
	d.Reset()
	return d
}

// Action implements Detector.
func (d *HeadTurnDetector) Action() Action {
	if d.dir == TurnLeft {
		return ActionTurnLeft
	}
	return ActionTurnRight
}

// Observe scores one frame. Frames without a pose transform are skipped
// entirely; yaw cannot be inferred from landmarks alone.
func (d *HeadTurnDetector) Observe(sig Signals) {
	if !sig.HasYaw {
		return
	}

	if !d.calibrated {
		d.calibSum += sig.Yaw
		d.calibFrames++
		if d.calibFrames >= d.calibTarget {
			d.baseline = d.calibSum / float64(d.calibFrames)
			d.calibrated = true
		}
		return
	}

	delta := sig.Yaw - d.baseline

	// At center: re-arm the gesture and decay both counters toward
	// zero instead of clearing them, to tolerate jitter.
	if math.Abs(delta) < centerThresholdDegrees {
		d.returnedToCenter = true
		if d.leftCount > 0 {
			d.leftCount--
		}
		if d.rightCount > 0 {
			d.rightCount--
		}
		return
	}

	switch {
	case delta <= -d.turnThreshold:
		if d.returnedToCenter {
			d.leftCount++
			d.rightCount = 0
			if d.leftCount >= d.required {
				// Full turn registered; require a return to
				// center before another turn can count.
				d.returnedToCenter = false
			}
		}
	case delta >= d.turnThreshold:
		if d.returnedToCenter {
			d.rightCount++
			d.leftCount = 0
			if d.rightCount >= d.required {
				d.returnedToCenter = false
			}
		}
	}
}

func (d *HeadTurnDetector) activeCount() int {
	if d.dir == TurnLeft {
		return d.leftCount
	}
	return d.rightCount
}

// Satisfied reports whether the turn persisted long enough.
func (d *HeadTurnDetector) Satisfied() bool {
	return d.calibrated && d.activeCount() >= d.required
}

// Progress implements Detector.
func (d *HeadTurnDetector) Progress() float64 {
	if !d.calibrated {
		return 0
	}
	return clampProgress(d.activeCount(), d.required)
}

// Calibrated reports whether the yaw baseline has been derived.
func (d *HeadTurnDetector) Calibrated() bool { return d.calibrated }

// Baseline returns the neutral yaw for the current activation.
func (d *HeadTurnDetector) Baseline() float64 { return d.baseline }

// Reset discards all state including the yaw baseline.
func (d *HeadTurnDetector) Reset() {
	d.calibSum = 0
	d.calibFrames = 0
	d.calibrated = false
	d.baseline = 0
	d.leftCount = 0
	d.rightCount = 0
	d.returnedToCenter = true
}
