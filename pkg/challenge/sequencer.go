package challenge

import "math/rand"

// Step is one entry in a challenge sequence.
type Step struct {
	Action Action
	Label  string
	Done   bool
}

// Sequencer holds a randomized permutation of the fixed action set and
// tracks which single step is active: the first not-yet-completed step
// in sequence order.
type Sequencer struct {
	steps    []Step
	index    int
	complete bool
}

// NewSequencer builds a sequencer over a uniform random permutation of
// the fixed action set, drawn from rng (Fisher-Yates).
func NewSequencer(rng *rand.Rand) *Sequencer {
	order := make([]Action, len(Actions))
	copy(order, Actions)
	for i := len(order) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	steps := make([]Step, len(order))
	for i, a := range order {
		steps[i] = Step{Action: a, Label: a.Label()}
	}
	return &Sequencer{steps: steps}
}

// Active returns the currently active step, or nil once complete.
func (s *Sequencer) Active() *Step {
	if s.complete {
		return nil
	}
	return &s.steps[s.index]
}

// Advance marks the active step done when conditionMet holds and moves
// to the next step; with no steps remaining the sequence completes.
// A no-op once complete. Returns true if the active step changed.
func (s *Sequencer) Advance(conditionMet bool) bool {
	if s.complete || !conditionMet {
		return false
	}
	s.steps[s.index].Done = true
	s.index++
	if s.index >= len(s.steps) {
		s.complete = true
	}
	return true
}

// Complete reports whether every step is done.
func (s *Sequencer) Complete() bool { return s.complete }

// Steps returns a copy of the ordered step list with completion flags.
func (s *Sequencer) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Index returns the position of the active step.
func (s *Sequencer) Index() int { return s.index }
