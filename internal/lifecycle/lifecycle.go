// Package lifecycle tracks the phase of the one mutation allowed in flight
// at a time: Idle -> Submitting -> Confirming -> Idle on success, with a drop
// straight back to Idle from either live phase on failure.
package lifecycle

import (
	"errors"
	"fmt"
)

type Phase int

const (
	Idle Phase = iota
	Submitting
	Confirming
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Confirming:
		return "confirming"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ErrBusy is returned when a mutation is started while another is in flight.
var ErrBusy = errors.New("a transaction is already in flight")

// Tracker is the concurrency gate for mutations. It carries the observable
// phase label shown to the user.
type Tracker struct {
	phase Phase
	label string
}

func (t *Tracker) Phase() Phase  { return t.phase }
func (t *Tracker) Label() string { return t.label }

// InFlight reports whether a mutation is between submission and its terminal
// outcome.
func (t *Tracker) InFlight() bool { return t.phase != Idle }

// Begin moves Idle -> Submitting. Any other starting phase is refused with
// ErrBusy; there is no queueing.
func (t *Tracker) Begin(label string) error {
	if t.phase != Idle {
		return ErrBusy
	}
	t.phase = Submitting
	t.label = label
	return nil
}

// Confirm moves Submitting -> Confirming after a successful submission.
func (t *Tracker) Confirm(label string) error {
	if t.phase != Submitting {
		return fmt.Errorf("disallowed transition: %s -> %s", t.phase, Confirming)
	}
	t.phase = Confirming
	t.label = label
	return nil
}

// Finish returns to Idle from any phase. Both terminal outcomes, confirmed
// and failed, end here.
func (t *Tracker) Finish() {
	t.phase = Idle
	t.label = ""
}
