package crowdfund

import "fmt"

// Phase is the crowdfund lifecycle stage. Phases only move forward.
type Phase uint8

const (
	NotStarted Phase = iota
	EarlyBirds
	Open
	Closed
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case EarlyBirds:
		return "early_birds"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Selling reports whether purchases are accepted in p.
func (p Phase) Selling() bool {
	return p == EarlyBirds || p == Open
}

// Operation is an action that moves the crowdfund to another phase.
type Operation string

const (
	OpOpen               Operation = "open"
	OpFinalizeEarlyBirds Operation = "finalizeEarlyBirds"
	OpClose              Operation = "close"
)

type transition struct {
	from Phase
	op   Operation
}

var transitions = map[transition]Phase{
	{NotStarted, OpOpen}:               EarlyBirds,
	{EarlyBirds, OpFinalizeEarlyBirds}: Open,
	{Open, OpClose}:                    Closed,
}

// Next returns the phase op leads to from p, or ErrInvalidState when the
// transition is not defined.
func (p Phase) Next(op Operation) (Phase, error) {
	next, ok := transitions[transition{p, op}]
	if !ok {
		return p, fmt.Errorf("%w: cannot %s while %s", ErrInvalidState, op, p)
	}
	return next, nil
}
