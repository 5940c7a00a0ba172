package pairing

import "fmt"

// InvariantViolation indicates an internal assertion failed — a bug, not a
// user-facing condition. It should be unreachable.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("pairing: invariant violation: %s", e.Msg)
}

func invariant(cond bool, msg string) {
	if !cond {
		panic(&InvariantViolation{Msg: msg})
	}
}
