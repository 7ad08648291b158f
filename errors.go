package gocoro

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for the host-binding validation failures spec.md §6
// lists ("type mismatch", "ssize < MIN_STACK").
var (
	ErrTypeMismatch  = errors.New("gocoro: type mismatch")
	ErrStackTooSmall = errors.New("gocoro: stack size below MinStack")
	ErrNoCurrentTask = errors.New("gocoro: runtime has no current task")
	ErrSelfTransfer  = errors.New("gocoro: cannot yield to the current task")
)

// RaiseError carries a value raised with Runtime.Raise out through
// Runtime.Handle, which is the only place a raise is ever visible as an
// ordinary Go error (spec.md §7: "Exceptions do not cross transfers
// implicitly... the handler task resumes explicitly").
//
// A task that dies from a cross-task raise keeps the raw raised value as
// its Result(), not a RaiseError (spec.md §3 result, §8 scenario 4).
type RaiseError struct {
	Value any
}

func (e *RaiseError) Error() string {
	return fmt.Sprintf("gocoro: unhandled raise: %v", e.Value)
}

// Unwrap lets errors.As/errors.Is reach through to Value when it is
// itself an error, without forcing every caller of Raise to pass one.
func (e *RaiseError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
