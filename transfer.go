package gocoro

import "github.com/pkg/errors"

// transferMsg is the single-slot transfer-value carrier (spec.md §3
// "In-transit transfer value"), scoped to one channel send instead of
// one process-wide global. Because it only ever exists for the
// duration of one channel handoff, there is nothing to clear after
// reading it — the global task_arg_in_transit / n_args_in_transit /
// exception_in_transit slots spec.md §5 and §9 call out as "safe here
// only because the runtime is strictly single-threaded" and warn "a
// future multi-threaded variant must make them per-scheduler-thread"
// simply don't exist in this reimplementation: every Runtime already
// has its own private set of channels, one per task.
type transferMsg struct {
	val    any
	nargs  int  // meaningful only on a task's first resume
	raised bool // true when val is a value propagating from Raise
}

// YieldTo transfers execution to t, delivering args (packed as nothing,
// a single value, or a tuple), and returns the value delivered by
// whichever task next transfers back to the caller (spec.md §4.E
// yield_to / §6 yieldto).
//
// YieldTo may only be called by the task that is currently rt.Current.
func (rt *Runtime) YieldTo(t *Task, args ...any) (any, error) {
	if t == nil {
		return nil, errors.Wrap(ErrTypeMismatch, "gocoro.YieldTo: task is nil")
	}
	self := rt.current
	if self == nil {
		return nil, ErrNoCurrentTask
	}
	if t == self {
		return nil, ErrSelfTransfer
	}
	val, nargs := packArgs(args)
	return rt.transferTo(self, t, val, nargs)
}

func packArgs(args []any) (any, int) {
	switch len(args) {
	case 0:
		return nil, 0
	case 1:
		return args[0], 1
	default:
		tuple := make([]any, len(args))
		copy(tuple, args)
		return tuple, len(args)
	}
}

// transferTo is the symmetric-transfer primitive (spec.md §4.E
// transfer_to): name the destination, hand it the value, block until
// someone transfers back to self.
//
// Precondition: t != self (checked by YieldTo, its only caller; Raise's
// cross-task branch sends to the handler directly and does not call
// transferTo). If t is already done,
// no transfer occurs: the operation returns t's stored result
// immediately (spec.md §4.E precondition, §8 "Idempotence of done").
func (rt *Runtime) transferTo(self, t *Task, val any, nargs int) (any, error) {
	if t.Done() {
		return t.result, nil
	}

	rt.current = t
	t.in <- transferMsg{val: val, nargs: nargs}

	msg := <-self.in
	if msg.raised {
		// A raise is propagating through self's own call stack,
		// looking for the nearest enclosing Handle on this goroutine
		// (spec.md §4.F). Panicking here — rather than returning an
		// error — is what lets it skip over intermediate frames that
		// never check YieldTo's return value, exactly as the
		// original's longjmp skips over intermediate C frames on the
		// same stack.
		panic(raiseUnwind{value: msg.val})
	}
	return msg.val, nil
}
