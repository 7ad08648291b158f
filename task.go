package gocoro

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/avkonst/gocoro/internal/stackalloc"
)

// Stack-size constants (spec.md §6).
const (
	// MinStack leaves room for the collector's own frames plus one
	// host stack frame. The original ties this to jmp_buf-era GC
	// internals gocoro doesn't have; kept as a page-multiple floor so
	// NewTask still rejects the same class of too-small requests.
	MinStack = 16 * 1024
	// DefaultStack is substantially larger because task bodies may
	// trigger further compilation or reflection-heavy work in the
	// host embedding, which consumes stack (spec.md §6).
	DefaultStack = 256 * 1024
)

// TaskFunc is the function a Task runs on its first resume. args
// mirrors spec.md §4.D's n_args_in_transit unpacking: zero, one, or
// several values, according to how the first YieldTo into the task was
// called.
type TaskFunc func(t *Task, args ...any) any

// Task is a suspendable computation with its own per-task state and
// guard-paged memory arena (spec.md §3 "Task").
type Task struct {
	id    uuid.UUID
	rt    *Runtime
	stack *stackalloc.Stack // nil for the root task
	start TaskFunc

	// onExit is spec.md's on_exit: the task to resume when this one
	// finishes normally. Only the root task has a nil onExit — the
	// original instead makes root.on_exit point at itself, a cycle
	// spec.md §9 flags as something "a clearer reimplementation"
	// should model with "an optional-parent link or a terminal
	// sentinel". nil is that sentinel.
	onExit *Task

	state *State

	in chan transferMsg // this task's single rendezvous inbox

	done   atomic.Bool
	result any
}

// ID returns the task's identity, stable for the task's lifetime.
func (t *Task) ID() uuid.UUID { return t.id }

// Runtime returns the cooperative domain t belongs to.
func (t *Task) Runtime() *Runtime { return t.rt }

// Done reports whether the task has finished, normally or via an
// unhandled raise. It is monotonic (spec.md §8) and safe to call from
// any goroutine, unlike YieldTo/Raise/Handle which only the task that
// is current may call.
func (t *Task) Done() bool { return t.done.Load() }

// Result returns the task's final value. It is only meaningful once
// Done reports true; it is nil before that.
func (t *Task) Result() any { return t.result }

// Stack returns the task's guard-paged memory arena, or nil for the
// root task (which runs on the host thread's own stack and never
// allocates one — spec.md §3 "Root task").
func (t *Task) Stack() *stackalloc.Stack { return t.stack }

// State exposes the task's inherited per-task slots (spec.md §3
// "state"): its GC root chain and opaque host value.
func (t *Task) State() *State { return t.state }

func (t *Task) String() string {
	if t.onExit == nil {
		return fmt.Sprintf("gocoro.Task(%s root)", t.id)
	}
	return fmt.Sprintf("gocoro.Task(%s)", t.id)
}

// NewTask creates a new task (spec.md §4.D create_task / §6 Task(fn)
// and Task(fn, ssize)). The new task inherits the calling task's
// exception handler and opaque host state (spec.md step 3), and is
// parented to the calling task via onExit (step 4).
//
// The new task's goroutine is started immediately and parks on its own
// inbox right away — that park is this reimplementation's analogue of
// "capture a context... control returns immediately" (spec.md step 5):
// no user code runs until the first YieldTo into the task.
func (rt *Runtime) NewTask(start TaskFunc, ssize ...int) (*Task, error) {
	if start == nil {
		return nil, errors.Wrap(ErrTypeMismatch, "gocoro.NewTask: fn is nil")
	}
	size := DefaultStack
	if len(ssize) > 0 {
		size = ssize[0]
		if size < MinStack {
			return nil, errors.Wrapf(ErrStackTooSmall, "gocoro.NewTask: requested %d, minimum %d", size, MinStack)
		}
	}

	stk, err := stackalloc.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "gocoro.NewTask")
	}

	creator := rt.current
	t := &Task{
		id:     uuid.New(),
		rt:     rt,
		stack:  stk,
		start:  start,
		onExit: creator,
		state:  newState(creator.state.ehTask, creator.state.Value),
		in:     make(chan transferMsg),
	}

	go rt.taskMain(t)
	return t, nil
}

// taskMain is the task body loop (spec.md §4.D "Task body (runs on
// first resume)").
func (rt *Runtime) taskMain(t *Task) {
	msg := <-t.in
	result, viaRaise := rt.runBody(t, msg.val, msg.nargs)
	if viaRaise {
		// Raise already finished t and handed control directly to the
		// handler task; this goroutine has nothing left to do.
		return
	}

	rt.finish(t, result)

	// "while target.done: target ← target.on_exit" (spec.md §4.D),
	// collapsing any already-dead parents until a live ancestor (or
	// root, which never finishes) is found.
	target := t.onExit
	for target != nil && target.Done() {
		target = target.onExit
	}

	rt.current = target
	target.in <- transferMsg{val: t.result}
}

// runBody applies start to its first-entry arguments and converts a
// same-task raise (spec.md §4.F "if h == current") or a cross-task
// raise hand-off into the right return shape for taskMain.
func (rt *Runtime) runBody(t *Task, val any, nargs int) (result any, viaRaise bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch rv := r.(type) {
		case taskDead:
			viaRaise = true
		case raiseUnwind:
			// Defensive fallback: in normal operation Handle's own
			// recover (raise.go) intercepts this first, since h==self
			// is only ever true while a Handle call on this very task
			// is on the stack. If it somehow isn't, the task's own
			// result becomes the unhandled exception, same as any
			// other unhandled raise.
			result = &RaiseError{Value: rv.value}
		default:
			panic(r)
		}
	}()

	switch nargs {
	case 0:
		result = t.start(t)
	case 1:
		result = t.start(t, val)
	default:
		result = t.start(t, val.([]any)...)
	}
	return
}

// finish marks t done with its final result (spec.md §4.D
// finish_task). done is monotonic: finish must never be called twice
// for the same task (spec.md §3 invariant 3).
func (rt *Runtime) finish(t *Task, result any) {
	t.result = result
	t.done.Store(true)
}
