package gocoro

import (
	"sync"

	"github.com/google/uuid"

	"github.com/avkonst/gocoro/internal/gcroot"
	"github.com/avkonst/gocoro/internal/probe"
)

// probeResult is the process-wide, one-shot startup probe (spec.md
// §4.A). It is shared across every Runtime in the process, since it
// describes the platform, not any one cooperative domain.
var (
	probeOnce   sync.Once
	probeResult probe.Result
	probeErr    error
)

func ensureProbe() error {
	probeOnce.Do(func() {
		probeResult, probeErr = probe.Run()
	})
	return probeErr
}

// Runtime is one cooperative domain: a root task plus every task
// transitively created from it, with exactly one of them current at a
// time. Two Runtimes never share tasks and never need to coordinate
// with each other — each is the "per-scheduler-thread" unit of
// isolation spec.md §9 asks a multi-threaded variant to key its
// transfer slots on. A process may run many Runtimes concurrently, one
// goroutine each, joined with an errgroup (see example_test.go); it
// must never run two tasks of the *same* Runtime concurrently.
type Runtime struct {
	root    *Task
	current *Task
}

// NewRuntime synthesizes a root task adopting the calling goroutine
// (spec.md §3 "Root task") and returns a new cooperative domain. It
// runs the process-wide platform probe on first use.
func NewRuntime() (*Runtime, error) {
	if err := ensureProbe(); err != nil {
		return nil, err
	}

	root := &Task{
		id:     uuid.New(),
		onExit: nil, // terminal sentinel — see Task.onExit
		in:     make(chan transferMsg),
	}
	root.state = newState(root, nil)

	rt := &Runtime{root: root}
	root.rt = rt
	rt.current = root
	return rt, nil
}

// Root returns the runtime's root task.
func (rt *Runtime) Root() *Task { return rt.root }

// Current returns the task currently executing in rt (spec.md §6
// current_task).
func (rt *Runtime) Current() *Task { return rt.current }

// ActiveRoots returns the current task's GC root chain — the thing
// spec.md's global "GC-root-chain pointer" always points at (invariant
// 6). A host embedding that hands gocoro a non-Go-visible pointer (e.g.
// via cgo) pins it here for as long as the owning task stays current
// or a descendant is running.
func (rt *Runtime) ActiveRoots() *gcroot.Chain { return rt.current.state.Roots }
