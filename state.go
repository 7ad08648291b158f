package gocoro

import "github.com/avkonst/gocoro/internal/gcroot"

// State bundles the per-task runtime slots spec.md §3 groups under
// "state": the current exception-handler task, a per-task GC root
// chain head, and an opaque per-task host value inherited from the
// creator (spec.md's state.ostream_obj / current_output_stream — a
// host embedding's I/O handles, or whatever else it wants every
// descendant task to start out holding).
//
// There is deliberately no eh_ctx field here (spec.md's "current
// handler resume context", a second jmp_buf the original threads
// through this struct). gocoro's Handle provides the same scoped
// install/release spec.md §9 recommends in place of it; see raise.go.
type State struct {
	ehTask *Task
	Roots  *gcroot.Chain
	Value  any
}

func newState(ehTask *Task, inherited any) *State {
	return &State{
		ehTask: ehTask,
		Roots:  gcroot.New(),
		Value:  inherited,
	}
}
