package gocoro

import "github.com/sirupsen/logrus"

// raiseUnwind carries a raised value up the Go call stack of the
// single goroutine it was panicked in, caught by the nearest enclosing
// Handle on that same task (spec.md §4.F "if h == current: long-jump
// directly to h.state.eh_ctx").
type raiseUnwind struct{ value any }

// taskDead is panicked by Raise on its cross-task branch once it has
// already finished the raising task and handed control to the handler
// task directly. It only ever needs to unwind runBody's own deferred
// recover (task.go); nothing above that in the raising task's call
// stack will ever run again, so there is nothing to carry.
type taskDead struct{}

// Raise hunts for the nearest live handler task and delivers e to it
// (spec.md §4.F raise). The calling task is terminal after Raise: it
// either transfers control to its own installed Handle scope (if it is
// its own handler) or is finished with e as its Result and control
// passes to the handler task directly, bypassing the normal on_exit
// chain entirely.
//
// Raise never returns.
func (rt *Runtime) Raise(e any) {
	self := rt.current
	h := self.state.ehTask

	if h == nil || h.Done() {
		logrus.WithFields(logrus.Fields{
			"task": self.id,
		}).Warn("gocoro: exception handler task has exited; redirecting to root")
		h = rt.root
	}

	if h == self {
		// Same task: a real Go panic/recover unwind is available and
		// is the idiomatic tool for it, since both Raise and the
		// enclosing Handle run on this one goroutine.
		panic(raiseUnwind{value: e})
	}

	// Cross-task: finish the raising task with e as its result
	// (spec.md: "the simpler contract is that an unhandled raise is
	// terminal for its task"), then perform a transfer_to-style switch
	// directly into h, skipping self's own on_exit chain.
	rt.finish(self, e)
	rt.current = h
	h.in <- transferMsg{val: e, raised: true}
	panic(taskDead{})
}

// Handle runs body with self installed as its own exception handler
// for body's duration (spec.md §9's recommended explicit, scoped
// install/release in place of bare state.eh_task inheritance). Any
// value raised by this task, or by a task it creates (directly or
// transitively) while no closer Handle is active, is delivered here as
// raised rather than propagating further.
//
// Handle may only be called by rt.Current().
func (rt *Runtime) Handle(body func() any) (result any, raised error) {
	self := rt.current
	if self == nil {
		return nil, ErrNoCurrentTask
	}

	prevEH := self.state.ehTask
	self.state.ehTask = self
	defer func() { self.state.ehTask = prevEH }()

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ru, ok := r.(raiseUnwind)
		if !ok {
			panic(r)
		}
		raised = &RaiseError{Value: ru.value}
	}()

	result = body()
	return
}
