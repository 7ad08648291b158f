// Package gocoro implements symmetric coroutines ("tasks"): suspendable
// computations with their own stack-like identity, switched between
// only by explicit, named transfer — never by a scheduler.
//
// A Runtime owns exactly one cooperative domain: at any instant exactly
// one of its tasks is current, and only that task may call YieldTo,
// Raise, or Handle. Control moves between tasks purely by YieldTo
// naming its destination; there is no preemption and no background
// scheduling goroutine.
//
//	rt, err := gocoro.NewRuntime()
//	ping, err := rt.NewTask(func(t *gocoro.Task, args ...any) any {
//		v := args[0].(int)
//		for {
//			w, _ := rt.YieldTo(rt.Root(), v+1)
//			v = w.(int)
//		}
//	})
//	v, _ := rt.YieldTo(ping, 0) // v == 1
//
// Exceptions propagate across tasks via Raise and Handle rather than
// Go's ordinary error returns: Raise hunts for the nearest task that
// called Handle and hands it the raised value directly, finishing the
// raising task. Intermediate tasks between the two are not finished by
// Raise. See raise.go.
//
// Each task is backed by a dedicated goroutine parked on a rendezvous
// channel between suspension points, and owns a page-aligned, guard-paged
// memory arena (internal/stackalloc). Its per-task GC root chain
// (internal/gcroot) is an ordinary Go-heap list and is not stored in
// that arena. See SPEC_FULL.md §0 for why this is the
// idiomatic-Go substitute for the original's raw register-context
// capture and manual stack relocation.
package gocoro
