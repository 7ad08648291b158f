package stackalloc

// Rebase implements spec.md §4.B's context-rebase arithmetic: given a
// pointer recorded while a region's usable base was oldBase, compute
// what it becomes if that region is replaced by one based at newBase.
//
// gocoro never actually relocates a live task's arena — stacks are
// fixed-size for the task's whole life (spec.md Non-goals: "stack
// growth") — so nothing in the production path calls this today. It is
// kept as the documented seam spec.md §3's Context Rebase component
// maps onto, for a future resizable-arena variant, and is exercised by
// its own test rather than by any task in this module.
func Rebase(ptr, oldBase, newBase uintptr) uintptr {
	return ptr + (newBase - oldBase)
}
