// Package stackalloc allocates the page-aligned, guard-paged memory
// arenas gocoro tasks use (spec.md §4.C). Grounded on gvisor's
// systrap/subprocess.go raw mmap/mprotect usage and, conceptually, on
// the teacher's runtime/mfinal.go discussion of finalizer-driven
// cleanup (the actual hook is the exported runtime.SetFinalizer, since
// an ordinary package cannot reach the runtime's internal finalizer
// queue the way mfinal.go does from inside package runtime itself).
package stackalloc

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Stack is a page-aligned memory arena with a read-only guard page
// immediately below its usable region. A task owns one for its whole
// life, exposed through Task.Stack for any scratch data a host embedding
// wants to hang off a task; the per-task GC root chain (internal/gcroot)
// is allocated on the Go heap, not in this arena.
//
// Unlike the original, gocoro's tasks do not actually execute on this
// memory — their call stack is the Go goroutine stack the runtime
// already manages for them (see SPEC_FULL.md §0). The guard-paged
// arena exists so the rest of the module can honor spec.md's stack
// lifecycle and overflow-trap contract word for word.
type Stack struct {
	raw      []byte // full mmap'd allocation: guard page + usable region
	pageSize int
	size     int // usable size, page-rounded

	once     sync.Once
	released bool
}

// New allocates a Stack of at least ssize usable bytes. ssize is
// rounded up to a whole page, matching spec.md §4.C step 1.
//
// Real mmap always returns a page-aligned address, so unlike the
// original (which pads the request by almost two pages to manually
// align a malloc'd block, spec.md §4.C steps 2-3), gocoro only needs
// one extra page for the guard — the alignment step the original
// performs is already guaranteed by the kernel.
func New(ssize int) (*Stack, error) {
	pageSize := unix.Getpagesize()
	ssize = roundUp(ssize, pageSize)

	total := ssize + pageSize
	raw, err := unix.Mmap(-1, 0, total,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.Wrap(err, "gocoro: mmap stack arena")
	}

	// Guard is one byte short of a full page: "sized one byte less
	// than a page to avoid kernel edge cases around page-exact
	// protect calls" (spec.md §4.C).
	guard := raw[:pageSize-1]
	if err := unix.Mprotect(guard, unix.PROT_READ); err != nil {
		_ = unix.Munmap(raw)
		return nil, errors.Wrap(err, "gocoro: mprotect guard page")
	}

	s := &Stack{raw: raw, pageSize: pageSize, size: ssize}
	runtime.SetFinalizer(s, (*Stack).Release)
	return s, nil
}

// Base returns the address of the first byte of the usable region
// (stack_base in spec.md §3), one page above the guard.
func (s *Stack) Base() uintptr {
	return uintptr(unsafe.Pointer(&s.raw[s.pageSize]))
}

// Bytes returns the usable region as a byte slice.
func (s *Stack) Bytes() []byte {
	return s.raw[s.pageSize:]
}

// Size returns the usable size in bytes.
func (s *Stack) Size() int {
	return s.size
}

// GuardAddr returns the address one byte below the usable region —
// stack_base - 1 — the address spec.md §8 scenario 3 writes to in
// order to observe a trap.
func (s *Stack) GuardAddr() uintptr {
	return uintptr(unsafe.Pointer(&s.raw[s.pageSize-1]))
}

// Release restores write permission on the guard page and unmaps the
// arena. It is safe to call multiple times and is also registered as
// a finalizer, so callers holding onto a *Stack past a task's death
// don't have to call it explicitly — but calling it explicitly reclaims
// the OS mapping immediately instead of waiting for a GC cycle to run
// finalizers. Nothing in gocoro calls it when a task finishes.
func (s *Stack) Release() {
	s.once.Do(s.release)
}

func (s *Stack) release() {
	if s.released {
		return
	}
	s.released = true
	// Restore write permission before the allocation is returned —
	// spec.md §3 invariant 5 and §4.C: "a finalizer... restores write
	// permission before the backing allocation is freed."
	if err := unix.Mprotect(s.raw[:s.pageSize-1], unix.PROT_READ|unix.PROT_WRITE); err != nil {
		logrus.WithError(err).Warn("gocoro: failed to unprotect stack guard page before release")
	}
	if err := unix.Munmap(s.raw); err != nil {
		logrus.WithError(err).Warn("gocoro: failed to unmap stack arena")
	}
}

func roundUp(n, multiple int) int {
	if n <= 0 {
		return multiple
	}
	if rem := n % multiple; rem != 0 {
		n += multiple - rem
	}
	return n
}
