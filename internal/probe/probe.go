// Package probe runs the one-shot, process-wide startup checks that the
// rest of gocoro leans on: which way the stack grows, and whether the
// running GOOS/GOARCH is one we understand well enough to trust.
//
// The original (Julia's task.c, via Douglas Jones' user-thread probing
// trick) additionally walks a captured jmp_buf word by word to find the
// stack-relative pointers inside it, so a saved context can later be
// rebased onto a different stack. gocoro never captures a raw register
// buffer — each task's execution context is a parked goroutine, not a
// jmp_buf — so that half of the probe has no port here. See DESIGN.md.
package probe

import (
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
)

// Direction is the result of the stack-growth probe.
type Direction int

const (
	// Unknown means the probe has not run yet.
	Unknown Direction = iota
	// GrowsUp means later-allocated frames live at higher addresses.
	GrowsUp
	// GrowsDown means later-allocated frames live at lower addresses
	// (the case on every platform Go currently targets).
	GrowsDown
)

func (d Direction) String() string {
	switch d {
	case GrowsUp:
		return "up"
	case GrowsDown:
		return "down"
	default:
		return "unknown"
	}
}

// ErrUnsupportedPlatform is returned by Run when GOOS/GOARCH is not on
// the allow-list. spec.md §9 asks implementations to "refuse to run
// (explicit supported-platform list) rather than carry the generic
// fallback" when the saved-context layout for a platform is unknown;
// gocoro has no saved-context layout at all, but the spirit of the rule
// still applies to the guard-page arena's page arithmetic, so the
// allow-list stays.
var ErrUnsupportedPlatform = errors.New("gocoro: unsupported platform")

var supported = map[string]bool{
	"linux/amd64":   true,
	"linux/arm64":   true,
	"darwin/amd64":  true,
	"darwin/arm64":  true,
	"freebsd/amd64": true,
}

// Result is the process-wide output of Run: process-wide constants
// derived once at init and never recomputed.
type Result struct {
	Direction Direction
	PageSize  int
}

// Run executes the startup probe. gocoro calls it once per process,
// from the package-level sync.Once shared by every Runtime (see
// runtime.go); calling it more than once is harmless but wasteful.
func Run() (Result, error) {
	plat := runtime.GOOS + "/" + runtime.GOARCH
	if !supported[plat] {
		return Result{}, errors.Wrapf(ErrUnsupportedPlatform, "%s", plat)
	}

	dir := inferDirection()

	return Result{
		Direction: dir,
		PageSize:  pageSize(),
	}, nil
}

// inferDirection ports task.c's _infer_direction_from: call one level
// deeper and compare the address of a local variable in the deeper
// frame against one in the shallower frame.
//
//go:noinline
func inferDirection() Direction {
	var first byte
	return inferDirectionFrom(&first)
}

//go:noinline
func inferDirectionFrom(firstAddr *byte) Direction {
	var second byte
	if uintptr(unsafe.Pointer(firstAddr)) < uintptr(unsafe.Pointer(&second)) {
		return GrowsUp
	}
	return GrowsDown
}
