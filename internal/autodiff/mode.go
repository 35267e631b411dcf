package autodiff

import "sync/atomic"

// gradDisabled is process-wide. Grad mode is a session setting in the
// notebook model, not a per-goroutine one.
var gradDisabled atomic.Bool

// IsGradEnabled reports whether operations are currently recorded.
func IsGradEnabled() bool {
	return !gradDisabled.Load()
}

// NoGrad runs fn with graph recording disabled. Results computed inside fn
// never require gradients, even if their inputs do.
//
// Example:
//
//	autodiff.NoGrad(func() {
//	    w.Value().Data()[0] -= lr * w.Grad().Item()
//	})
func NoGrad(fn func()) {
	restore := setGradEnabled(false)
	defer restore()
	fn()
}

// EnableGrad runs fn with graph recording enabled, also inside NoGrad.
func EnableGrad(fn func()) {
	restore := setGradEnabled(true)
	defer restore()
	fn()
}

// setGradEnabled switches grad mode and returns a func restoring the
// previous mode.
func setGradEnabled(enabled bool) func() {
	prev := gradDisabled.Swap(!enabled)
	return func() {
		gradDisabled.Store(prev)
	}
}
