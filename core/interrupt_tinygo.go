//go:build tinygo

package core

import "runtime/interrupt"

// State is the saved interrupt-enable state
type State = interrupt.State

// disableInterrupts disables interrupts and returns the previous state
func disableInterrupts() State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state saved by disableInterrupts,
// so nested critical sections leave interrupts masked until the outermost
// one exits.
func restoreInterrupts(state State) {
	interrupt.Restore(state)
}
