//go:build !tinygo

package core

import (
	"sync"
	"sync/atomic"
)

// State is the saved interrupt state returned by disableInterrupts.
// On hosted builds there is nothing to save; the value is a placeholder.
type State uintptr

// irq models the interrupt controller of a single-core MCU on a regular Go
// runtime. mask stands in for the global interrupt flag being cleared:
// holding it keeps any handler from entering its own critical section.
// Hosted critical sections therefore do not nest.
var irq struct {
	mask     sync.Mutex
	dispatch sync.Mutex
	enabled  atomic.Bool
}

// disableInterrupts blocks interrupt handlers until restoreInterrupts
func disableInterrupts() State {
	irq.mask.Lock()
	return 1
}

// restoreInterrupts releases the mask taken by disableInterrupts
func restoreInterrupts(state State) {
	irq.mask.Unlock()
}

// EnableInterrupts globally enables interrupt delivery.
// Call only after every interrupt source has been configured.
func EnableInterrupts() {
	irq.enabled.Store(true)
}

// DisableInterruptsGlobal globally disables interrupt delivery.
func DisableInterruptsGlobal() {
	irq.enabled.Store(false)
}

// InterruptsEnabled reports whether interrupt delivery is globally enabled
func InterruptsEnabled() bool {
	return irq.enabled.Load()
}

// Dispatch delivers one interrupt occurrence to handler, the way the
// hardware vectors to an ISR. Occurrences are serialized: a handler always
// runs to completion before the next one starts. Returns false without
// calling handler when delivery is globally disabled.
func Dispatch(handler func()) bool {
	irq.dispatch.Lock()
	defer irq.dispatch.Unlock()

	if !irq.enabled.Load() {
		return false
	}
	handler()
	return true
}
