//go:build tinygo && avr

package core

import "device/avr"

var interruptsOn bool

// EnableInterrupts globally enables interrupt delivery (sei).
// Call only after every interrupt source has been configured.
func EnableInterrupts() {
	interruptsOn = true
	avr.Asm("sei")
}

// DisableInterruptsGlobal globally disables interrupt delivery (cli).
func DisableInterruptsGlobal() {
	avr.Asm("cli")
	interruptsOn = false
}

// InterruptsEnabled reports whether EnableInterrupts has been called
func InterruptsEnabled() bool {
	return interruptsOn
}
