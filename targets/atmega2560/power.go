//go:build atmega2560

package main

import (
	"device/avr"

	"millis/core"
)

// sleepControl toggles SMCR between power-save selected (sleep disabled)
// and power-save armed
type sleepControl struct{}

func (sleepControl) SetSleepMode(mode core.PowerMode) error {
	const powerSave = avr.SMCR_SM1 | avr.SMCR_SM0
	switch mode {
	case core.PowerActive:
		avr.SMCR.Set(powerSave)
	case core.PowerSave:
		avr.SMCR.Set(powerSave | avr.SMCR_SE)
	default:
		return errUnknownMode
	}
	return nil
}
