//go:build atmega2560

package main

import (
	"device/avr"
	"runtime/interrupt"

	"millis/core"
)

// timer0 drives the millis counter from TC0 compare match A.
// The TinyGo runtime must not be relying on TC0 for its own clock; the
// firmware never calls time.Sleep and uses core.DelayMillis instead.
type timer0 struct{}

func (timer0) SetWaveformCTC() {
	avr.TCCR0A.Set(avr.TCCR0A_WGM01)
}

func (timer0) SetCompare(ocr uint8) {
	avr.OCR0A.Set(ocr)
}

func (timer0) SetPrescaler(p core.Prescale) {
	avr.TCCR0B.Set(uint8(p) & (avr.TCCR0B_CS00 | avr.TCCR0B_CS01 | avr.TCCR0B_CS02))
}

func (timer0) EnableCompareInterrupt() {
	avr.TIMSK0.Set(avr.TIMSK0_OCIE0A)
}

func (timer0) DisableCompareInterrupt() {
	avr.TIMSK0.ClearBits(avr.TIMSK0_OCIE0A)
}

// InitMillis installs the compare-match handler and configures TC0.
// Interrupts stay globally disabled until the caller enables them.
func InitMillis() {
	interrupt.New(avr.IRQ_TIMER0_COMPA, func(interrupt.Interrupt) {
		core.TimerCompareMatch()
	})
	core.MillisInit(timer0{})
}
