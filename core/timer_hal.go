package core

// TimerDriver is the 8-bit compare-match timer that drives millis.
// Platform-specific implementations own the hardware registers; core code
// never touches register bits directly.
type TimerDriver interface {
	// SetWaveformCTC selects clear-timer-on-compare mode, so the counter
	// resets on every compare match instead of running to overflow
	SetWaveformCTC()

	// SetCompare programs the compare-match register
	SetCompare(ocr uint8)

	// SetPrescaler selects the timer clock divisor and starts the timer
	SetPrescaler(p Prescale)

	// EnableCompareInterrupt unmasks the compare-match A interrupt
	// (not the overflow interrupt)
	EnableCompareInterrupt()

	// DisableCompareInterrupt masks the compare-match A interrupt
	DisableCompareInterrupt()
}
