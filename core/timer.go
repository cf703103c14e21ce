package core

import (
	"errors"
	"fmt"
)

// Millis timer configuration for a 16MHz part.
//
//	PRESCALER  COUNTS  PERIOD
//	       64     250    1 ms
//	      256     125    2 ms
//	      256     250    4 ms
//	     1024     125    8 ms
//	     1024     250   16 ms
const (
	ClockFreq   = 16000000 // Hz
	Prescaler   = 1024
	TimerCounts = 125

	// MillisIncrement is the number of milliseconds added per compare match
	MillisIncrement = Prescaler * TimerCounts / (ClockFreq / 1000)
)

// These fail to compile unless one period is a whole number of
// milliseconds and TimerCounts fits the compare register.
var (
	_ = [1]struct{}{}[Prescaler*TimerCounts%(ClockFreq/1000)]
	_ = [MaxCounts - TimerCounts]struct{}{}
	_ = [TimerCounts - 1]struct{}{}
)

var ErrTimerTaken = errors.New("millis timer already initialized")

// millisState is the counter plus the increment it advances by.
// The counter is a uint32 count of milliseconds since MillisInit and wraps
// to zero after 2^32 ms (about 49.7 days). Use Elapsed for durations.
type millisState struct {
	count     uint32
	increment uint32
	taken     bool
}

var millis = NewShared(millisState{})

// DefaultTimerConfig returns the compiled-in configuration
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{ClockFreq: ClockFreq, Prescaler: Prescaler, Counts: TimerCounts}
}

// MillisInit configures tc with the compiled-in prescaler and compare count,
// enables its compare-match interrupt and clears the counter. Interrupts
// must be enabled globally by the caller afterwards.
// Panics if the timer was already initialized.
func MillisInit(tc TimerDriver) {
	if err := MillisInitConfig(tc, DefaultTimerConfig()); err != nil {
		panic(err)
	}
}

// MillisInitConfig is MillisInit with an explicit configuration.
// An invalid configuration is reported before the timer is touched.
// Panics if the timer was already initialized.
func MillisInitConfig(tc TimerDriver, cfg TimerConfig) error {
	if err := cfg.Validate(); err != nil {
		Free(func(cs *CriticalSection) {
			recordEvent(cs, EvtConfigReject, cfg.Prescaler, cfg.Counts)
		})
		return fmt.Errorf("millis init: %w", err)
	}
	// Validate guarantees this succeeds
	prescale, _ := ParsePrescale(cfg.Prescaler)

	var taken bool
	Free(func(cs *CriticalSection) {
		st := millis.Get(cs)
		taken = st.taken
		if !taken {
			st.taken = true
			millis.Set(cs, st)
		}
	})
	if taken {
		panic(ErrTimerTaken)
	}

	tc.SetWaveformCTC()
	tc.SetCompare(cfg.compareRegister())
	tc.SetPrescaler(prescale)
	tc.EnableCompareInterrupt()

	Free(func(cs *CriticalSection) {
		millis.Set(cs, millisState{increment: cfg.Increment(), taken: true})
		recordEvent(cs, EvtTimerInit, cfg.Prescaler, cfg.Counts)
	})

	DebugPrintln("[MILLIS] timer0 " + prescale.String() + " ocr=" +
		utoa(uint32(cfg.compareRegister())) + " step=" + utoa(cfg.Increment()) + "ms")
	return nil
}

// TimerCompareMatch is the body of the compare-match interrupt handler.
// It advances the counter by one period.
func TimerCompareMatch() {
	Free(func(cs *CriticalSection) {
		st := millis.Get(cs)
		next := st.count + st.increment
		if next < st.count {
			recordEvent(cs, EvtWrap, st.count, next)
		}
		st.count = next
		millis.Set(cs, st)
	})
}

// Millis returns the milliseconds elapsed since MillisInit, in steps of
// the configured increment
func Millis() uint32 {
	var now uint32
	Free(func(cs *CriticalSection) {
		now = millis.Get(cs).count
	})
	return now
}

// Elapsed returns the milliseconds from start to now, correct across one
// counter wraparound
func Elapsed(start, now uint32) uint32 {
	return now - start
}

// DelayMillis busy-waits for at least ms milliseconds of counter time.
// Requires the millis interrupt to be running.
func DelayMillis(ms uint32) {
	start := Millis()
	for Elapsed(start, Millis()) < ms {
	}
}
