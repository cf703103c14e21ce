package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnsupportedPrescaler = errors.New("unsupported timer prescaler")
	ErrInvalidCompare       = errors.New("compare count out of range")
	ErrFractionalIncrement  = errors.New("timer period is not a whole number of milliseconds")
	ErrInvalidClock         = errors.New("clock frequency is not a multiple of 1kHz")
)

// Prescale selects the timer clock divisor. The values are the CS0[2:0]
// clock-select bit patterns of the 8-bit timer.
type Prescale uint8

const (
	Prescale8    Prescale = 0b010
	Prescale64   Prescale = 0b011
	Prescale256  Prescale = 0b100
	Prescale1024 Prescale = 0b101
)

// legalPrescalers lists the divisors the timer supports for millis use,
// in ascending order
var legalPrescalers = []Prescale{Prescale8, Prescale64, Prescale256, Prescale1024}

// MaxCounts is the longest period, in timer counts, that the 8-bit
// compare register can express
const MaxCounts = 256

// ParsePrescale maps a clock divisor to its clock-select setting
func ParsePrescale(divisor uint32) (Prescale, error) {
	switch divisor {
	case 8:
		return Prescale8, nil
	case 64:
		return Prescale64, nil
	case 256:
		return Prescale256, nil
	case 1024:
		return Prescale1024, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedPrescaler, divisor)
}

// Divisor returns the clock divisor, or 0 for an unknown setting
func (p Prescale) Divisor() uint32 {
	switch p {
	case Prescale8:
		return 8
	case Prescale64:
		return 64
	case Prescale256:
		return 256
	case Prescale1024:
		return 1024
	}
	return 0
}

func (p Prescale) String() string {
	if d := p.Divisor(); d != 0 {
		return "clk/" + utoa(d)
	}
	return "clk/?(" + utoa(uint32(p)) + ")"
}

// TimerConfig is a prescaler/compare pair for a given CPU clock
type TimerConfig struct {
	ClockFreq uint32 // Hz
	Prescaler uint32 // clock divisor
	Counts    uint32 // compare-match count
}

// Validate checks the pair against the timer's capabilities and that one
// compare-match period is a whole number of milliseconds
func (c TimerConfig) Validate() error {
	if c.ClockFreq == 0 || c.ClockFreq%1000 != 0 {
		return fmt.Errorf("%w: %d Hz", ErrInvalidClock, c.ClockFreq)
	}
	if _, err := ParsePrescale(c.Prescaler); err != nil {
		return err
	}
	if c.Counts == 0 || c.Counts > MaxCounts {
		return fmt.Errorf("%w: %d (1..%d)", ErrInvalidCompare, c.Counts, MaxCounts)
	}
	product := uint64(c.Prescaler) * uint64(c.Counts)
	if product%uint64(c.ClockFreq/1000) != 0 {
		return fmt.Errorf("%w: %d * %d / %d kHz", ErrFractionalIncrement,
			c.Prescaler, c.Counts, c.ClockFreq/1000)
	}
	return nil
}

// Increment returns the milliseconds added per compare match.
// Only meaningful for a configuration that passes Validate.
func (c TimerConfig) Increment() uint32 {
	if c.ClockFreq < 1000 {
		return 0
	}
	return uint32(uint64(c.Prescaler) * uint64(c.Counts) / uint64(c.ClockFreq/1000))
}

// Period returns the real time between two compare matches
func (c TimerConfig) Period() time.Duration {
	return time.Duration(c.Increment()) * time.Millisecond
}

// compareRegister returns the OCR value. The timer counts 0..OCR inclusive,
// so OCR is one less than the number of counts per period.
func (c TimerConfig) compareRegister() uint8 {
	return uint8(c.Counts - 1)
}

// DocumentedCounts are the compare counts that give whole-millisecond
// periods at 16MHz for every legal divisor from 64 up
var DocumentedCounts = []uint32{125, 250}

// LegalConfigs returns every legal prescaler/count pair built from
// DocumentedCounts whose period is a whole number of milliseconds at clock
func LegalConfigs(clock uint32) []TimerConfig {
	var out []TimerConfig
	for _, p := range legalPrescalers {
		for _, n := range DocumentedCounts {
			cfg := TimerConfig{ClockFreq: clock, Prescaler: p.Divisor(), Counts: n}
			if cfg.Validate() == nil {
				out = append(out, cfg)
			}
		}
	}
	return out
}

func (c TimerConfig) String() string {
	return utoa(c.Prescaler) + "x" + utoa(c.Counts) + "@" + utoa(c.ClockFreq/1000) + "kHz"
}
