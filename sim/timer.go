package sim

import (
	"context"
	"errors"
	"sync"
	"time"

	"millis/core"
)

// Timer0 register bits
const (
	TCCR0A_WGM00  = 1 << 0
	TCCR0A_WGM01  = 1 << 1 // CTC when set alone
	TCCR0B_CS     = 0b111  // clock select field
	TIMSK0_TOIE0  = 1 << 0
	TIMSK0_OCIE0A = 1 << 1
)

var ErrTimerStopped = errors.New("timer0 has no clock source selected")

// Timer0 models the 8-bit timer/counter 0 registers and raises its
// compare-match A interrupt through core.Dispatch
type Timer0 struct {
	mu        sync.Mutex
	clockFreq uint32

	TCCR0A uint8
	TCCR0B uint8
	OCR0A  uint8
	TIMSK0 uint8

	handler func()
	matches uint64
}

// NewTimer0 returns a stopped timer clocked from clockFreq
func NewTimer0(clockFreq uint32) *Timer0 {
	return &Timer0{clockFreq: clockFreq}
}

func (t *Timer0) SetWaveformCTC() {
	t.mu.Lock()
	t.TCCR0A = t.TCCR0A&^(TCCR0A_WGM00|TCCR0A_WGM01) | TCCR0A_WGM01
	t.mu.Unlock()
}

func (t *Timer0) SetCompare(ocr uint8) {
	t.mu.Lock()
	t.OCR0A = ocr
	t.mu.Unlock()
}

func (t *Timer0) SetPrescaler(p core.Prescale) {
	t.mu.Lock()
	t.TCCR0B = t.TCCR0B&^TCCR0B_CS | uint8(p)&TCCR0B_CS
	t.mu.Unlock()
}

func (t *Timer0) EnableCompareInterrupt() {
	t.mu.Lock()
	t.TIMSK0 |= TIMSK0_OCIE0A
	t.mu.Unlock()
}

func (t *Timer0) DisableCompareInterrupt() {
	t.mu.Lock()
	t.TIMSK0 &^= TIMSK0_OCIE0A
	t.mu.Unlock()
}

// Attach installs the compare-match A interrupt handler
func (t *Timer0) Attach(handler func()) {
	t.mu.Lock()
	t.handler = handler
	t.mu.Unlock()
}

// Period returns the time between compare matches implied by the
// registers, or 0 when no clock source is selected
func (t *Timer0) Period() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	div := core.Prescale(t.TCCR0B & TCCR0B_CS).Divisor()
	if div == 0 || t.clockFreq == 0 {
		return 0
	}
	counts := uint64(256)
	if t.TCCR0A&(TCCR0A_WGM00|TCCR0A_WGM01) == TCCR0A_WGM01 {
		counts = uint64(t.OCR0A) + 1
	}
	return time.Duration(counts * uint64(div) * uint64(time.Second) / uint64(t.clockFreq))
}

// Matches returns the number of compare matches the timer has produced
func (t *Timer0) Matches() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.matches
}

// Fire simulates n compare matches. Each one is delivered to the attached
// handler if the compare interrupt is unmasked and delivery is globally
// enabled. Returns the number of interrupts delivered.
func (t *Timer0) Fire(n int) int {
	delivered := 0
	for i := 0; i < n; i++ {
		t.mu.Lock()
		t.matches++
		handler := t.handler
		unmasked := t.TIMSK0&TIMSK0_OCIE0A != 0
		t.mu.Unlock()

		if handler == nil || !unmasked {
			continue
		}
		if core.Dispatch(handler) {
			delivered++
		}
	}
	return delivered
}

// Run produces compare matches at the programmed period until ctx is done
func (t *Timer0) Run(ctx context.Context) error {
	period := t.Period()
	if period <= 0 {
		return ErrTimerStopped
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.Fire(1)
		}
	}
}
