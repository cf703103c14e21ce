package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"millis/core"
)

// bringUp takes the peripherals and starts millis on timer 0
func bringUp(t *testing.T, cfg core.TimerConfig) *Peripherals {
	t.Helper()
	Release()
	core.ReleaseTimer()

	p, err := Take(cfg.ClockFreq)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	t.Cleanup(func() {
		core.DisableInterruptsGlobal()
		core.ReleaseTimer()
		Release()
	})

	if err := core.MillisInitConfig(p.TC0, cfg); err != nil {
		t.Fatalf("MillisInitConfig failed: %v", err)
	}
	p.TC0.Attach(core.TimerCompareMatch)
	return p
}

func TestTakeIsExclusive(t *testing.T) {
	Release()
	defer Release()

	if _, err := Take(16000000); err != nil {
		t.Fatalf("First Take failed: %v", err)
	}
	if _, err := Take(16000000); !errors.Is(err, ErrAlreadyTaken) {
		t.Errorf("Expected ErrAlreadyTaken, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected MustTake to panic")
		}
	}()
	MustTake(16000000)
}

func TestTimer0Registers(t *testing.T) {
	p := bringUp(t, core.TimerConfig{ClockFreq: 16000000, Prescaler: 1024, Counts: 125})

	tc := p.TC0
	if tc.TCCR0A != TCCR0A_WGM01 {
		t.Errorf("Expected TCCR0A 0x%02X (CTC), got 0x%02X", TCCR0A_WGM01, tc.TCCR0A)
	}
	if tc.TCCR0B&TCCR0B_CS != uint8(core.Prescale1024) {
		t.Errorf("Expected CS0 0b101, got 0b%03b", tc.TCCR0B&TCCR0B_CS)
	}
	if tc.OCR0A != 124 {
		t.Errorf("Expected OCR0A 124, got %d", tc.OCR0A)
	}
	if tc.TIMSK0 != TIMSK0_OCIE0A {
		t.Errorf("Expected only OCIE0A enabled, got 0x%02X", tc.TIMSK0)
	}
	if period := tc.Period(); period != 8*time.Millisecond {
		t.Errorf("Expected 8ms period, got %v", period)
	}
}

func TestTimer0PeriodTable(t *testing.T) {
	for _, cfg := range core.LegalConfigs(16000000) {
		tc := NewTimer0(cfg.ClockFreq)
		prescale, _ := core.ParsePrescale(cfg.Prescaler)
		tc.SetWaveformCTC()
		tc.SetCompare(uint8(cfg.Counts - 1))
		tc.SetPrescaler(prescale)

		if tc.Period() != cfg.Period() {
			t.Errorf("%v: register period %v, config period %v", cfg, tc.Period(), cfg.Period())
		}
	}

	if NewTimer0(16000000).Period() != 0 {
		t.Error("Expected zero period with no clock source")
	}
}

func TestFireBeforeGlobalEnable(t *testing.T) {
	p := bringUp(t, core.DefaultTimerConfig())

	if n := p.TC0.Fire(5); n != 0 {
		t.Errorf("Expected no delivery before EnableInterrupts, got %d", n)
	}
	if p.TC0.Matches() != 5 {
		t.Errorf("Expected 5 compare matches, got %d", p.TC0.Matches())
	}
	if core.Millis() != 0 {
		t.Errorf("Expected counter 0, got %d", core.Millis())
	}
}

func TestFireMaskedInterrupt(t *testing.T) {
	p := bringUp(t, core.DefaultTimerConfig())
	core.EnableInterrupts()

	p.TC0.DisableCompareInterrupt()
	if n := p.TC0.Fire(3); n != 0 {
		t.Errorf("Expected no delivery with OCIE0A masked, got %d", n)
	}
	p.TC0.EnableCompareInterrupt()
	if n := p.TC0.Fire(3); n != 3 {
		t.Errorf("Expected 3 deliveries, got %d", n)
	}
}

func TestBoardEndToEnd(t *testing.T) {
	p := bringUp(t, core.TimerConfig{ClockFreq: 16000000, Prescaler: 1024, Counts: 125})
	core.EnableInterrupts()

	if n := p.TC0.Fire(10); n != 10 {
		t.Fatalf("Expected 10 deliveries, got %d", n)
	}
	if got := core.Millis(); got != 80 {
		t.Errorf("Expected 80ms after 10 compare matches, got %d", got)
	}
}

func TestTimer0Run(t *testing.T) {
	p := bringUp(t, core.TimerConfig{ClockFreq: 16000000, Prescaler: 64, Counts: 250})
	core.EnableInterrupts()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := p.TC0.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
	if p.TC0.Matches() == 0 {
		t.Error("Expected compare matches while running")
	}
	if uint64(core.Millis()) != p.TC0.Matches() {
		t.Errorf("Expected 1ms per match: millis=%d matches=%d", core.Millis(), p.TC0.Matches())
	}
}

func TestTimer0RunStopped(t *testing.T) {
	if err := NewTimer0(16000000).Run(context.Background()); !errors.Is(err, ErrTimerStopped) {
		t.Errorf("Expected ErrTimerStopped, got %v", err)
	}
}

func TestPins(t *testing.T) {
	pins := NewPins()

	if err := pins.SetPin(LEDPin, true); err == nil {
		t.Error("Expected error setting unconfigured pin")
	}
	if err := pins.ConfigureOutput(NumDigitalPins); err == nil {
		t.Error("Expected error for out-of-range pin")
	}

	var seen []bool
	pins.OnChange = func(pin core.GPIOPin, v bool) { seen = append(seen, v) }

	if err := pins.ConfigureOutput(LEDPin); err != nil {
		t.Fatalf("ConfigureOutput failed: %v", err)
	}
	pins.SetPin(LEDPin, true)
	pins.SetPin(LEDPin, true)
	pins.SetPin(LEDPin, false)

	if pins.Changes() != 2 {
		t.Errorf("Expected 2 level changes, got %d", pins.Changes())
	}
	if len(seen) != 2 || !seen[0] || seen[1] {
		t.Errorf("Expected [true false], got %v", seen)
	}
	if v, _ := pins.GetPin(LEDPin); v {
		t.Error("Expected LED low")
	}
}

func TestSleepController(t *testing.T) {
	var c SleepController

	c.SetSleepMode(core.PowerSave)
	if c.SMCR() != 0b0111 {
		t.Errorf("Expected SMCR 0b0111, got 0b%04b", c.SMCR())
	}
	if c.Mode() != core.PowerSave {
		t.Errorf("Expected power-save, got %v", c.Mode())
	}

	c.SetSleepMode(core.PowerActive)
	if c.SMCR() != 0b0110 {
		t.Errorf("Expected SMCR 0b0110, got 0b%04b", c.SMCR())
	}
	if c.Mode() != core.PowerActive {
		t.Errorf("Expected active, got %v", c.Mode())
	}

	if err := c.SetSleepMode(core.PowerMode(9)); err == nil {
		t.Error("Expected error for unknown mode")
	}
}
