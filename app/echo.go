// Package app is the serial echo application: it answers every received
// byte with the elapsed time and flips the board between power-save and
// active mode around each answer.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"millis/core"
)

const (
	DefaultBanner = "Hello from Arduino!"
	DefaultHold   = 1000 // ms the indicator stays on after a reply
)

// Echo is the echo loop and its collaborators
type Echo struct {
	Port  io.ReadWriter
	Clock func() uint32 // elapsed milliseconds, usually core.Millis

	// Indicator output, optional
	GPIO   core.GPIODriver
	LEDPin core.GPIOPin

	// Power mode toggle, optional
	Power core.PowerDriver

	Banner     string
	HoldMillis uint32

	// Delay holds for ms milliseconds. Defaults to a context-aware sleep.
	Delay func(ctx context.Context, ms uint32) error

	// Wait is called while no byte is available. Defaults to a 1ms sleep.
	Wait func()

	// RetryEOF treats io.EOF as "no byte yet", for serial ports that report
	// a read timeout that way. Otherwise EOF ends the loop.
	RetryEOF bool
}

// NewEcho returns an Echo with the default banner and hold time
func NewEcho(port io.ReadWriter, clock func() uint32) *Echo {
	return &Echo{
		Port:       port,
		Clock:      clock,
		Banner:     DefaultBanner,
		HoldMillis: DefaultHold,
	}
}

// Run writes the banner and answers bytes until ctx is done, the port
// reaches EOF, or a collaborator fails
func (e *Echo) Run(ctx context.Context) error {
	if e.Clock == nil {
		e.Clock = core.Millis
	}
	if e.GPIO != nil {
		if err := e.GPIO.ConfigureOutput(e.LEDPin); err != nil {
			return fmt.Errorf("configure indicator: %w", err)
		}
	}

	if _, err := io.WriteString(e.Port, e.Banner+"\r\n"); err != nil {
		return fmt.Errorf("write banner: %w", err)
	}

	for {
		b, err := e.readByte(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := e.answer(ctx, b); err != nil {
			return err
		}
	}
}

// answer handles one received byte
func (e *Echo) answer(ctx context.Context, b byte) error {
	if err := e.setPower(core.PowerActive); err != nil {
		return err
	}
	if err := e.setLED(true); err != nil {
		return err
	}

	if _, err := e.Port.Write(FormatReply(b, e.Clock())); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}

	if err := e.delay(ctx, e.HoldMillis); err != nil {
		return err
	}

	if err := e.setLED(false); err != nil {
		return err
	}
	return e.setPower(core.PowerSave)
}

// FormatReply builds the "Got <b> after <ms> ms!" line
func FormatReply(b byte, ms uint32) []byte {
	line := make([]byte, 0, 32)
	line = append(line, "Got "...)
	line = core.AppendUint(line, uint32(b))
	line = append(line, " after "...)
	line = core.AppendUint(line, ms)
	line = append(line, " ms!\r\n"...)
	return line
}

func (e *Echo) readByte(ctx context.Context) (byte, error) {
	var buf [1]byte
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := e.Port.Read(buf[:])
		if n == 1 {
			return buf[0], nil
		}
		if err != nil && !(e.RetryEOF && errors.Is(err, io.EOF)) {
			return 0, err
		}
		if e.Wait != nil {
			e.Wait()
		} else {
			time.Sleep(time.Millisecond)
		}
	}
}

func (e *Echo) delay(ctx context.Context, ms uint32) error {
	if e.Delay != nil {
		return e.Delay(ctx, ms)
	}
	t := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (e *Echo) setLED(on bool) error {
	if e.GPIO == nil {
		return nil
	}
	if err := e.GPIO.SetPin(e.LEDPin, on); err != nil {
		return fmt.Errorf("set indicator: %w", err)
	}
	return nil
}

func (e *Echo) setPower(mode core.PowerMode) error {
	if e.Power == nil {
		return nil
	}
	if err := e.Power.SetSleepMode(mode); err != nil {
		return fmt.Errorf("set power mode %v: %w", mode, err)
	}
	return nil
}
