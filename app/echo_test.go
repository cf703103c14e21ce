package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"millis/core"
	"millis/sim"
)

// mockPort feeds input bytes and records output
type mockPort struct {
	in  *bytes.Reader
	out bytes.Buffer
	log *[]string
}

func (m *mockPort) Read(b []byte) (int, error) {
	return m.in.Read(b)
}

func (m *mockPort) Write(b []byte) (int, error) {
	if m.log != nil {
		*m.log = append(*m.log, "write")
	}
	return m.out.Write(b)
}

// recorder logs collaborator calls in order
type recorder struct {
	log *[]string
}

func (r recorder) ConfigureOutput(pin core.GPIOPin) error {
	*r.log = append(*r.log, "configure")
	return nil
}

func (r recorder) SetPin(pin core.GPIOPin, v bool) error {
	if v {
		*r.log = append(*r.log, "led on")
	} else {
		*r.log = append(*r.log, "led off")
	}
	return nil
}

func (r recorder) GetPin(pin core.GPIOPin) (bool, error) {
	return false, nil
}

func (r recorder) SetSleepMode(mode core.PowerMode) error {
	*r.log = append(*r.log, mode.String())
	return nil
}

func TestFormatReply(t *testing.T) {
	got := string(FormatReply('a', 80))
	if got != "Got 97 after 80 ms!\r\n" {
		t.Errorf("Expected %q, got %q", "Got 97 after 80 ms!\r\n", got)
	}
}

func TestEchoRepliesWithElapsedTime(t *testing.T) {
	port := &mockPort{in: bytes.NewReader([]byte("ab"))}
	now := uint32(0)
	echo := NewEcho(port, func() uint32 {
		now += 8
		return now
	})
	var holds []uint32
	echo.Delay = func(ctx context.Context, ms uint32) error {
		holds = append(holds, ms)
		return nil
	}

	if err := echo.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	expected := "Hello from Arduino!\r\nGot 97 after 8 ms!\r\nGot 98 after 16 ms!\r\n"
	if got := port.out.String(); got != expected {
		t.Errorf("Expected output %q, got %q", expected, got)
	}
	if len(holds) != 2 || holds[0] != DefaultHold {
		t.Errorf("Expected two %dms holds, got %v", DefaultHold, holds)
	}
}

func TestEchoSequence(t *testing.T) {
	var log []string
	port := &mockPort{in: bytes.NewReader([]byte("x")), log: &log}
	rec := recorder{log: &log}

	echo := NewEcho(port, func() uint32 { return 0 })
	echo.GPIO = rec
	echo.Power = rec
	echo.Delay = func(ctx context.Context, ms uint32) error {
		log = append(log, "hold")
		return nil
	}

	if err := echo.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	expected := []string{"configure", "write", "active", "led on", "write", "hold", "led off", "power-save"}
	if strings.Join(log, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected sequence %v, got %v", expected, log)
	}
}

func TestEchoWithSimulatedBoard(t *testing.T) {
	sim.Release()
	core.ReleaseTimer()
	p := sim.MustTake(core.ClockFreq)
	defer func() {
		core.DisableInterruptsGlobal()
		core.ReleaseTimer()
		sim.Release()
	}()

	core.MillisInit(p.TC0)
	p.TC0.Attach(core.TimerCompareMatch)
	core.EnableInterrupts()
	p.TC0.Fire(10)

	port := &mockPort{in: bytes.NewReader([]byte{'!'})}
	echo := NewEcho(port, core.Millis)
	echo.GPIO = p.Pins
	echo.LEDPin = sim.LEDPin
	echo.Power = p.CPU
	echo.HoldMillis = 1

	if err := echo.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(port.out.String(), "Got 33 after 80 ms!\r\n") {
		t.Errorf("Expected reply with 80ms, got %q", port.out.String())
	}
	if p.Pins.Changes() != 2 {
		t.Errorf("Expected LED on and off, got %d changes", p.Pins.Changes())
	}
	if p.CPU.Mode() != core.PowerSave {
		t.Errorf("Expected power-save after reply, got %v", p.CPU.Mode())
	}
}

// timeoutPort reports EOF on every empty read, like a serial port with a
// read timeout
type timeoutPort struct {
	data []byte
	out  bytes.Buffer
}

func (p *timeoutPort) Read(b []byte) (int, error) {
	if len(p.data) == 0 {
		return 0, io.EOF
	}
	n := copy(b, p.data)
	p.data = p.data[n:]
	return n, nil
}

func (p *timeoutPort) Write(b []byte) (int, error) {
	return p.out.Write(b)
}

func TestEchoRetryEOFUntilCancelled(t *testing.T) {
	port := &timeoutPort{data: []byte{'z'}}
	echo := NewEcho(port, func() uint32 { return 5 })
	echo.RetryEOF = true
	echo.HoldMillis = 0

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := echo.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
	if !strings.Contains(port.out.String(), "Got 122 after 5 ms!") {
		t.Errorf("Expected reply before timeout, got %q", port.out.String())
	}
}

func TestEchoCancelled(t *testing.T) {
	port := &mockPort{in: bytes.NewReader([]byte("q"))}
	echo := NewEcho(port, func() uint32 { return 0 })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Cancelled before any byte is read; only the banner goes out
	if err := echo.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected Canceled, got %v", err)
	}
	if port.out.String() != DefaultBanner+"\r\n" {
		t.Errorf("Expected only the banner, got %q", port.out.String())
	}
}

type failingWriter struct{ bytes.Reader }

func (failingWriter) Write(b []byte) (int, error) {
	return 0, errors.New("port gone")
}

func TestEchoWriteError(t *testing.T) {
	echo := NewEcho(&failingWriter{}, func() uint32 { return 0 })
	err := echo.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "write banner") {
		t.Errorf("Expected banner write error, got %v", err)
	}
}
