package serial

import (
	"io"
	"os"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Standard input/output (for running a simulated board in a terminal)
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (the echo firmware runs at 57600)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the configuration the echo firmware expects
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        57600,
		ReadTimeout: 100,
	}
}

// TimeoutReportsEOF reports whether reads on a port opened with cfg return
// io.EOF when the read timeout expires without data
func (c *Config) TimeoutReportsEOF() bool {
	return c.ReadTimeout > 0
}

// StdioPort joins standard input and output into a Port
type StdioPort struct {
	in  io.Reader
	out io.Writer
}

// Stdio returns a Port reading os.Stdin and writing os.Stdout
func Stdio() *StdioPort {
	return &StdioPort{in: os.Stdin, out: os.Stdout}
}

func (p *StdioPort) Read(b []byte) (int, error) { return p.in.Read(b) }

func (p *StdioPort) Write(b []byte) (int, error) { return p.out.Write(b) }

func (p *StdioPort) Close() error { return nil }

func (p *StdioPort) Flush() error { return nil }
