// Package probe talks to a board running the echo firmware and measures
// how its millis counter tracks the host clock
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/stat"

	"millis/core"
)

var ErrNoReply = errors.New("no reply from board")

// Sample is one answered byte
type Sample struct {
	Byte   byte
	Millis uint32    // board time in the reply
	Host   time.Time // when the reply line arrived
}

// Report summarizes the drift between board and host clocks. Drift is
// board elapsed minus host elapsed between consecutive samples, in ms.
type Report struct {
	Samples   []Sample
	Drift     []float64
	MeanDrift float64
	StdDev    float64
	P50       float64
	P90       float64
}

// Prober sends bytes to the board and collects its replies
type Prober struct {
	port    io.ReadWriter
	limiter *rate.Limiter
	lines   *lineReader

	// ReplyTimeout bounds the wait for each reply
	ReplyTimeout time.Duration
	// RetryEOF treats io.EOF as a read timeout, see serial.Config
	RetryEOF bool

	now func() time.Time
}

// New returns a Prober that sends at most one byte per interval
func New(port io.ReadWriter, interval time.Duration) *Prober {
	return &Prober{
		port:         port,
		limiter:      rate.NewLimiter(rate.Every(interval), 1),
		lines:        &lineReader{r: port},
		ReplyTimeout: 3 * time.Second,
		now:          time.Now,
	}
}

// ParseReply extracts the byte and board time from a reply line
func ParseReply(line string) (b byte, ms uint32, ok bool) {
	var v, t uint32
	n, err := fmt.Sscanf(strings.TrimSpace(line), "Got %d after %d ms!", &v, &t)
	if err != nil || n != 2 || v > 255 {
		return 0, 0, false
	}
	return byte(v), t, true
}

// Run sends count bytes and builds a drift report from the replies
func (p *Prober) Run(ctx context.Context, count int) (*Report, error) {
	samples := make([]Sample, 0, count)
	for i := 0; i < count; i++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		b := byte('a' + i%26)
		s, err := p.Exchange(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		samples = append(samples, s)
	}
	return Analyze(samples), nil
}

// Exchange sends b and waits for the matching reply. Other lines (the
// banner, stale replies) are skipped.
func (p *Prober) Exchange(ctx context.Context, b byte) (Sample, error) {
	if _, err := p.port.Write([]byte{b}); err != nil {
		return Sample{}, fmt.Errorf("send: %w", err)
	}

	deadline := p.now().Add(p.ReplyTimeout)
	for {
		line, err := p.lines.next(ctx, deadline, p.now, p.RetryEOF)
		if err != nil {
			return Sample{}, err
		}
		got, ms, ok := ParseReply(line)
		if ok && got == b {
			return Sample{Byte: b, Millis: ms, Host: p.now()}, nil
		}
	}
}

// Analyze computes drift statistics over consecutive samples
func Analyze(samples []Sample) *Report {
	r := &Report{Samples: samples}
	for i := 1; i < len(samples); i++ {
		board := core.Elapsed(samples[i-1].Millis, samples[i].Millis)
		host := samples[i].Host.Sub(samples[i-1].Host)
		r.Drift = append(r.Drift, float64(board)-float64(host)/float64(time.Millisecond))
	}
	if len(r.Drift) == 0 {
		return r
	}

	r.MeanDrift, r.StdDev = stat.MeanStdDev(r.Drift, nil)
	if len(r.Drift) == 1 {
		r.StdDev = 0
	}

	sorted := append([]float64(nil), r.Drift...)
	sort.Float64s(sorted)
	r.P50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	r.P90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return r
}

// lineReader assembles CRLF-terminated lines from a port whose reads may
// time out
type lineReader struct {
	r       io.Reader
	pending []byte
}

func (l *lineReader) next(ctx context.Context, deadline time.Time, now func() time.Time, retryEOF bool) (string, error) {
	var buf [64]byte
	for {
		if i := bytes.IndexByte(l.pending, '\n'); i >= 0 {
			line := string(l.pending[:i])
			l.pending = l.pending[i+1:]
			return strings.TrimRight(line, "\r"), nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if now().After(deadline) {
			return "", ErrNoReply
		}

		n, err := l.r.Read(buf[:])
		l.pending = append(l.pending, buf[:n]...)
		if err != nil {
			if retryEOF && errors.Is(err, io.EOF) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return "", ErrNoReply
			}
			return "", err
		}
	}
}
