package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"millis/host/probe"
	"millis/host/serial"
)

var (
	probeOpts = struct {
		device   string
		baud     int
		count    int
		interval time.Duration
		verbose  bool
	}{}

	probeCmd = &cobra.Command{
		Use:   "probe",
		Short: "Measure a board's millis drift against the host clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := serial.DefaultConfig(probeOpts.device)
			cfg.Baud = probeOpts.baud

			fmt.Printf("Connecting to board on %s...\n", cfg.Device)
			port, err := serial.Open(cfg)
			if err != nil {
				return err
			}
			defer port.Close()

			if err := port.Flush(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			p := probe.New(port, probeOpts.interval)
			p.RetryEOF = cfg.TimeoutReportsEOF()

			report, err := p.Run(ctx, probeOpts.count)
			if err != nil {
				return err
			}

			if probeOpts.verbose {
				for i, s := range report.Samples {
					fmt.Printf("  %3d  %q  board=%dms  host=%s\n", i, s.Byte, s.Millis, s.Host.Format(time.StampMilli))
				}
			}
			fmt.Printf("Samples:    %d\n", len(report.Samples))
			fmt.Printf("Mean drift: %+.2f ms per interval\n", report.MeanDrift)
			fmt.Printf("Std dev:    %.2f ms\n", report.StdDev)
			fmt.Printf("p50/p90:    %+.2f / %+.2f ms\n", report.P50, report.P90)
			return nil
		},
	}
)

func init() {
	probeCmd.Flags().StringVarP(&probeOpts.device, "device", "d", "/dev/ttyACM0", "Serial device path")
	probeCmd.Flags().IntVar(&probeOpts.baud, "baud", 57600, "Baud rate")
	probeCmd.Flags().IntVarP(&probeOpts.count, "count", "n", 10, "Number of bytes to send")
	probeCmd.Flags().DurationVarP(&probeOpts.interval, "interval", "i", 1500*time.Millisecond, "Minimum time between bytes (the board holds each reply for 1s)")
	probeCmd.Flags().BoolVarP(&probeOpts.verbose, "verbose", "v", false, "Print every sample")
}
