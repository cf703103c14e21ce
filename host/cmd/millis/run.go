package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"millis/app"
	"millis/config"
	"millis/core"
	"millis/host/serial"
	"millis/sim"
)

var (
	runOpts = struct {
		profile string
		device  string
		debug   bool
	}{}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the echo firmware on a simulated board",
		Long:  "Bring up a simulated board with the millis timer and answer every byte on stdin (or --device) with the elapsed time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := loadProfiles()
			if err != nil {
				return err
			}
			prof, err := profiles.Lookup(runOpts.profile)
			if err != nil {
				return fmt.Errorf("%w (available: %v)", err, profiles.Names())
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			err = runBoard(ctx, prof)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
)

func init() {
	runCmd.Flags().StringVarP(&runOpts.profile, "profile", "p", config.DefaultProfileName, "Board profile")
	runCmd.Flags().StringVarP(&runOpts.device, "device", "d", "", "Serial device to serve (default: stdin/stdout)")
	runCmd.Flags().BoolVarP(&runOpts.debug, "debug", "v", false, "Log timer and pin activity to stderr")
}

// runBoard is the simulated firmware main: configure the timer, enable
// interrupts, then hand control to the echo loop
func runBoard(ctx context.Context, prof config.Profile) error {
	core.SetDebugWriter(func(s string) { log.Println(s) })
	core.SetDebugEnabled(runOpts.debug)
	core.InitAsyncDebug()

	periph, err := sim.Take(prof.ClockFreq)
	if err != nil {
		return err
	}
	defer sim.Release()

	if err := core.MillisInitConfig(periph.TC0, prof.TimerConfig()); err != nil {
		return err
	}
	periph.TC0.Attach(core.TimerCompareMatch)

	// Timer is fully configured; interrupts may now be delivered
	core.EnableInterrupts()

	var port serial.Port = serial.Stdio()
	retryEOF := false
	if runOpts.device != "" {
		cfg := serial.DefaultConfig(runOpts.device)
		cfg.Baud = prof.Baud
		p, err := serial.Open(cfg)
		if err != nil {
			return err
		}
		port = p
		retryEOF = cfg.TimeoutReportsEOF()
	}
	defer port.Close()

	periph.Pins.OnChange = func(pin core.GPIOPin, value bool) {
		state := "low"
		if value {
			state = "high"
		}
		core.DebugAsync(fmt.Sprintf("[GPIO] pin %d %s at %dms", pin, state, core.Millis()))
	}

	timerCtx, cancelTimer := context.WithCancel(ctx)
	defer cancelTimer()
	go periph.TC0.Run(timerCtx)

	log.Printf("%s (%s) running: %v, %dms per tick", prof.Name, prof.MCU,
		prof.TimerConfig(), prof.TimerConfig().Increment())

	echo := app.NewEcho(port, core.Millis)
	echo.GPIO = periph.Pins
	echo.LEDPin = core.GPIOPin(prof.LEDPin)
	echo.Power = periph.CPU
	echo.Banner = prof.Banner
	echo.HoldMillis = prof.HoldMillis
	echo.RetryEOF = retryEOF

	// A blocked stdin read cannot observe ctx, so don't wait for the loop
	// once we're interrupted
	done := make(chan error, 1)
	go func() { done <- echo.Run(ctx) }()
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if runOpts.debug {
		core.DumpEvents()
	}
	log.Printf("stopped after %dms", core.Millis())
	return err
}
