//go:build atmega2560

package main

import (
	"context"
	"machine"

	"millis/app"
	"millis/core"
)

const ledPin core.GPIOPin = 13

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: 57600})

	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s + "\r\n"))
	})

	// Timer must be fully configured before interrupts are enabled,
	// otherwise the handler could run against a half-programmed TC0
	InitMillis()
	core.EnableInterrupts()

	echo := app.NewEcho(machine.Serial, core.Millis)
	echo.GPIO = megaGPIO{}
	echo.LEDPin = ledPin
	echo.Power = sleepControl{}
	echo.Delay = func(ctx context.Context, ms uint32) error {
		core.DelayMillis(ms)
		return nil
	}
	// Poll the UART ring buffer; it is filled from the RX interrupt
	echo.Wait = func() {}

	if err := echo.Run(context.Background()); err != nil {
		core.SetDebugEnabled(true)
		core.DebugPrintln("echo: " + err.Error())
		core.DumpEvents()
	}
	for {
	}
}
