//go:build atmega2560

package main

import (
	"errors"
	"machine"

	"millis/core"
)

var (
	errInvalidPin  = errors.New("invalid pin")
	errUnknownMode = errors.New("unknown power mode")
)

// digitalPins maps Arduino digital pin numbers to MCU pins. D0/D1 carry
// the serial console and are not offered.
var digitalPins = map[core.GPIOPin]machine.Pin{
	2:  machine.D2,
	3:  machine.D3,
	4:  machine.D4,
	5:  machine.D5,
	6:  machine.D6,
	7:  machine.D7,
	8:  machine.D8,
	9:  machine.D9,
	10: machine.D10,
	11: machine.D11,
	12: machine.D12,
	13: machine.D13,
}

// megaGPIO implements core.GPIODriver on the board's digital pins
type megaGPIO struct{}

func (megaGPIO) ConfigureOutput(pin core.GPIOPin) error {
	p, ok := digitalPins[pin]
	if !ok {
		return errInvalidPin
	}
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	return nil
}

func (megaGPIO) SetPin(pin core.GPIOPin, value bool) error {
	p, ok := digitalPins[pin]
	if !ok {
		return errInvalidPin
	}
	p.Set(value)
	return nil
}

func (megaGPIO) GetPin(pin core.GPIOPin) (bool, error) {
	p, ok := digitalPins[pin]
	if !ok {
		return false, errInvalidPin
	}
	return p.Get(), nil
}
