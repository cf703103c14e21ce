// Package sim provides hosted stand-ins for the ATmega2560 peripherals the
// millis firmware uses, so the firmware core can run and be tested on a
// regular Go runtime.
package sim

import (
	"errors"
	"sync"
)

var ErrAlreadyTaken = errors.New("peripherals already taken")

// Peripherals is the set of simulated devices on one board
type Peripherals struct {
	TC0  *Timer0
	Pins *Pins
	CPU  *SleepController
}

var (
	takeMu sync.Mutex
	taken  bool
)

// Take returns the board peripherals. Ownership is exclusive: every call
// after the first fails until Release.
func Take(clockFreq uint32) (*Peripherals, error) {
	takeMu.Lock()
	defer takeMu.Unlock()

	if taken {
		return nil, ErrAlreadyTaken
	}
	taken = true
	return &Peripherals{
		TC0:  NewTimer0(clockFreq),
		Pins: NewPins(),
		CPU:  &SleepController{},
	}, nil
}

// MustTake is Take that panics if the peripherals are already owned
func MustTake(clockFreq uint32) *Peripherals {
	p, err := Take(clockFreq)
	if err != nil {
		panic(err)
	}
	return p
}

// Release gives the peripherals back so another simulated board can take
// them
func Release() {
	takeMu.Lock()
	taken = false
	takeMu.Unlock()
}
