package sim

import (
	"fmt"
	"sync"

	"millis/core"
)

// NumDigitalPins is the digital pin count of the Arduino Mega 2560
const NumDigitalPins = 70

// LEDPin is the on-board LED (D13)
const LEDPin core.GPIOPin = 13

// Pins is a simulated GPIO bank
type Pins struct {
	mu      sync.Mutex
	outputs map[core.GPIOPin]bool
	changes int

	// OnChange, if set, is called after every output level change
	OnChange func(pin core.GPIOPin, value bool)
}

// NewPins returns a bank with every pin unconfigured
func NewPins() *Pins {
	return &Pins{outputs: make(map[core.GPIOPin]bool)}
}

func (p *Pins) ConfigureOutput(pin core.GPIOPin) error {
	if pin >= NumDigitalPins {
		return fmt.Errorf("invalid pin %d", pin)
	}
	p.mu.Lock()
	p.outputs[pin] = false
	p.mu.Unlock()
	return nil
}

func (p *Pins) SetPin(pin core.GPIOPin, value bool) error {
	p.mu.Lock()
	old, ok := p.outputs[pin]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("pin %d is not configured as output", pin)
	}
	p.outputs[pin] = value
	changed := old != value
	if changed {
		p.changes++
	}
	cb := p.OnChange
	p.mu.Unlock()

	if changed && cb != nil {
		cb(pin, value)
	}
	return nil
}

func (p *Pins) GetPin(pin core.GPIOPin) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.outputs[pin]
	if !ok {
		return false, fmt.Errorf("pin %d is not configured as output", pin)
	}
	return v, nil
}

// Changes returns the number of output level changes so far
func (p *Pins) Changes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.changes
}
