package sim

import (
	"fmt"
	"sync"

	"millis/core"
)

// SMCR bits
const (
	SMCR_SE  = 1 << 0
	SMCR_SM0 = 1 << 1
	SMCR_SM1 = 1 << 2
	SMCR_SM2 = 1 << 3

	smcrPowerSaveIdle  = SMCR_SM1 | SMCR_SM0           // 0b0110: power-save selected, sleep disabled
	smcrPowerSaveArmed = SMCR_SM1 | SMCR_SM0 | SMCR_SE // 0b0111: power-save selected, sleep enabled
)

// SleepController models the sleep mode control register
type SleepController struct {
	mu   sync.Mutex
	smcr uint8
}

func (c *SleepController) SetSleepMode(mode core.PowerMode) error {
	var v uint8
	switch mode {
	case core.PowerActive:
		v = smcrPowerSaveIdle
	case core.PowerSave:
		v = smcrPowerSaveArmed
	default:
		return fmt.Errorf("unknown power mode %d", mode)
	}
	c.mu.Lock()
	c.smcr = v
	c.mu.Unlock()
	return nil
}

// SMCR returns the raw register value
func (c *SleepController) SMCR() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.smcr
}

// Mode decodes the register back into a PowerMode
func (c *SleepController) Mode() core.PowerMode {
	if c.SMCR()&SMCR_SE != 0 {
		return core.PowerSave
	}
	return core.PowerActive
}
