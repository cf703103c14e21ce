package core

// PowerMode is the two-state sleep configuration toggled around serial waits
type PowerMode uint8

const (
	// PowerActive keeps the CPU in idle-capable mode while work is pending
	PowerActive PowerMode = iota
	// PowerSave enables the power-save sleep mode between requests
	PowerSave
)

func (m PowerMode) String() string {
	switch m {
	case PowerActive:
		return "active"
	case PowerSave:
		return "power-save"
	}
	return "unknown"
}

// PowerDriver applies a PowerMode. The register encoding is private to the
// implementation.
type PowerDriver interface {
	SetSleepMode(mode PowerMode) error
}
