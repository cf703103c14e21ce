// Package config loads board profiles for hosted millis runs
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"millis/core"
)

//go:embed boards.yaml
var rawBoards []byte

const DefaultProfileName = "mega2560"

var ErrUnknownProfile = errors.New("unknown board profile")

// Profile describes one board: its clock, millis timer settings and the
// echo application parameters
type Profile struct {
	Name       string `yaml:"name"`
	MCU        string `yaml:"mcu"`
	ClockFreq  uint32 `yaml:"clockFreq"`
	Prescaler  uint32 `yaml:"prescaler"`
	Counts     uint32 `yaml:"counts"`
	Baud       int    `yaml:"baud"`
	Banner     string `yaml:"banner"`
	HoldMillis uint32 `yaml:"holdMillis"`
	LEDPin     uint32 `yaml:"ledPin"`
}

// TimerConfig returns the profile's millis timer configuration
func (p Profile) TimerConfig() core.TimerConfig {
	return core.TimerConfig{ClockFreq: p.ClockFreq, Prescaler: p.Prescaler, Counts: p.Counts}
}

// Profiles is a set of board profiles
type Profiles []Profile

// Lookup returns the profile called name
func (ps Profiles) Lookup(name string) (Profile, error) {
	for _, p := range ps {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// Names lists the profile names in file order
func (ps Profiles) Names() []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// LoadProfiles parses YAML profile data, applies defaults and validates
// every profile's timer configuration
func LoadProfiles(data []byte) (Profiles, error) {
	var doc struct {
		Profiles Profiles `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	if len(doc.Profiles) == 0 {
		return nil, errors.New("no profiles defined")
	}

	seen := make(map[string]bool)
	for i := range doc.Profiles {
		p := &doc.Profiles[i]
		if p.Name == "" {
			return nil, fmt.Errorf("profile %d has no name", i)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate profile %q", p.Name)
		}
		seen[p.Name] = true

		applyDefaults(p)
		if err := p.TimerConfig().Validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}
	return doc.Profiles, nil
}

// LoadFile reads profiles from a YAML file
func LoadFile(path string) (Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadProfiles(data)
}

// Builtin returns the profiles compiled into the binary
func Builtin() Profiles {
	ps, err := LoadProfiles(rawBoards)
	if err != nil {
		panic(err)
	}
	return ps
}

// Default returns the built-in profile matching the compiled firmware
// constants
func Default() Profile {
	p, err := Builtin().Lookup(DefaultProfileName)
	if err != nil {
		panic(err)
	}
	return p
}

// applyDefaults fills in missing values with the firmware's compiled-in
// settings
func applyDefaults(p *Profile) {
	if p.MCU == "" {
		p.MCU = "atmega2560"
	}
	if p.ClockFreq == 0 {
		p.ClockFreq = core.ClockFreq
	}
	if p.Prescaler == 0 {
		p.Prescaler = core.Prescaler
	}
	if p.Counts == 0 {
		p.Counts = core.TimerCounts
	}
	if p.Baud == 0 {
		p.Baud = 57600
	}
	if p.Banner == "" {
		p.Banner = "Hello from Arduino!"
	}
	if p.HoldMillis == 0 {
		p.HoldMillis = 1000
	}
	if p.LEDPin == 0 {
		p.LEDPin = 13
	}
}
