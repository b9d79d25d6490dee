package transform

import (
	"fmt"
	"strings"
)

// Pedal controller numbers.
const (
	ControllerSustain   = 64
	ControllerSostenuto = 66
	ControllerSoft      = 67
)

// VelocityMode selects how out-of-range note-on velocities are handled.
type VelocityMode int

const (
	// VelocityClamp moves velocities outside the range to the nearest bound.
	VelocityClamp VelocityMode = iota

	// VelocityScale maps the full 1-127 range linearly onto the configured
	// range. Unlike clamping it changes in-range values too, so applying it
	// twice compresses the range twice.
	VelocityScale
)

// ParseVelocityMode parses "clamp" or "scale".
func ParseVelocityMode(s string) (VelocityMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return VelocityClamp, nil
	case "scale":
		return VelocityScale, nil
	}
	return VelocityClamp, fmt.Errorf("unknown velocity mode %q", s)
}

func (m VelocityMode) String() string {
	if m == VelocityScale {
		return "scale"
	}
	return "clamp"
}

// Config holds the compatibility thresholds. The right values depend on
// the target instrument and are supplied by the caller.
type Config struct {
	// VelocityMin and VelocityMax bound note-on velocities (1-127).
	VelocityMin uint8
	VelocityMax uint8

	// VelocityMode selects clamping or linear rescaling.
	VelocityMode VelocityMode

	// PedalThreshold is the value at and above which a pedal is on.
	PedalThreshold uint8

	// PedalControllers lists the controllers treated as pedals.
	PedalControllers []uint8

	// PedalLevels is the number of output values for pedal controllers.
	// 2 gives on/off thresholding at PedalThreshold; larger values snap
	// to evenly spaced levels (half-pedaling) and ignore the threshold.
	PedalLevels int

	// CollapsePedalRepeats drops pedal events that leave the requantized
	// pedal state unchanged.
	CollapsePedalRepeats bool

	// FilterRedundantCC drops a control change repeating the last value of
	// the same channel and controller at the same tick.
	FilterRedundantCC bool
}

// DefaultConfig returns thresholds that suit a Clavinova-class instrument:
// the full velocity range, pedals switched at their midpoint.
func DefaultConfig() Config {
	return Config{
		VelocityMin:          1,
		VelocityMax:          127,
		VelocityMode:         VelocityClamp,
		PedalThreshold:       64,
		PedalControllers:     []uint8{ControllerSustain, ControllerSostenuto, ControllerSoft},
		PedalLevels:          2,
		CollapsePedalRepeats: true,
		FilterRedundantCC:    true,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.VelocityMin < 1 || c.VelocityMax > 127 || c.VelocityMin > c.VelocityMax {
		return fmt.Errorf("velocity range [%d, %d] must lie within [1, 127] with min <= max", c.VelocityMin, c.VelocityMax)
	}
	if c.VelocityMode != VelocityClamp && c.VelocityMode != VelocityScale {
		return fmt.Errorf("unknown velocity mode %d", c.VelocityMode)
	}
	if c.PedalThreshold > 127 {
		return fmt.Errorf("pedal threshold %d must be within [0, 127]", c.PedalThreshold)
	}
	if c.PedalLevels < 2 || c.PedalLevels > 127 {
		return fmt.Errorf("pedal levels %d must be within [2, 127]", c.PedalLevels)
	}
	for _, cc := range c.PedalControllers {
		if cc > 127 {
			return fmt.Errorf("pedal controller %d must be within [0, 127]", cc)
		}
	}
	return nil
}
