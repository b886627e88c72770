// Package overlay draws the on-screen press indicators. It consumes
// indicator snapshots and owns all windowing; nothing here feeds back into
// the core, so the event path stays one-way.
package overlay

import "clickhalo/internal/config"

// Options controls how indicators are drawn, taken from the config file
type Options struct {
	// PrimaryEnabled and SecondaryEnabled select which buttons get an indicator
	PrimaryEnabled   bool
	SecondaryEnabled bool

	// Size is the indicator diameter in pixels
	Size int

	// Alpha is the indicator opacity, 0-255
	Alpha uint8

	// OffsetX and OffsetY shift the indicator relative to the cursor
	OffsetX int
	OffsetY int
}

// OptionsFromConfig maps the indicator section of the config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PrimaryEnabled:   cfg.Indicator.PrimaryEnabled,
		SecondaryEnabled: cfg.Indicator.SecondaryEnabled,
		Size:             cfg.Indicator.Size,
		Alpha:            cfg.Indicator.Alpha,
		OffsetX:          cfg.Indicator.OffsetX,
		OffsetY:          cfg.Indicator.OffsetY,
	}
}
