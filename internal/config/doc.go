// Package config provides configuration management for modus-converter.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to transform.Config, model.PathConfig and
//     modus.HeaderOptions for other packages
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Full velocity range, pedals switched at 64
//	// Output next to the source as <name>_modus.mid
//	// Modus profile off
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.VelocityMax = 110
//	err := settings.Save("/path/to/config.json")
package config
