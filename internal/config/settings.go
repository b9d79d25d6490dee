package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/handiism/modus-converter/internal/model"
	"github.com/handiism/modus-converter/internal/modus"
	"github.com/handiism/modus-converter/internal/transform"
)

// Report formats.
const (
	ReportTSV = "tsv"
	ReportCSV = "csv"
)

// Settings holds all configuration options.
type Settings struct {
	// Transform settings
	VelocityMin          int    `json:"velocity_min"`
	VelocityMax          int    `json:"velocity_max"`
	VelocityMode         string `json:"velocity_mode"` // clamp, scale
	PedalThreshold       int    `json:"pedal_threshold"`
	PedalLevels          int    `json:"pedal_levels"`
	PedalControllers     []int  `json:"pedal_controllers"`
	CollapsePedalRepeats bool   `json:"collapse_pedal_repeats"`
	FilterRedundantCC    bool   `json:"filter_redundant_cc"`

	// Modus settings
	ModusProfile bool     `json:"modus_profile"`
	Copyright    string   `json:"copyright"`
	Texts        []string `json:"texts"`

	// Output settings
	OutputDir      string `json:"output_dir"`
	FileNameFormat string `json:"file_name_format"`
	Suffix         string `json:"suffix"`
	ModusFileNames bool   `json:"modus_file_names"`
	RunningStatus  bool   `json:"running_status"`

	// Processing settings
	MaxConcurrentConversions int  `json:"max_concurrent_conversions"`
	Verify                   bool `json:"verify"`

	// Report settings
	ReportFormat string `json:"report_format"` // tsv, csv
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	tc := transform.DefaultConfig()

	controllers := make([]int, len(tc.PedalControllers))
	for i, cc := range tc.PedalControllers {
		controllers[i] = int(cc)
	}

	return &Settings{
		VelocityMin:          int(tc.VelocityMin),
		VelocityMax:          int(tc.VelocityMax),
		VelocityMode:         tc.VelocityMode.String(),
		PedalThreshold:       int(tc.PedalThreshold),
		PedalLevels:          tc.PedalLevels,
		PedalControllers:     controllers,
		CollapsePedalRepeats: tc.CollapsePedalRepeats,
		FilterRedundantCC:    tc.FilterRedundantCC,

		ModusProfile: false,

		FileNameFormat: model.DefaultFileNameFormat,
		Suffix:         model.DefaultSuffix,
		ModusFileNames: false,
		RunningStatus:  false,

		MaxConcurrentConversions: 4,
		Verify:                   true,

		ReportFormat: ReportTSV,
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultPath returns the settings file location under the user's
// configuration directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "modus-converter.json"
	}
	return filepath.Join(dir, "modus-converter", "settings.json")
}

// Validate checks every setting that has a fixed range.
func (s *Settings) Validate() error {
	if _, err := s.ToTransformConfig(); err != nil {
		return err
	}
	if s.MaxConcurrentConversions < 1 {
		return fmt.Errorf("max_concurrent_conversions %d must be at least 1", s.MaxConcurrentConversions)
	}
	if s.ReportFormat != ReportTSV && s.ReportFormat != ReportCSV {
		return fmt.Errorf("report_format %q must be %q or %q", s.ReportFormat, ReportTSV, ReportCSV)
	}
	return nil
}

// ToTransformConfig converts settings to a validated transform.Config.
func (s *Settings) ToTransformConfig() (transform.Config, error) {
	mode, err := transform.ParseVelocityMode(s.VelocityMode)
	if err != nil {
		return transform.Config{}, err
	}

	var cfg transform.Config
	fields := []struct {
		name  string
		value int
		dst   *uint8
	}{
		{"velocity_min", s.VelocityMin, &cfg.VelocityMin},
		{"velocity_max", s.VelocityMax, &cfg.VelocityMax},
		{"pedal_threshold", s.PedalThreshold, &cfg.PedalThreshold},
	}
	for _, f := range fields {
		if f.value < 0 || f.value > 127 {
			return transform.Config{}, fmt.Errorf("%s %d must be within [0, 127]", f.name, f.value)
		}
		*f.dst = uint8(f.value)
	}

	for _, cc := range s.PedalControllers {
		if cc < 0 || cc > 127 {
			return transform.Config{}, fmt.Errorf("pedal controller %d must be within [0, 127]", cc)
		}
		cfg.PedalControllers = append(cfg.PedalControllers, uint8(cc))
	}

	cfg.VelocityMode = mode
	cfg.PedalLevels = s.PedalLevels
	cfg.CollapsePedalRepeats = s.CollapsePedalRepeats
	cfg.FilterRedundantCC = s.FilterRedundantCC

	if err := cfg.Validate(); err != nil {
		return transform.Config{}, err
	}
	return cfg, nil
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		OutputPath:     s.OutputDir,
		FileNameFormat: s.FileNameFormat,
		Suffix:         s.Suffix,
		ModusFileNames: s.ModusFileNames,
	}
}

// ToHeaderOptions converts settings to the header written by the Modus
// profile for a file whose default track name is trackName.
func (s *Settings) ToHeaderOptions(trackName string) modus.HeaderOptions {
	return modus.HeaderOptions{
		TrackName: trackName,
		Copyright: s.Copyright,
		Texts:     s.Texts,
	}
}
