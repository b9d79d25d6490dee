package model

import (
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/modus-converter/internal/io"
)

// DefaultSuffix is appended to converted file names.
const DefaultSuffix = "_modus"

// DefaultFileNameFormat keeps the source name and extension.
const DefaultFileNameFormat = "{name}{suffix}{ext}"

// Job represents a single MIDI file to convert.
//
// The output path is computed when creating a job via NewJob, using the
// source file's directory, name and extension and the PathConfig templates.
//
// Example:
//
//	cfg := &PathConfig{Suffix: "_modus"}
//	job := NewJob("/midi/Chopin - Nocturne.mid", cfg)
//	// job.OutputPath = "/midi/Chopin - Nocturne_modus.mid"
type Job struct {
	// SourcePath is the MIDI file to read.
	SourcePath string

	// Name is the source file name without directory and extension.
	// It is written as the track name when the file has none.
	Name string

	// Ext is the source file extension, including the dot.
	Ext string

	// OutputPath is the computed file path the converted file is written to.
	// It never equals SourcePath.
	OutputPath string
}

// PathConfig holds output path formatting settings.
type PathConfig struct {
	// OutputPath is the directory template for converted files.
	// {dir} is replaced with the source file's directory. Empty means {dir}.
	// Example: "/music/converted" or "{dir}/modus"
	OutputPath string

	// FileNameFormat is the template for output file names.
	// {name} is the source name and {suffix} the Suffix. {ext} keeps the
	// source extension, which always ends the name. Empty means
	// DefaultFileNameFormat.
	FileNameFormat string

	// Suffix is substituted for {suffix}.
	Suffix string

	// ModusFileNames shortens the output name, extension excluded, to the
	// ASCII form the instrument's file browser displays.
	ModusFileNames bool
}

// NewJob creates a new Job with computed output path.
//
// Invalid filename characters are automatically replaced with underscores.
// If the computed path equals the source path, DefaultSuffix is appended to
// the name so a conversion never overwrites its input.
func NewJob(sourcePath string, cfg *PathConfig) *Job {
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)

	job := &Job{
		SourcePath: sourcePath,
		Name:       strings.TrimSuffix(base, ext),
		Ext:        ext,
	}
	job.OutputPath = job.parseOutputPath(cfg)

	return job
}

// IsOutput reports whether the job's source looks like the output of an
// earlier conversion with the same settings.
func (j *Job) IsOutput(cfg *PathConfig) bool {
	return cfg.Suffix != "" && strings.HasSuffix(j.Name, cfg.Suffix)
}

// parseOutputPath computes the full output path from the config templates.
func (j *Job) parseOutputPath(cfg *PathConfig) string {
	dir := j.parseOutputDir(cfg)
	filePath := filepath.Join(dir, j.parseFileName(cfg, cfg.Suffix))

	if samePath(filePath, j.SourcePath) {
		filePath = filepath.Join(dir, j.parseFileName(cfg, cfg.Suffix+DefaultSuffix))
	}

	// Limit total path length for Windows compatibility (MAX_PATH = 260)
	if len(filePath) >= 260 {
		fileName := filepath.Base(filePath)
		ext := filepath.Ext(fileName)
		maxLen := 259 - len(dir) - 1 - len(ext)
		stem := strings.TrimSuffix(fileName, ext)
		if maxLen > 0 && maxLen < len(stem) {
			filePath = filepath.Join(dir, stem[:maxLen]+ext)
		}
	}

	return filePath
}

// parseOutputDir computes the output directory from the config template.
func (j *Job) parseOutputDir(cfg *PathConfig) string {
	srcDir := filepath.Dir(j.SourcePath)
	if cfg.OutputPath == "" {
		return srcDir
	}
	return filepath.Clean(strings.ReplaceAll(cfg.OutputPath, "{dir}", srcDir))
}

// parseFileName computes the output file name from the config template.
func (j *Job) parseFileName(cfg *PathConfig, suffix string) string {
	format := cfg.FileNameFormat
	if format == "" {
		format = DefaultFileNameFormat
	}

	fileName := strings.ReplaceAll(format, "{ext}", "")
	fileName = strings.ReplaceAll(fileName, "{name}", j.Name)
	fileName = strings.ReplaceAll(fileName, "{suffix}", suffix)
	if cfg.ModusFileNames {
		fileName = ioutils.ModusFileName(fileName)
	} else {
		fileName = ioutils.SanitizeFileName(fileName)
	}

	if strings.Contains(format, "{ext}") {
		fileName += j.Ext
	}
	return fileName
}

func samePath(a, b string) bool {
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
