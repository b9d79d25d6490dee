package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/modus-converter/internal/config"
	ioutils "github.com/handiism/modus-converter/internal/io"
	"github.com/handiism/modus-converter/internal/model"
	"github.com/handiism/modus-converter/internal/report"
	"github.com/handiism/modus-converter/internal/smf"
	"github.com/handiism/modus-converter/internal/transform"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a conversion progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Option configures a Manager.
type Option func(*Manager)

// WithDryRun converts files without writing any output.
func WithDryRun() Option {
	return func(m *Manager) {
		m.dryRun = true
	}
}

// Summary totals a finished batch.
type Summary struct {
	Converted   int
	Failed      int
	Total       int
	InputBytes  int64
	OutputBytes int64
	Stats       transform.Stats
}

// Manager coordinates batch conversions.
type Manager struct {
	settings *config.Settings
	pathCfg  *model.PathConfig
	pipeline *Pipeline
	dryRun   bool

	jobs           []*model.Job
	totalFiles     int32
	processedFiles int32
	failedFiles    int32
	inputBytes     int64
	outputBytes    int64
	stats          transform.Stats

	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewManager creates a new conversion Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) (*Manager, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	pipeline, err := NewPipeline(settings)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		settings:   settings,
		pathCfg:    settings.ToPathConfig(),
		pipeline:   pipeline,
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Initialize expands names into conversion jobs. Files are taken as given;
// directories are searched recursively for .mid and .midi files, skipping
// outputs of earlier conversions.
func (m *Manager) Initialize(ctx context.Context, names []string) error {
	seen := make(map[string]bool)
	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		m.jobs = append(m.jobs, model.NewJob(path, m.pathCfg))
	}

	for _, name := range names {
		info, err := os.Stat(name)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error reading %s: %v", name, err), Level: LevelError})
			continue
		}

		if !info.IsDir() {
			add(name)
			continue
		}

		files, err := ioutils.FindMIDIFiles(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error scanning %s: %v", name, err), Level: LevelError})
			continue
		}
		for _, file := range files {
			if model.NewJob(file, m.pathCfg).IsOutput(m.pathCfg) {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping converted file: %s", file), Level: LevelVerbose})
				continue
			}
			add(file)
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d MIDI files in %s", len(files), name), Level: LevelVerbose})
	}

	m.totalFiles = int32(len(m.jobs))
	if len(m.jobs) == 0 {
		return errors.New("no MIDI files found")
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Queued %d files", len(m.jobs)), Level: LevelInfo})
	return nil
}

// StartConversions converts all initialized jobs. It returns an error if
// any file failed or ctx was cancelled.
func (m *Manager) StartConversions(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentConversions)

	for _, job := range m.jobs {
		if gctx.Err() != nil {
			break
		}
		job := job
		g.Go(func() error {
			m.convertJob(gctx, job)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if failed := atomic.LoadInt32(&m.failedFiles); failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, m.totalFiles)
	}
	return nil
}

// GetProgress returns current conversion progress.
func (m *Manager) GetProgress() (processed, failed, total int32) {
	return atomic.LoadInt32(&m.processedFiles), atomic.LoadInt32(&m.failedFiles), m.totalFiles
}

// Summary returns the totals of the conversions run so far.
func (m *Manager) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	processed, failed, total := m.GetProgress()
	return Summary{
		Converted:   int(processed - failed),
		Failed:      int(failed),
		Total:       int(total),
		InputBytes:  atomic.LoadInt64(&m.inputBytes),
		OutputBytes: atomic.LoadInt64(&m.outputBytes),
		Stats:       m.stats,
	}
}

// GetJobNames returns the source paths of all initialized jobs.
func (m *Manager) GetJobNames() []string {
	names := make([]string, len(m.jobs))
	for i, job := range m.jobs {
		names[i] = job.SourcePath
	}
	return names
}

// Headers builds a header report row for every initialized job, in job
// order. Files that cannot be decoded are reported and left out.
func (m *Manager) Headers(ctx context.Context) ([]report.Row, error) {
	rows := make([]*report.Row, len(m.jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentConversions)

	for i, job := range m.jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(job.SourcePath)
			if err != nil {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error reading %s: %v", job.SourcePath, err), Level: LevelError})
				return nil
			}
			f, err := smf.Decode(data)
			if err != nil {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error decoding %s: %v", job.SourcePath, err), Level: LevelError})
				return nil
			}

			row := report.Extract(job.SourcePath, f)
			rows[i] = &row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]report.Row, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *Manager) convertJob(ctx context.Context, job *model.Job) {
	defer atomic.AddInt32(&m.processedFiles, 1)

	if err := m.convertFile(ctx, job); err != nil {
		atomic.AddInt32(&m.failedFiles, 1)

		level := LevelError
		if errors.Is(err, context.Canceled) {
			level = LevelWarning
		}
		msg := fmt.Sprintf("Error converting %s: %v", job.SourcePath, err)
		if transform.IsInvariantViolation(err) {
			msg = fmt.Sprintf("Internal error converting %s, please report it: %v", job.SourcePath, err)
		}
		m.progress(ProgressEvent{Message: msg, Level: level})
	}
}

func (m *Manager) convertFile(ctx context.Context, job *model.Job) error {
	data, err := os.ReadFile(job.SourcePath)
	if err != nil {
		return err
	}

	result, err := m.pipeline.Convert(data, m.settings.ToHeaderOptions(job.Name))
	if err != nil {
		return err
	}

	if !m.dryRun {
		if err := ioutils.EnsureDir(filepath.Dir(job.OutputPath)); err != nil {
			return err
		}
		if err := ioutils.WriteFileAtomic(ctx, job.OutputPath, result.Data); err != nil {
			return err
		}
	}

	atomic.AddInt64(&m.inputBytes, int64(result.InputSize))
	atomic.AddInt64(&m.outputBytes, int64(result.OutputSize))
	m.mu.Lock()
	m.stats.Add(result.Stats)
	m.mu.Unlock()

	m.progress(ProgressEvent{Message: fmt.Sprintf("%s: %s", filepath.Base(job.SourcePath), result.Stats), Level: LevelVerbose})
	if m.dryRun {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Checked: %s", job.SourcePath), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Converted: %s -> %s", job.SourcePath, job.OutputPath), Level: LevelSuccess})
	}
	return nil
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
