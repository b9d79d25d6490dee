package model

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNewJob_OutputPath(t *testing.T) {
	src := filepath.Join("midi", "Chopin", "Nocturne: Op. 9.mid")

	tests := []struct {
		name string
		cfg  PathConfig
		want string
	}{
		{
			name: "default suffix next to source",
			cfg:  PathConfig{Suffix: DefaultSuffix},
			want: filepath.Join("midi", "Chopin", "Nocturne_ Op. 9_modus.mid"),
		},
		{
			name: "output directory",
			cfg:  PathConfig{OutputPath: filepath.Join("out", "converted"), Suffix: DefaultSuffix},
			want: filepath.Join("out", "converted", "Nocturne_ Op. 9_modus.mid"),
		},
		{
			name: "directory placeholder",
			cfg:  PathConfig{OutputPath: filepath.Join("{dir}", "modus"), Suffix: "-f11"},
			want: filepath.Join("midi", "Chopin", "modus", "Nocturne_ Op. 9-f11.mid"),
		},
		{
			name: "custom format",
			cfg:  PathConfig{FileNameFormat: "modus {name}{ext}"},
			want: filepath.Join("midi", "Chopin", "modus Nocturne_ Op. 9.mid"),
		},
		{
			name: "format without extension",
			cfg:  PathConfig{FileNameFormat: "{name}{suffix}", Suffix: ".smf"},
			want: filepath.Join("midi", "Chopin", "Nocturne_ Op. 9.smf"),
		},
		{
			name: "modus file names",
			cfg:  PathConfig{Suffix: DefaultSuffix, ModusFileNames: true},
			want: filepath.Join("midi", "Chopin", "Nocturne_Op.9_modus.mid"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewJob(src, &tt.cfg)
			if job.OutputPath != tt.want {
				t.Errorf("OutputPath = %q, want %q", job.OutputPath, tt.want)
			}
			if job.OutputPath == job.SourcePath {
				t.Error("OutputPath equals SourcePath")
			}
		})
	}
}

func TestNewJob_NeverOverwritesSource(t *testing.T) {
	src := filepath.Join("midi", "Prelude.mid")

	job := NewJob(src, &PathConfig{})
	want := filepath.Join("midi", "Prelude_modus.mid")
	if job.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", job.OutputPath, want)
	}
}

func TestNewJob_Fields(t *testing.T) {
	job := NewJob(filepath.Join("midi", "Prelude.MIDI"), &PathConfig{Suffix: DefaultSuffix})

	if job.Name != "Prelude" {
		t.Errorf("Name = %q, want %q", job.Name, "Prelude")
	}
	if job.Ext != ".MIDI" {
		t.Errorf("Ext = %q, want %q", job.Ext, ".MIDI")
	}
	if !strings.HasSuffix(job.OutputPath, "Prelude_modus.MIDI") {
		t.Errorf("OutputPath = %q, want suffix %q", job.OutputPath, "Prelude_modus.MIDI")
	}
}

func TestNewJob_LongPath(t *testing.T) {
	dir := filepath.Join("music", strings.Repeat("d", 100))
	src := filepath.Join(dir, strings.Repeat("n", 200)+".mid")

	job := NewJob(src, &PathConfig{Suffix: DefaultSuffix})
	if len(job.OutputPath) >= 260 {
		t.Errorf("len(OutputPath) = %d, want < 260", len(job.OutputPath))
	}
	if filepath.Ext(job.OutputPath) != ".mid" {
		t.Errorf("OutputPath %q lost its extension", job.OutputPath)
	}
}

func TestJob_IsOutput(t *testing.T) {
	cfg := &PathConfig{Suffix: DefaultSuffix}

	tests := []struct {
		path string
		want bool
	}{
		{"song.mid", false},
		{"song_modus.mid", true},
		{"song_modus.MIDI", true},
		{"modus_song.mid", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := NewJob(tt.path, cfg).IsOutput(cfg); got != tt.want {
				t.Errorf("IsOutput() = %v, want %v", got, tt.want)
			}
		})
	}

	if NewJob("song_modus.mid", &PathConfig{}).IsOutput(&PathConfig{}) {
		t.Error("IsOutput() with empty suffix = true, want false")
	}
}
