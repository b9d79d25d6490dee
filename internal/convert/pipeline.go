package convert

import (
	"fmt"
	"time"

	"github.com/handiism/modus-converter/internal/config"
	"github.com/handiism/modus-converter/internal/modus"
	"github.com/handiism/modus-converter/internal/smf"
	"github.com/handiism/modus-converter/internal/transform"
)

// Result is the outcome of converting one file.
type Result struct {
	// Data is the encoded output file.
	Data []byte

	// File is the converted model Data was encoded from.
	File *smf.File

	// Stats counts what the transform changed.
	Stats transform.Stats

	InputSize  int
	OutputSize int

	// Duration is the playing time of the output.
	Duration time.Duration
}

// Pipeline converts SMF bytes: decode, transform, encode and optionally
// verify. With the Modus profile enabled the file is merged into one track
// before the transform and given the instrument lead-in after it.
type Pipeline struct {
	engine  *transform.Engine
	profile *modus.Profile
	encoder smf.Encoder
	verify  bool
}

// NewPipeline builds a Pipeline from settings.
func NewPipeline(settings *config.Settings) (*Pipeline, error) {
	cfg, err := settings.ToTransformConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid transform settings: %w", err)
	}

	p := &Pipeline{
		encoder: smf.Encoder{RunningStatus: settings.RunningStatus},
		verify:  settings.Verify,
	}

	var opts []transform.Option
	if settings.ModusProfile {
		p.profile = modus.DefaultProfile()
		opts = append(opts, transform.WithFilter(p.profile))
	}

	p.engine, err = transform.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Convert runs the pipeline over one file's bytes. header is only used
// with the Modus profile. Nothing is encoded unless decoding and the
// transform succeed.
func (p *Pipeline) Convert(data []byte, header modus.HeaderOptions) (*Result, error) {
	f, err := smf.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if p.profile != nil {
		f = smf.MergeTracks(f)
	}

	out, stats, err := p.engine.Apply(f)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}

	if p.profile != nil {
		track, err := p.profile.Prepare(out.Tracks[0], header)
		if err != nil {
			return nil, fmt.Errorf("modus lead-in: %w", err)
		}
		out.Tracks[0] = track
	}

	encoded, err := p.encoder.Encode(out)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	if p.verify {
		if err := Verify(encoded, out); err != nil {
			return nil, fmt.Errorf("verify: %w", err)
		}
	}

	return &Result{
		Data:       encoded,
		File:       out,
		Stats:      stats,
		InputSize:  len(data),
		OutputSize: len(encoded),
		Duration:   smf.Duration(out),
	}, nil
}
