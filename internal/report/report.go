package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hako/durafmt"

	"github.com/handiism/modus-converter/internal/smf"
)

// MultiSeparator joins several values of the same kind.
const MultiSeparator = "; "

// Columns are the report header names, in order.
var Columns = []string{
	"filename",
	"track_name",
	"instrument_name",
	"text",
	"copyright",
	"format",
	"tracks",
	"duration",
}

var shortUnits = mustUnits("y:y,wk:wk,d:d,h:h,m:m,s:s,ms:ms,us:us")

func mustUnits(s string) durafmt.Units {
	units, err := durafmt.DefaultUnitsCoder.Decode(s)
	if err != nil {
		panic("report: bad duration units " + s + ": " + err.Error())
	}
	return units
}

// Row is the header metadata of one file.
type Row struct {
	Filename       string
	TrackName      string
	InstrumentName string
	Text           string
	Copyright      string
	Format         uint16
	Tracks         int
	Duration       time.Duration
}

// Extract collects the header of f. The header is every event of the
// merged track before the first channel message that is not a control or
// program change.
func Extract(filename string, f *smf.File) Row {
	row := Row{
		Filename: filename,
		Format:   f.Format,
		Tracks:   len(f.Tracks),
		Duration: smf.Duration(f),
	}

	values := make(map[byte][]string)
	merged := smf.MergeTracks(f)
scan:
	for _, ev := range merged.Tracks[0].Events {
		switch m := ev.Message.(type) {
		case smf.ControlChange, smf.ProgramChange:
		case smf.Voice:
			break scan
		case smf.Meta:
			if text, ok := m.Text(); ok {
				values[m.Type] = append(values[m.Type], text)
			}
		}
	}

	row.TrackName = strings.Join(values[smf.MetaTrackName], MultiSeparator)
	row.InstrumentName = strings.Join(values[smf.MetaInstrumentName], MultiSeparator)
	row.Text = strings.Join(values[smf.MetaText], MultiSeparator)
	row.Copyright = strings.Join(values[smf.MetaCopyright], MultiSeparator)
	return row
}

// Fields returns the row's values in Columns order.
func (r Row) Fields() []string {
	return []string{
		r.Filename,
		r.TrackName,
		r.InstrumentName,
		r.Text,
		r.Copyright,
		strconv.Itoa(int(r.Format)),
		strconv.Itoa(r.Tracks),
		FormatDuration(r.Duration),
	}
}

// FormatDuration renders d with its two largest units, e.g. "3 m 25 s".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0 s"
	}
	return durafmt.Parse(d.Round(time.Second)).LimitFirstN(2).Format(shortUnits)
}

// Format is a report file format.
type Format int

const (
	// FormatTSV separates fields with tabs.
	FormatTSV Format = iota

	// FormatCSV separates fields with commas.
	FormatCSV
)

// ParseFormat parses "tsv" or "csv".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "tsv":
		return FormatTSV, nil
	case "csv":
		return FormatCSV, nil
	}
	return FormatTSV, fmt.Errorf("unknown report format %q", s)
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	if f == FormatCSV {
		return ".csv"
	}
	return ".tsv"
}

// Creator renders header rows as a delimited table.
//
// Example:
//
//	creator := NewCreator(FormatTSV)
//	content, _ := creator.CreateReport(rows)
//
//	// Result:
//	// filename	track_name	instrument_name	text	copyright	format	tracks	duration
//	// song.mid	Nocturne	Piano			1	2	4 m 31 s
type Creator struct {
	format Format
}

// NewCreator creates a new Creator.
func NewCreator(format Format) *Creator {
	return &Creator{format: format}
}

// CreateReport renders a header line followed by one line per row.
func (c *Creator) CreateReport(rows []Row) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if c.format == FormatTSV {
		w.Comma = '\t'
	}

	if err := w.Write(Columns); err != nil {
		return "", err
	}
	for _, r := range rows {
		if err := w.Write(r.Fields()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
