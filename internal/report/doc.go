// Package report lists the header metadata of MIDI files: the names,
// texts and copyright notices written before the first note, plus the
// file's format, track count and playing time.
//
//	row := report.Extract("song.mid", file)
//	content, err := report.NewCreator(report.FormatTSV).CreateReport(rows)
package report
