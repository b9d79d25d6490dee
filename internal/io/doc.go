// Package ioutils provides the file system helpers used by the converter.
//
// This package contains functions for:
//   - Atomic file writing
//   - Discovery of MIDI files in directory trees
//   - Filename sanitization for cross-platform compatibility
//   - Short ASCII filenames for instruments with limited file browsers
//   - Directory creation
//
// # File Operations
//
//	// Write a converted file; readers never see a partial file
//	err := ioutils.WriteFileAtomic(ctx, "/out/song_modus.mid", data)
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/out")
//
// # Discovery
//
//	files, err := ioutils.FindMIDIFiles(ctx, "/midi")
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
//
// Use ModusFileName when the file will be browsed on the instrument itself:
//
//	short := ioutils.ModusFileName("Étude Op. 10: No. 3 (Tristesse)") // "EtudeOp.10_No.3(Tristesse)"
package ioutils
