// Package model defines the core data structures used throughout
// the modus-converter application.
//
// # Job
//
// Job represents one MIDI file to convert, with its computed output path:
//
//	job := model.NewJob("/midi/Prelude.mid", pathConfig)
//	fmt.Println(job.Name)       // "Prelude", used as the default track name
//	fmt.Println(job.OutputPath) // "/midi/Prelude_modus.mid"
//
// # Path Configuration
//
// PathConfig controls how output paths are computed using placeholders:
//
//	cfg := &model.PathConfig{
//	    OutputPath:     "{dir}/converted",
//	    FileNameFormat: "{name}{suffix}{ext}",
//	    Suffix:         "_modus",
//	}
//
// Available placeholders: {dir} in OutputPath; {name}, {suffix}, {ext} in
// FileNameFormat.
package model
