// Package convert provides the conversion pipeline and the batch
// orchestration around it.
//
// # Pipeline
//
// A Pipeline converts the bytes of one Standard MIDI File:
//
//  1. Decode the file
//  2. Merge it into one track (Modus profile only)
//  3. Apply the transform rules
//  4. Write the instrument lead-in (Modus profile only)
//  5. Encode the result
//  6. Read it back with an independent reader (optional)
//
// # Manager
//
// The Manager runs the pipeline over many files:
//
//	manager, err := convert.NewManager(settings, func(event convert.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	err = manager.Initialize(ctx, []string{"/midi"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = manager.StartConversions(ctx)
//
// Files are converted concurrently, up to
// settings.MaxConcurrentConversions at a time. A file that fails is
// reported and does not stop the others; its output is never written.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
package convert
