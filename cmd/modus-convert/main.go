package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"

	"github.com/handiism/modus-converter/internal/config"
	"github.com/handiism/modus-converter/internal/convert"
	ioutils "github.com/handiism/modus-converter/internal/io"
	"github.com/handiism/modus-converter/internal/report"
)

// stringList collects a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ", ") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var texts stringList

	// Command line flags
	var (
		configFlag         = flag.String("config", "", "Path to config file (default: user config directory)")
		saveConfigFlag     = flag.Bool("save-config", false, "Write the effective settings to the config file and exit")
		outputFlag         = flag.String("output", "", "Output directory (default: next to each source file); with -headers, where the report is written")
		suffixFlag         = flag.String("suffix", "", "Suffix appended to output file names")
		velocityMinFlag    = flag.Int("velocity-min", 0, "Lowest note-on velocity")
		velocityMaxFlag    = flag.Int("velocity-max", 0, "Highest note-on velocity")
		velocityModeFlag   = flag.String("velocity-mode", "", "Velocity handling: clamp or scale")
		pedalThresholdFlag = flag.Int("pedal-threshold", 0, "Pedal value at or above which a two-level pedal is down")
		pedalLevelsFlag    = flag.Int("pedal-levels", 0, "Number of pedal positions kept")
		filterFlag         = flag.Bool("filter-redundant", true, "Drop repeated control changes at the same tick")
		modusFlag          = flag.Bool("modus", false, "Apply the Modus profile and lead-in (merges to format 0)")
		verifyFlag         = flag.Bool("verify", true, "Read every output back with an independent reader")
		runningStatusFlag  = flag.Bool("running-status", false, "Compress output with running status")
		headersFlag        = flag.Bool("headers", false, "Print a header report instead of converting")
		formatFlag         = flag.String("format", "", "Header report format: tsv or csv")
		jobsFlag           = flag.Int("jobs", 0, "Number of files converted in parallel")
		verboseFlag        = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag         = flag.Bool("dry-run", false, "Convert without writing any file")
	)
	flag.Var(&texts, "text", "Text meta written by the Modus lead-in (repeatable)")

	flag.Parse()

	if flag.NArg() == 0 && !*saveConfigFlag {
		fmt.Println("Modus Converter - Prepare MIDI recordings for Yamaha digital pianos")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  modus-convert [options] <file-or-folder>...")
		fmt.Println()
		fmt.Println("For interactive mode, use: modus-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	configPath := *configFlag
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	settings, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Apply flags given on the command line
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			settings.OutputDir = *outputFlag
		case "suffix":
			settings.Suffix = *suffixFlag
		case "velocity-min":
			settings.VelocityMin = *velocityMinFlag
		case "velocity-max":
			settings.VelocityMax = *velocityMaxFlag
		case "velocity-mode":
			settings.VelocityMode = *velocityModeFlag
		case "pedal-threshold":
			settings.PedalThreshold = *pedalThresholdFlag
		case "pedal-levels":
			settings.PedalLevels = *pedalLevelsFlag
		case "filter-redundant":
			settings.FilterRedundantCC = *filterFlag
		case "modus":
			settings.ModusProfile = *modusFlag
		case "text":
			settings.Texts = texts
		case "verify":
			settings.Verify = *verifyFlag
		case "running-status":
			settings.RunningStatus = *runningStatusFlag
		case "format":
			settings.ReportFormat = *formatFlag
		case "jobs":
			settings.MaxConcurrentConversions = *jobsFlag
		}
	})

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(1)
	}

	if *saveConfigFlag {
		if err := settings.Save(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Settings saved to %s\n", configPath)
		return
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, cancelling...")
		cancel()
	}()

	// Progress goes to stderr; stdout carries the header report
	var opts []convert.Option
	if *dryRunFlag {
		opts = append(opts, convert.WithDryRun())
	}
	manager, err := convert.NewManager(settings, func(event convert.ProgressEvent) {
		if event.Level == convert.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case convert.LevelError:
			prefix = "✗ "
		case convert.LevelWarning:
			prefix = "! "
		case convert.LevelSuccess:
			prefix = "✓ "
		case convert.LevelInfo:
			prefix = "› "
		default:
			prefix = "  "
		}

		fmt.Fprintln(os.Stderr, prefix+event.Message)
	}, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := manager.Initialize(ctx, flag.Args()); err != nil {
		if ctx.Err() != nil {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}

	if *headersFlag {
		os.Exit(printHeaders(ctx, manager, settings.ReportFormat, settings.OutputDir))
	}

	start := time.Now()
	convErr := manager.StartConversions(ctx)
	sum := manager.Summary()

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Converted %d/%d files (%s -> %s) in %s\n",
		sum.Converted, sum.Total,
		humanize.Bytes(uint64(sum.InputBytes)), humanize.Bytes(uint64(sum.OutputBytes)),
		durafmt.Parse(time.Since(start).Round(time.Millisecond)).LimitFirstN(2))
	if *verboseFlag {
		fmt.Fprintf(os.Stderr, "Changes: %s\n", sum.Stats)
	}

	if convErr != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "Conversion cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error during conversion: %v\n", convErr)
		os.Exit(1)
	}
}

// printHeaders writes the header report to stdout, or to a headers file in
// outputDir when one is set, and returns the exit code.
func printHeaders(ctx context.Context, manager *convert.Manager, format, outputDir string) int {
	f, err := report.ParseFormat(format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	rows, err := manager.Headers(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return 130
		}
		fmt.Fprintf(os.Stderr, "Error reading headers: %v\n", err)
		return 1
	}

	out, err := report.NewCreator(f).CreateReport(rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		return 1
	}

	if outputDir == "" {
		fmt.Print(out)
		return 0
	}

	path := filepath.Join(outputDir, "headers"+f.Extension())
	if err := ioutils.EnsureDir(outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := ioutils.WriteFileAtomic(ctx, path, []byte(out)); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "Header report written to %s\n", path)
	return 0
}
