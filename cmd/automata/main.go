// Package main is the entry point for the automata recognizer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/automata/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Cancelled on SIGINT/SIGTERM; stops watch mode and running PDA/TM searches.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, app.ErrMismatch) {
			return 2
		}
		if errors.Is(err, context.Canceled) {
			return 130
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.Format, "format", "", "Report format (text, jsonl)")
	flag.StringVar(&opts.Color, "color", "", "Colour text reports (auto, always, never)")
	flag.IntVar(&opts.MaxSteps, "max-steps", 0, "Turing machine step limit")
	flag.IntVar(&opts.MaxConfigurations, "max-configs", 0, "PDA configuration limit")
	flag.IntVar(&opts.Workers, "workers", 0, "Number of cases run in parallel")
	flag.StringVar(&opts.Definition, "def", "", "Run a single definition file on the given inputs")
	flag.StringVar(&opts.Definition, "d", "", "Run a single definition file (shorthand)")
	flag.StringVar(&opts.Kind, "kind", "", "Machine kind of -def (dfa, nfa, pda, tm)")
	flag.StringVar(&opts.SuitePath, "suite", "", "Run a YAML suite file")
	flag.StringVar(&opts.SuitePath, "s", "", "Run a YAML suite file (shorthand)")
	flag.BoolVar(&opts.Watch, "watch", false, "Re-run when definition or suite files change")
	flag.BoolVar(&opts.Watch, "w", false, "Re-run on change (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "automata - DFA, NFA, PDA and Turing machine recognizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: automata [options] [inputs...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  automata                          Run the built-in battery\n")
		fmt.Fprintf(os.Stderr, "  automata -def dfa.txt 01 10       Run a definition on two inputs\n")
		fmt.Fprintf(os.Stderr, "  automata -def m.txt -kind pda ab  Run with an explicit kind\n")
		fmt.Fprintf(os.Stderr, "  automata -suite suite.yaml -w     Run a suite on every change\n")
		fmt.Fprintf(os.Stderr, "\nExit status is 0 on success, 2 on mismatched expectations\n")
		fmt.Fprintf(os.Stderr, "and 1 on any other error.\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("automata %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	// Remaining arguments are inputs for -def. An empty argument is the
	// empty word.
	opts.Inputs = flag.Args()

	return opts
}
