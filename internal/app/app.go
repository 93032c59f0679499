// Package app wires configuration, logging, the suite runner and the
// report writers into the automata command.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dshills/automata/internal/config"
	"github.com/dshills/automata/internal/engine"
	"github.com/dshills/automata/internal/loader"
	"github.com/dshills/automata/internal/logging"
	"github.com/dshills/automata/internal/report"
	"github.com/dshills/automata/internal/suite"
)

// Options configures the application. Zero values leave the configured
// setting in place.
type Options struct {
	// ConfigPath is the path to the configuration file. When empty the
	// user configuration file is used if it exists.
	ConfigPath string

	// LogLevel overrides log.level.
	LogLevel string

	// Format overrides output.format.
	Format string

	// Color overrides output.color.
	Color string

	// MaxSteps overrides limits.max_steps.
	MaxSteps int

	// MaxConfigurations overrides limits.max_configurations.
	MaxConfigurations int

	// Workers overrides run.workers.
	Workers int

	// Definition runs a single definition file on Inputs.
	Definition string

	// Kind is the machine kind of Definition. Empty infers it.
	Kind string

	// Inputs are the inputs for Definition.
	Inputs []string

	// SuitePath runs a YAML suite.
	SuitePath string

	// Watch re-runs whenever a definition or suite file changes.
	Watch bool

	// Stdout receives reports. Defaults to os.Stdout.
	Stdout io.Writer

	// Stderr receives logs. Defaults to os.Stderr.
	Stderr io.Writer
}

// Application runs suites and writes their reports.
type Application struct {
	opts   Options
	config *config.Config
	logger *logging.Logger
	writer report.Writer
	runner *suite.Runner
}

// New creates an Application, loading configuration and applying option
// overrides.
func New(opts Options) (*Application, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Definition != "" && opts.SuitePath != "" {
		return nil, usageError("-def and -suite are mutually exclusive")
	}
	if opts.Definition != "" && len(opts.Inputs) == 0 {
		return nil, usageError("-def needs at least one input")
	}
	if opts.Definition == "" && len(opts.Inputs) > 0 {
		return nil, usageError("inputs given without -def")
	}

	app := &Application{opts: opts}
	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

func (app *Application) bootstrap() error {
	path, required := app.opts.ConfigPath, true
	if path == "" {
		path, required = config.DefaultPath(), false
	}
	cfg, err := config.NewLoader().Read(path, required)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.config = cfg

	app.logger = logging.New(logging.Config{
		Level:  cfg.LogLevel(),
		Output: app.opts.Stderr,
		Prefix: "automata",
	})
	logging.Set(app.logger)

	app.writer, err = report.New(report.Format(cfg.Output.Format), app.opts.Stdout, report.ColorMode(cfg.Output.Color))
	if err != nil {
		return &InitError{Component: "report writer", Err: err}
	}

	app.runner = suite.NewRunner(
		suite.WithEngineOptions(engine.NewOptions(
			engine.WithMaxSteps(cfg.Limits.MaxSteps),
			engine.WithMaxConfigurations(cfg.Limits.MaxConfigurations),
			engine.WithDedupe(cfg.Limits.Dedupe),
		)),
		suite.WithWorkers(cfg.Run.Workers),
		suite.WithScriptTimeout(cfg.Script.Timeout.Std()),
		suite.WithLogger(app.logger.WithComponent("suite")),
	)
	return nil
}

func (app *Application) applyOverrides(cfg *config.Config) {
	if app.opts.LogLevel != "" {
		cfg.Log.Level = app.opts.LogLevel
	}
	if app.opts.Format != "" {
		cfg.Output.Format = app.opts.Format
	}
	if app.opts.Color != "" {
		cfg.Output.Color = app.opts.Color
	}
	if app.opts.MaxSteps != 0 {
		cfg.Limits.MaxSteps = app.opts.MaxSteps
	}
	if app.opts.MaxConfigurations != 0 {
		cfg.Limits.MaxConfigurations = app.opts.MaxConfigurations
	}
	if app.opts.Workers != 0 {
		cfg.Run.Workers = app.opts.Workers
	}
}

// Config returns the effective configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application's logger.
func (app *Application) Logger() *logging.Logger {
	return app.logger
}

// Run executes the requested suite once, or repeatedly in watch mode until
// ctx is done. It returns ErrMismatch if the last run contradicted an
// expectation.
func (app *Application) Run(ctx context.Context) error {
	if app.opts.Watch {
		return app.watch(ctx)
	}
	_, err := app.runOnce(ctx)
	return err
}

// loadSuite builds the suite named by the options.
func (app *Application) loadSuite() (*suite.Suite, error) {
	switch {
	case app.opts.SuitePath != "":
		return suite.Load(loader.DefaultFS(), app.opts.SuitePath)
	case app.opts.Definition != "":
		return suite.Single(app.opts.Definition, app.opts.Kind, app.opts.Inputs), nil
	default:
		return suite.Builtin(), nil
	}
}

// runOnce loads, runs and reports. The returned suite is nil if it could
// not be loaded. An interrupted run still writes its partial report and
// then returns ctx.Err().
func (app *Application) runOnce(ctx context.Context) (*suite.Suite, error) {
	s, err := app.loadSuite()
	if err != nil {
		return nil, err
	}
	rep, err := app.runner.Run(ctx, s)
	if err != nil {
		return s, err
	}
	if err := app.writer.Write(rep); err != nil {
		return s, fmt.Errorf("writing report: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return s, err
	}
	if !rep.OK() {
		return s, ErrMismatch
	}
	return s, nil
}

// logRunError reports a failed run in watch mode, where failures are not
// fatal.
func (app *Application) logRunError(err error) {
	if err == nil || errors.Is(err, ErrMismatch) || errors.Is(err, context.Canceled) {
		return
	}
	app.logger.WithComponent("watch").Error("%v", err)
}
