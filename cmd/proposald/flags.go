package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-proposal/internal/config"
)

// ErrUsage marks bad command lines.
var ErrUsage = errors.New("usage error")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	verbose bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common commonFlags
	addr   string
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common commonFlags
	input  string
	output string
	html   string
}

// quoteFlags holds flags for the quote command.
type quoteFlags struct {
	common commonFlags
	input  string
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	return fs
}

// parse runs fs over args and rejects positional arguments.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return nil
}

func parseServeFlags(args []string) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve")
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (overrides config and PORT)")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

func parseRenderFlags(args []string) (*renderFlags, error) {
	f := &renderFlags{}
	fs := newFlagSet("render")
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.input, "input", "i", "-", "proposal JSON file (- = stdin)")
	fs.StringVarP(&f.output, "output", "o", "", "PDF path (default: derived from client name)")
	fs.StringVar(&f.html, "html", "", "also write the rendered HTML here")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

func parseQuoteFlags(args []string) (*quoteFlags, error) {
	f := &quoteFlags{}
	fs := newFlagSet("quote")
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.input, "input", "i", "-", "proposal JSON file (- = stdin)")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

func parseDoctorFlags(args []string) (*doctorFlags, error) {
	f := &doctorFlags{}
	fs := newFlagSet("doctor")
	addCommonFlags(fs, &f.common)
	fs.BoolVar(&f.json, "json", false, "machine-readable output")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

// loadConfig resolves --config, then PROPOSAL_CONFIG, and applies the
// environment. --verbose forces debug logging.
func loadConfig(f commonFlags, env *Environment) (*config.Config, error) {
	name := f.config
	if name == "" {
		name = env.Getenv(config.EnvConfigPath)
	}
	cfg, err := config.Load(name, env.Getenv)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}
