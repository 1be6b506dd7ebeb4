package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	proposal "github.com/alnah/go-proposal"
	"github.com/alnah/go-proposal/internal/config"
	"github.com/alnah/go-proposal/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args[1:], DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches to a command and returns the process exit code.
// With no command it serves.
func runMain(ctx context.Context, args []string, env *Environment) int {
	cmd := "serve"
	if len(args) > 0 && (!isFlag(args[0]) || args[0] == "-h" || args[0] == "--help") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, args, env)
	case "render":
		err = runRender(ctx, args, env)
	case "quote":
		err = runQuote(args, env)
	case "doctor":
		return runDoctorCmd(ctx, args, env)
	case "version":
		fmt.Fprintf(env.Stdout, "proposald %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(args, env)
	default:
		fmt.Fprintf(env.Stderr, "unknown command %q\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if errors.Is(err, flag.ErrHelp) {
		return runHelp([]string{cmd}, env)
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		if errors.Is(err, ErrUsage) {
			fmt.Fprintf(env.Stderr, "Run 'proposald help %s' for usage.\n", cmd)
		}
	}
	return exitCodeFor(err)
}

func isFlag(arg string) bool {
	return len(arg) > 1 && arg[0] == '-'
}

// hintFor returns an operator hint for err, or "".
func hintFor(err error) string {
	if h := proposal.Hint(err); h != "" {
		return h
	}
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
