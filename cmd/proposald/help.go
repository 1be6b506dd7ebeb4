package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: proposald [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the HTTP service (default)")
	fmt.Fprintln(w, "  render     Render one proposal to PDF")
	fmt.Fprintln(w, "  quote      Print the priced model as JSON")
	fmt.Fprintln(w, "  doctor     Check that a browser can be found")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'proposald help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (env: PROPOSAL_CONFIG)")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
}

func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: proposald serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve POST /api/preview, /api/document and GET /healthz.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (env: PORT)")
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PROPOSAL_BROWSER_BIN      Chrome executable (fallback: ROD_BROWSER_BIN)")
	fmt.Fprintln(w, "  PROPOSAL_EXTERNAL_URL     Own public origin (fallback: RENDER_EXTERNAL_URL)")
	fmt.Fprintln(w, "  PROPOSAL_LOG_LEVEL        debug, info, warn, error")
}

func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: proposald render [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Price a proposal and print it to PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -i, --input <path>        Proposal JSON (default: stdin)")
	fmt.Fprintln(w, "  -o, --output <path>       PDF path (default: <client-name>.pdf)")
	fmt.Fprintln(w, "      --html <path>         Also write the rendered HTML")
	printCommonFlags(w)
}

func printQuoteUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: proposald quote [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Price a proposal and print the model as JSON. No browser needed.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -i, --input <path>        Proposal JSON (default: stdin)")
	printCommonFlags(w)
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: proposald doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run every browser lookup strategy and report what each found.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Machine-readable output")
	printCommonFlags(w)
}

// runHelp prints help for the named command, or the main usage.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "quote":
		printQuoteUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	default:
		fmt.Fprintf(env.Stderr, "unknown help topic %q\n", args[0])
		return ExitUsage
	}
	return ExitSuccess
}
