// Package proposal prices tiered sales proposals and prints them to PDF using
// headless Chrome.
//
// # Quick Start
//
// Create a converter, render a document, and close when done:
//
//	conv, err := proposal.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	in, err := proposal.DecodeInput(body)
//	if err != nil {
//	    log.Fatal(err) // body was not a JSON object
//	}
//	res, err := conv.Document(ctx, in)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(res.FileName, res.PDF, 0o644)
//
// Preview returns the same model and HTML without starting a browser.
//
// # Pricing
//
// Pricing never fails. Every numeric input is clamped into its domain and
// missing or malformed values take defaults, so a quote always exists.
//
// # Rendering
//
// Each Document call launches its own browser, loads the page with network
// access filtered by a Gatekeeper, waits for fonts, prints US Letter, and
// tears the browser down again on every path. Each phase runs under its own
// budget:
//
//	conv, err := proposal.NewConverter(
//	    proposal.WithTimeout(30 * time.Second),
//	    proposal.WithFontGrace(2 * time.Second),
//	    proposal.WithPoolSize(2),
//	)
//
// A phase that runs past its budget fails with ErrRenderTimeout; FailedPhase
// reports which one.
//
// # Errors
//
// ErrInvalidInput is the only client-caused failure. Browser failures wrap
// ErrEngineNotFound, ErrEngineLaunch, ErrPageLoad, ErrPDFGeneration, or
// ErrInvalidArtifact:
//
//	if errors.Is(err, proposal.ErrEngineNotFound) {
//	    // install Chrome or set PROPOSAL_BROWSER_BIN
//	}
package proposal
