package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	proposal "github.com/alnah/go-proposal"
	"github.com/alnah/go-proposal/internal/fileutil"
	"github.com/alnah/go-proposal/internal/pricing"
)

// Sentinel errors for CLI operations.
var (
	ErrReadInput   = errors.New("failed to read proposal input")
	ErrWriteOutput = errors.New("failed to write output file")
)

const filePermissions = 0o644 // rw-r--r--: owner read+write, others read

// runRender prices one proposal and writes it as a PDF.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseRenderFlags(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	in, err := readInput(flags.input, env.Stdin)
	if err != nil {
		return err
	}

	logger, err := env.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	svc, err := env.NewService(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	res, err := svc.Document(ctx, in)
	if err != nil {
		return err
	}

	out := flags.output
	if out == "" {
		out = res.FileName
	}
	if err := fileutil.WriteFileAtomic(out, res.PDF, filePermissions); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteOutput, out, err)
	}
	if flags.html != "" {
		if err := fileutil.WriteFileAtomic(flags.html, []byte(res.Markup), filePermissions); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrWriteOutput, flags.html, err)
		}
	}

	fmt.Fprintf(env.Stdout, "%s (%s, %d bytes)\n", out, res.Model.Fmt.BundleTotal, len(res.PDF))
	return nil
}

// runQuote prices one proposal and prints the model as JSON.
func runQuote(args []string, env *Environment) error {
	flags, err := parseQuoteFlags(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	in, err := readInput(flags.input, env.Stdin)
	if err != nil {
		return err
	}

	logger, err := env.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	svc, err := env.NewService(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	enc := json.NewEncoder(env.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(svc.Quote(in))
}

// readInput loads and decodes the proposal JSON from path, or stdin for "-".
func readInput(path string, stdin io.Reader) (proposal.Input, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(io.LimitReader(stdin, pricing.MaxPayloadBytes+1))
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- path is user-provided CLI input
	}
	if err != nil {
		return proposal.Input{}, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return proposal.DecodeInput(data)
}
