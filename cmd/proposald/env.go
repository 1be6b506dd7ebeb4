package main

import (
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/alnah/go-proposal/internal/config"
	"github.com/alnah/go-proposal/internal/logging"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// NewLogger builds the process logger from the effective config.
	NewLogger func(cfg *config.Config) (*zap.Logger, error)
	// NewService builds the pricing and rendering service.
	NewService func(cfg *config.Config, logger *zap.Logger) (Service, error)
	// NewProber builds the browser lookup used by doctor.
	NewProber func(cfg *config.Config, logger *zap.Logger) Prober
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Getenv:     os.Getenv,
		NewLogger:  newLogger,
		NewService: newService,
		NewProber:  newProber,
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Development)
}
