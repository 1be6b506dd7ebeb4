package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	proposal "github.com/alnah/go-proposal"
	"github.com/alnah/go-proposal/internal/assets"
	"github.com/alnah/go-proposal/internal/config"
	"github.com/alnah/go-proposal/internal/markup"
	"github.com/alnah/go-proposal/internal/pricing"
	"github.com/alnah/go-proposal/internal/server"
)

// Service is what the commands need from *proposal.Converter.
type Service interface {
	server.Service
	Quote(in proposal.Input) *proposal.Model
	Close() error
}

// Compile-time interface implementation check.
var _ Service = (*proposal.Converter)(nil)

// Prober reports every browser lookup strategy.
type Prober interface {
	Probe(ctx context.Context) []proposal.Attempt
}

var _ Prober = (*proposal.Resolver)(nil)

func resolverConfig(cfg *config.Config) proposal.ResolverConfig {
	return proposal.ResolverConfig{
		BinPath:      cfg.Browser.Bin,
		CacheDir:     cfg.Browser.CacheDir,
		AutoDownload: cfg.Browser.AutoDownload,
	}
}

func newProber(cfg *config.Config, logger *zap.Logger) Prober {
	return proposal.NewDefaultResolver(resolverConfig(cfg), logger)
}

// newService wires a Converter from the effective config.
func newService(cfg *config.Config, logger *zap.Logger) (Service, error) {
	loader, err := assets.NewResolver(cfg.Assets.BasePath)
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}

	return proposal.NewConverter(
		proposal.WithLogger(logger),
		proposal.WithTimeout(cfg.Browser.Timeout),
		proposal.WithFontGrace(cfg.Browser.FontGrace),
		proposal.WithSettleDelay(cfg.Browser.SettleDelay),
		proposal.WithPoolSize(cfg.Browser.Workers),
		proposal.WithResolver(proposal.NewDefaultResolver(resolverConfig(cfg), logger)),
		proposal.WithGatekeeper(proposal.DefaultGatekeeper(cfg.Server.ExternalURL)),
		proposal.WithMarkupRenderer(markup.NewTemplateRenderer(loader, cfg.Assets.Template, cfg.Assets.Style)),
		proposal.WithPricingEngine(pricing.Engine{DateFormat: cfg.Pricing.DateFormat}),
	)
}
