package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/alnah/go-proposal/internal/config"
	"github.com/alnah/go-proposal/internal/server"
)

// startTimeout bounds OnStart hooks. Binding the listener is the only one.
const startTimeout = 15 * time.Second

// runServe serves HTTP until ctx is canceled, then drains in-flight
// requests for up to server.shutdownGrace.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}

	app := fx.New(appOptions(cfg, env))

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		if sig.ExitCode != 0 {
			err = fmt.Errorf("server exited with code %d", sig.ExitCode)
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()
	if stopErr := app.Stop(stopCtx); stopErr != nil && err == nil {
		err = fmt.Errorf("stopping server: %w", stopErr)
	}
	return err
}

// appOptions assembles the service graph: config, logger, converter, router
// and the listening http.Server.
func appOptions(cfg *config.Config, env *Environment) fx.Option {
	return fx.Options(
		fx.Supply(cfg, env),
		fx.Provide(
			provideLogger,
			provideService,
			provideHTTPServer,
		),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			fl := &fxevent.ZapLogger{Logger: l.Named("fx")}
			fl.UseLogLevel(zap.DebugLevel)
			return fl
		}),
		fx.Invoke(func(*http.Server) {}),
	)
}

func provideLogger(lc fx.Lifecycle, cfg *config.Config, env *Environment) (*zap.Logger, error) {
	logger, err := env.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() {
		_ = logger.Sync()
	}))
	return logger, nil
}

func provideService(lc fx.Lifecycle, cfg *config.Config, env *Environment, logger *zap.Logger) (Service, error) {
	svc, err := env.NewService(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(svc.Close))
	return svc, nil
}

func provideHTTPServer(lc fx.Lifecycle, cfg *config.Config, svc Service, logger *zap.Logger) *http.Server {
	router := server.New(svc, server.Config{MaxBodyBytes: cfg.Server.MaxBodyBytes}, logger)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var listen net.ListenConfig
			ln, err := listen.Listen(ctx, "tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", srv.Addr, err)
			}
			logger.Info("http server listening",
				zap.String("addr", ln.Addr().String()),
				zap.String("external_url", cfg.Server.ExternalURL))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("http server draining")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
