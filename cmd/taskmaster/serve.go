package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/broady/taskmaster/internal/logging"
	"github.com/broady/taskmaster/internal/server"
	"github.com/broady/taskmaster/internal/store"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 5 * time.Second

type ServeCmd struct {
	Port   int    `help:"Port to listen on (default 3001 or $PORT)." short:"p"`
	Host   string `help:"Interface to bind (default all)."`
	NoSeed bool   `help:"Start with an empty task list instead of the examples." name:"no-seed"`
}

func (c *ServeCmd) Run(rt *runtime, g *Globals) error {
	cfg, err := rt.loadConfig(g)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.NoSeed {
		cfg.Server.Seed = false
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err}
	}

	logger, err := logging.New(rt.stderr, logging.Options{
		Level:      cfg.Server.LogLevel,
		Format:     cfg.Server.LogFormat,
		Prefix:     "taskmaster",
		Timestamps: true,
	})
	if err != nil {
		return usageError{err}
	}
	if cfg.Path != "" {
		logger.Debug("loaded config", slog.String("path", cfg.Path))
	}

	var storeOpts []store.Option
	if cfg.Server.Seed {
		storeOpts = append(storeOpts, store.WithTasks(store.Seed()))
	}
	app, err := server.New(store.New(storeOpts...),
		server.WithLogger(logger),
		server.WithCORSOrigins(cfg.Server.CORSOrigins...),
		server.WithMaskInternalErrors(cfg.Server.MaskInternalErrors),
	)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return serve(rt.ctx, ln, app.Handler(), logger)
}

// serve runs an HTTP server on ln until ctx is cancelled, then drains
// in-flight requests.
func serve(ctx context.Context, ln net.Listener, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	logger.Info("server listening", slog.String("addr", "http://"+ln.Addr().String()))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
