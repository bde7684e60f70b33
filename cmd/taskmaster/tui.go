package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/broady/taskmaster/client"
	"github.com/broady/taskmaster/internal/logging"
	"github.com/broady/taskmaster/internal/tui"
)

type TUICmd struct {
	LogFile string `help:"Append logs to this file. The UI owns the terminal, so logs are off otherwise." type:"path" name:"log-file"`
}

func (c *TUICmd) Run(rt *runtime, g *Globals) error {
	cfg, err := rt.loadConfig(g)
	if err != nil {
		return err
	}
	policy, err := cfg.Client.ToggleFailurePolicy()
	if err != nil {
		return usageError{err}
	}

	logger := logging.Discard()
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return usageError{fmt.Errorf("open log file: %w", err)}
		}
		defer f.Close()
		logger, err = logging.New(f, logging.Options{
			Level:      cfg.Server.LogLevel,
			Prefix:     "tui",
			Timestamps: true,
		})
		if err != nil {
			return usageError{err}
		}
	}

	api, err := rt.client(g, client.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info("starting tui", slog.String("url", api.BaseURL()), slog.String("toggle_failure", string(policy)))
	return tui.Run(rt.ctx, api, tui.WithLogger(logger), tui.WithTogglePolicy(policy))
}
