package main

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ShayCichocki/heavy/internal/config"
	"github.com/ShayCichocki/heavy/internal/history"
	"github.com/ShayCichocki/heavy/internal/llm"
	"github.com/ShayCichocki/heavy/internal/logging"
	"github.com/ShayCichocki/heavy/internal/tools"
)

// app holds what every model-backed command shares.
type app struct {
	mu      sync.RWMutex
	cfg     *config.Config
	gateway llm.Gateway

	log     zerolog.Logger
	logFile io.Closer
	tokens  *llm.TokenTracker
	history *history.DB
	watcher *config.Watcher
}

type appOptions struct {
	// quiet drops console logging while the dashboard owns the terminal.
	quiet bool
}

// loadConfig honours --config and --log-level.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFromPath(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

func newApp(opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var out io.Writer = os.Stderr
	if opts.quiet {
		out = io.Discard
	}
	log, closer, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		File:   cfg.Logging.File,
		Out:    out,
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, logFile: closer, tokens: llm.NewTokenTracker()}
	a.gateway, err = newGateway(cfg, a.tokens, log)
	if err != nil {
		closer.Close()
		return nil, err
	}

	if cfg.History.Enabled {
		db, err := history.OpenAndMigrate(cfg.History.Path)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.History.Path).Msg("run history disabled")
		} else {
			a.history = db
		}
	}
	return a, nil
}

// current returns the active config and gateway.
func (a *app) current() (*config.Config, llm.Gateway) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg, a.gateway
}

// watchConfig reloads settings between questions when the config file changes.
func (a *app) watchConfig() {
	path := cfgFile
	if path == "" {
		path = config.GetUserConfigPath()
	}
	if _, err := os.Stat(path); err != nil {
		return
	}

	w, err := config.Watch(path, func(_ *config.Config, err error) {
		if err == nil {
			err = a.reload()
		}
		if err != nil {
			a.log.Warn().Err(err).Msg("config reload skipped")
			return
		}
		a.log.Info().Str("path", path).Msg("config reloaded")
	})
	if err != nil {
		a.log.Debug().Err(err).Msg("config watch unavailable")
		return
	}
	a.watcher = w
}

// reload rebuilds config and gateway, keeping the old ones on any error.
func (a *app) reload() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	gw, err := newGateway(cfg, a.tokens, a.log)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.cfg = cfg
	a.gateway = gw
	a.mu.Unlock()
	return nil
}

func (a *app) Close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.history != nil {
		a.history.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// toolOptions maps config onto the built-in tool set.
func toolOptions(cfg *config.Config) tools.Options {
	s := cfg.Tools.Search
	return tools.Options{
		WorkDir:  cfg.Tools.WorkDir,
		Disabled: cfg.Tools.Disabled,
		Search: tools.SearchConfig{
			Endpoint:     s.Endpoint,
			MaxResults:   s.MaxResults,
			Timeout:      s.Timeout,
			Truncation:   s.ContentTruncation,
			UserAgent:    s.UserAgent,
			FetchContent: s.FetchContent,
		},
	}
}

// record stores a finished run when history is enabled.
func (a *app) record(r *history.Run) {
	if a.history == nil {
		return
	}
	if err := a.history.SaveRun(context.Background(), r); err != nil {
		a.log.Warn().Err(err).Str("run_id", r.ID).Msg("recording run history")
	}
}
