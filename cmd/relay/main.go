// Command relay is a terminal client for a streaming chat service.
//
// Usage:
//
//	relay [flags]
//
// Flags:
//
//	-config string   Path to config file (default ~/.relay/config.json)
//	-server string   Server base URL (overrides config)
//	-token string    Auth token (overrides config)
//	-session string  Path to the session file or database (overrides config)
//	-store string    Session store backend: json, sqlite (overrides config)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/davidmoxey/relay"
	"github.com/davidmoxey/relay/assistant"
	bt "github.com/davidmoxey/relay/bubbletea"
	"github.com/davidmoxey/relay/config"
	"github.com/davidmoxey/relay/engine"
	relayjson "github.com/davidmoxey/relay/json"
	"github.com/davidmoxey/relay/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "relay: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", defaultConfigPath(), "Path to config file")
		serverURL   = flag.String("server", "", "Server base URL (overrides config)")
		authToken   = flag.String("token", "", "Auth token (overrides config)")
		sessionPath = flag.String("session", "", "Path to the session file or database (overrides config)")
		storeKind   = flag.String("store", "", "Session store backend: json, sqlite (overrides config)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *serverURL != "" {
		cfg.Server.BaseURL = *serverURL
	}
	if *authToken != "" {
		cfg.Server.AuthToken = *authToken
	}
	if *sessionPath != "" {
		cfg.Session.Path = *sessionPath
	}
	if *storeKind != "" {
		cfg.Session.Store = *storeKind
	}

	// The TUI owns the terminal, so logs go to a file.
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	sessions, closeSessions, err := openSessionStore(cfg.Session)
	if err != nil {
		return err
	}
	defer closeSessions()

	client := assistant.New(cfg.Server.BaseURL,
		assistant.WithAuthToken(cfg.Server.AuthToken),
		assistant.WithLogger(logger),
	)

	store := relay.NewStore(nil)
	eng := engine.New(client, store,
		engine.WithSessionStore(sessions),
		engine.WithLogger(logger),
		engine.WithMaxRetries(cfg.Retry.MaxRetries),
		engine.WithBackoff(cfg.Retry.BaseDelay.Std(), cfg.Retry.MaxDelay.Std()),
	)
	if err := eng.Restore(); err != nil {
		logger.Warn("restoring session", zap.Error(err))
	}

	m := bt.New(eng, store, relay.DefaultTheme())
	if err := bt.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	// Stop any in-flight send before the process exits.
	eng.Cancel()
	return nil
}

func openSessionStore(cfg config.SessionConfig) (relay.SessionStore, func(), error) {
	switch cfg.Store {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create session directory: %w", err)
		}
		store, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return relayjson.NewStore(cfg.Path), func() {}, nil
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	if cfg.File == "" {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse level %q: %w", cfg.Level, err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{cfg.File}
	zcfg.ErrorOutputPaths = []string{cfg.File}
	return zcfg.Build()
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".relay", "config.json")
}
