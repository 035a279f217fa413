package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokertable/internal/client"
	"github.com/lox/pokertable/internal/history"
	"github.com/lox/pokertable/internal/table"
)

// GlobalFlags holds common configuration for all commands
type GlobalFlags struct {
	Config   string `short:"c" long:"config" default:"pokertable.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" long:"server" help:"Server URL to connect to (overrides config)"`
	Table    int64  `short:"t" long:"table" help:"Table ID (overrides config)"`
	Player   int64  `short:"p" long:"player" help:"Local player ID (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	LogFile  string `long:"log-file" help:"Log file path (overrides config)"`
}

// Runtime is a connected table: hub, table state, session and controller.
type Runtime struct {
	Config     *client.Config
	Logger     *log.Logger
	Hub        *client.Hub
	Table      *table.Table
	Session    *client.Session
	Controller *client.Controller
	History    *history.Recorder

	stopHistory func()
}

// Setup loads configuration, applies flag overrides and dials the server.
// Logs go to w.
func Setup(ctx context.Context, flags *GlobalFlags, w io.Writer) (*Runtime, error) {
	cfg, err := loadConfig(flags, false)
	if err != nil {
		return nil, err
	}
	return setupConfigured(ctx, cfg, w)
}

// SetupPlayer is Setup for commands that act as the local player, so a
// player id must be configured.
func SetupPlayer(ctx context.Context, flags *GlobalFlags, w io.Writer) (*Runtime, error) {
	cfg, err := loadConfig(flags, true)
	if err != nil {
		return nil, err
	}
	return setupConfigured(ctx, cfg, w)
}

// SetupWithFileLogging is Setup with logs written to the configured log file.
// requirePlayer demands a configured player id.
func SetupWithFileLogging(ctx context.Context, flags *GlobalFlags, requirePlayer bool) (*Runtime, func(), error) {
	cfg, err := loadConfig(flags, requirePlayer)
	if err != nil {
		return nil, nil, err
	}

	// Setup logging to file (overwrite each time)
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	rt, err := setupConfigured(ctx, cfg, logFile)
	if err != nil {
		_ = logFile.Close()
		return nil, nil, err
	}

	cleanup := func() {
		rt.Close()
		_ = logFile.Close()
	}
	return rt, cleanup, nil
}

func loadConfig(flags *GlobalFlags, requirePlayer bool) (*client.Config, error) {
	cfg, err := client.LoadConfig(flags.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	// Apply command line overrides
	if flags.Server != "" {
		cfg.Server.URL = flags.Server
	}
	if flags.Table != 0 {
		cfg.Table.ID = flags.Table
	}
	if flags.Player != 0 {
		cfg.Player.ID = flags.Player
	}
	if flags.LogLevel != "" {
		cfg.UI.LogLevel = flags.LogLevel
	}
	if flags.LogFile != "" {
		cfg.UI.LogFile = flags.LogFile
	}

	validate := cfg.Validate
	if requirePlayer {
		validate = cfg.ValidatePlayer
	}
	if err := validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupConfigured(ctx context.Context, cfg *client.Config, w io.Writer) (*Runtime, error) {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           cfg.LogLevel(),
	})

	hub, err := client.DialConfig(ctx, cfg, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	tbl := table.New(cfg.TableOptions(logger))
	session := client.NewSession(cfg, hub, tbl, nil, logger)
	controller := client.NewController(cfg, hub, tbl, session.Resync, logger)
	recorder := history.NewRecorder(cfg.UI.HistoryDir, cfg.Player.ID, nil, logger)

	return &Runtime{
		Config:      cfg,
		Logger:      logger,
		Hub:         hub,
		Table:       tbl,
		Session:     session,
		Controller:  controller,
		History:     recorder,
		stopHistory: tbl.Subscribe(recorder.Observe),
	}, nil
}

// Close stops recording, flushes the last hand and releases the table.
func (r *Runtime) Close() {
	r.stopHistory()
	r.History.Flush()
	stats := r.History.Stats()
	r.Logger.Info("Session finished", "summary", stats.Summary())
	r.Table.Close()
}

// Run pumps the connection, joins the table and then runs fn. Returning
// from fn disconnects.
func (r *Runtime) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.Hub.Run(gctx) })
	g.Go(func() error { return r.Session.Pump(gctx, r.Hub.Notifications()) })
	g.Go(func() error {
		defer cancel()
		if err := r.Session.Connect(gctx); err != nil {
			return err
		}
		return fn(gctx)
	})
	return g.Wait()
}

// WaitSynced blocks until the table has received its first status.
func (r *Runtime) WaitSynced(ctx context.Context) (table.Snapshot, error) {
	synced := make(chan table.Snapshot, 1)
	unsubscribe := r.Table.Subscribe(func(s table.Snapshot) {
		if s.Phase != table.PhaseConnecting {
			select {
			case synced <- s:
			default:
			}
		}
	})
	defer unsubscribe()

	if s := r.Table.Snapshot(); s.Phase != table.PhaseConnecting {
		return s, nil
	}
	select {
	case s := <-synced:
		return s, nil
	case <-ctx.Done():
		return table.Snapshot{}, ctx.Err()
	}
}
