package client

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokertable/internal/actionqueue"
	"github.com/lox/pokertable/internal/table"
)

// Config represents the complete client configuration
type Config struct {
	Server ServerConnection `hcl:"server,block"`
	Player PlayerSettings   `hcl:"player,block"`
	Table  TableSettings    `hcl:"table,block"`
	UI     UISettings       `hcl:"ui,block"`
}

// ServerConnection contains server connection settings. Durations are seconds.
type ServerConnection struct {
	URL               string `hcl:"url"`
	ConnectTimeout    int    `hcl:"connect_timeout,optional"`
	RequestTimeout    int    `hcl:"request_timeout,optional"`
	ReconnectAttempts int    `hcl:"reconnect_attempts,optional"`
	ReconnectDelay    int    `hcl:"reconnect_delay,optional"`
}

// PlayerSettings contains player-specific settings
type PlayerSettings struct {
	Name                   string `hcl:"name"`
	ID                     int64  `hcl:"id,optional"`
	TicketCode             string `hcl:"ticket_code,optional"`
	DefaultBuyIn           int    `hcl:"default_buy_in,optional"`
	OpenCardsAutomatically bool   `hcl:"open_cards_automatically,optional"`
	WaitBigBlind           bool   `hcl:"wait_big_blind,optional"`
}

// TableSettings select the table and pace its animations.
type TableSettings struct {
	ID                 int64 `hcl:"id,optional"`
	PaceMS             int   `hcl:"pace_ms,optional"`
	DisableWaits       bool  `hcl:"disable_waits,optional"`
	InterruptionStepMS int   `hcl:"interruption_step_ms,optional"`
	MaxChatMessages    int   `hcl:"max_chat_messages,optional"`
}

// UISettings contains output settings
type UISettings struct {
	LogLevel   string `hcl:"log_level,optional"`
	LogFile    string `hcl:"log_file,optional"`
	HistoryDir string `hcl:"history_dir,optional"`
}

// DefaultConfig returns default client configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConnection{
			URL:               "ws://localhost:8080/hub",
			ConnectTimeout:    10,
			RequestTimeout:    30,
			ReconnectAttempts: 3,
			ReconnectDelay:    5,
		},
		Player: PlayerSettings{
			DefaultBuyIn: 200,
		},
		Table: TableSettings{
			InterruptionStepMS: 200,
			MaxChatMessages:    100,
		},
		UI: UISettings{
			LogLevel: "warn",
			LogFile:  "pokertable.log",
		},
	}
}

// LoadConfig loads client configuration from an HCL file. A missing file
// yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()

	if config.Server.URL == "" {
		config.Server.URL = defaults.Server.URL
	}
	if config.Server.ConnectTimeout == 0 {
		config.Server.ConnectTimeout = defaults.Server.ConnectTimeout
	}
	if config.Server.RequestTimeout == 0 {
		config.Server.RequestTimeout = defaults.Server.RequestTimeout
	}
	if config.Server.ReconnectAttempts == 0 {
		config.Server.ReconnectAttempts = defaults.Server.ReconnectAttempts
	}
	if config.Server.ReconnectDelay == 0 {
		config.Server.ReconnectDelay = defaults.Server.ReconnectDelay
	}

	if config.Player.DefaultBuyIn == 0 {
		config.Player.DefaultBuyIn = defaults.Player.DefaultBuyIn
	}

	if config.Table.InterruptionStepMS == 0 {
		config.Table.InterruptionStepMS = defaults.Table.InterruptionStepMS
	}
	if config.Table.MaxChatMessages == 0 {
		config.Table.MaxChatMessages = defaults.Table.MaxChatMessages
	}

	if config.UI.LogLevel == "" {
		config.UI.LogLevel = defaults.UI.LogLevel
	}
	if config.UI.LogFile == "" {
		config.UI.LogFile = defaults.UI.LogFile
	}

	return &config, nil
}

// Validate validates the client configuration
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server URL is required")
	}

	if c.Table.ID <= 0 {
		return fmt.Errorf("table id is required")
	}

	if c.Player.DefaultBuyIn <= 0 {
		return fmt.Errorf("default buy-in must be positive")
	}

	if c.Server.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}

	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	if c.Server.ReconnectAttempts < 0 {
		return fmt.Errorf("reconnect attempts cannot be negative")
	}

	if c.Server.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect delay must be positive")
	}

	if c.Table.PaceMS < 0 || c.Table.InterruptionStepMS < 0 {
		return fmt.Errorf("table pacing cannot be negative")
	}

	if _, err := log.ParseLevel(c.UI.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	return nil
}

// ValidatePlayer is Validate for commands that act as the local player.
func (c *Config) ValidatePlayer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Player.ID <= 0 {
		return fmt.Errorf("player id is required to act at the table")
	}
	return nil
}

// LogLevel returns the parsed log level, falling back to warn.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.UI.LogLevel)
	if err != nil {
		return log.WarnLevel
	}
	return level
}

// QueueConfig maps the table block onto the action queue's pacing.
func (c *Config) QueueConfig() actionqueue.Config {
	return actionqueue.Config{
		Pause:            time.Duration(c.Table.PaceMS) * time.Millisecond,
		DisableWaits:     c.Table.DisableWaits,
		InterruptionStep: time.Duration(c.Table.InterruptionStepMS) * time.Millisecond,
	}
}

// TableOptions builds the options for the configured table.
func (c *Config) TableOptions(logger *log.Logger) table.Options {
	return table.Options{
		TableID:         c.Table.ID,
		MyPlayerID:      c.Player.ID,
		Logger:          logger,
		QueueConfig:     c.QueueConfig(),
		Timings:         table.DefaultTimings(),
		MaxChatMessages: c.Table.MaxChatMessages,
	}
}

func (c *Config) connectTimeout() time.Duration {
	return time.Duration(c.Server.ConnectTimeout) * time.Second
}

func (c *Config) requestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

func (c *Config) reconnectDelay() time.Duration {
	return time.Duration(c.Server.ReconnectDelay) * time.Second
}
