package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	WebSocket WebSocketConfig `toml:"websocket"`
	Game      GameConfig      `toml:"game"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Addr            string        `toml:"addr" env:"TAKI_ADDR"`
	StaticDir       string        `toml:"static_dir" env:"TAKI_STATIC_DIR"`
	GinMode         string        `toml:"gin_mode" env:"TAKI_GIN_MODE"` // "debug", "release" or "test"
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"TAKI_SHUTDOWN_TIMEOUT"`
}

type WebSocketConfig struct {
	ReadBufferSize  int           `toml:"read_buffer_size" env:"TAKI_WS_READ_BUFFER"`
	WriteBufferSize int           `toml:"write_buffer_size" env:"TAKI_WS_WRITE_BUFFER"`
	MaxMessageSize  int64         `toml:"max_message_size" env:"TAKI_WS_MAX_MESSAGE"`
	PingInterval    time.Duration `toml:"ping_interval" env:"TAKI_WS_PING_INTERVAL"`
	PongWait        time.Duration `toml:"pong_wait" env:"TAKI_WS_PONG_WAIT"`
	WriteWait       time.Duration `toml:"write_wait" env:"TAKI_WS_WRITE_WAIT"`
	InboxSize       int           `toml:"inbox_size" env:"TAKI_WS_INBOX_SIZE"` // hub event channel capacity
}

type GameConfig struct {
	Scale           string        `toml:"scale" env:"TAKI_SCALE"`
	ScalesFile      string        `toml:"scales_file" env:"TAKI_SCALES_FILE"` // extra YAML decks
	InitialDisputes int           `toml:"initial_disputes" env:"TAKI_INITIAL_DISPUTES"`
	ExplainTime     time.Duration `toml:"explain_time" env:"TAKI_EXPLAIN_TIME"`
	DiscussTime     time.Duration `toml:"discuss_time" env:"TAKI_DISCUSS_TIME"`
	ReprDiscussTime time.Duration `toml:"repr_discuss_time" env:"TAKI_REPR_DISCUSS_TIME"`
	MaxTitleLength  int           `toml:"max_title_length" env:"TAKI_MAX_TITLE_LENGTH"`
	MaxNameLength   int           `toml:"max_name_length" env:"TAKI_MAX_NAME_LENGTH"`
	SweepInterval   time.Duration `toml:"sweep_interval" env:"TAKI_SWEEP_INTERVAL"`
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"TAKI_LOG_LEVEL"`
	Format string `toml:"format" env:"TAKI_LOG_FORMAT"` // "json" or "console"
}

// Load reads the TOML file at path over the defaults, then applies TAKI_*
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr is required")
	}
	if c.WebSocket.PingInterval <= 0 || c.WebSocket.PongWait <= c.WebSocket.PingInterval {
		return fmt.Errorf("config: websocket.pong_wait (%s) must exceed ping_interval (%s)",
			c.WebSocket.PongWait, c.WebSocket.PingInterval)
	}
	if c.WebSocket.InboxSize < 0 {
		return fmt.Errorf("config: websocket.inbox_size must not be negative")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			StaticDir:       "client/dist",
			GinMode:         "release",
			ShutdownTimeout: 10 * time.Second,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			MaxMessageSize:  8 * 1024,
			PingInterval:    15 * time.Second,
			PongWait:        45 * time.Second,
			WriteWait:       10 * time.Second,
			InboxSize:       256,
		},
		Game: GameConfig{
			Scale:           "fibonacci",
			InitialDisputes: 2,
			ExplainTime:     2 * time.Minute,
			DiscussTime:     time.Minute,
			ReprDiscussTime: time.Minute,
			MaxTitleLength:  200,
			MaxNameLength:   40,
			SweepInterval:   30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
