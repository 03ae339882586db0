// Package config holds the server's static configuration: content and
// data directories, listen port, heartbeat thresholds, and the default
// pack composition offered on the upload form.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"boosterdraft/internal/draftmodel"
)

// ServerConfig is the top-level TOML document.
type ServerConfig struct {
	Server  ServerSection  `toml:"server"`
	Content ContentSection `toml:"content"`
	Draft   DraftSection   `toml:"draft"`
}

// ServerSection controls the HTTP listener.
type ServerSection struct {
	Port            int    `toml:"port"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// ContentSection points at the card list/database and snapshot directories.
type ContentSection struct {
	ContentDir string `toml:"content_dir"`
	DataDir    string `toml:"data_dir"`
}

// DraftSection carries connection-health thresholds and default pack
// composition for new drafts (spec §4.5 heartbeat thresholds, §3 PackSpec).
type DraftSection struct {
	HeartbeatWarnAfter  string              `toml:"heartbeat_warn_after"`
	HeartbeatErrorAfter string              `toml:"heartbeat_error_after"`
	DefaultMaxSeats     int                 `toml:"default_max_seats"`
	DefaultPackSpec     draftmodel.PackSpec `toml:"default_pack_spec"`
}

// DefaultConfig returns sensible defaults for local/dev use.
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Port:            8080,
			ShutdownTimeout: "10s",
		},
		Content: ContentSection{
			ContentDir: "./content",
			DataDir:    "./data",
		},
		Draft: DraftSection{
			HeartbeatWarnAfter:  "15s",
			HeartbeatErrorAfter: "60s",
			DefaultMaxSeats:     draftmodel.DefaultMaxSeats,
			DefaultPackSpec: draftmodel.PackSpec{
				PacksPerSeat:     3,
				CardsPerPack:     15,
				UseRarities:      true,
				RaresPerPack:     1,
				UncommonsPerPack: 3,
				CommonsPerPack:   11,
				MythicIncidence:  0.125,
				MaxSeats:         draftmodel.DefaultMaxSeats,
			},
		},
	}
}

// Load reads a TOML config file, falling back to DefaultConfig if path
// does not exist.
func Load(path string) (*ServerConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config back out as TOML.
func (c *ServerConfig) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the config's own invariants, independent of any
// uploaded catalog (which packgen.Validate checks separately).
func (c *ServerConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if _, err := c.ShutdownTimeout(); err != nil {
		return fmt.Errorf("invalid server.shutdown_timeout: %w", err)
	}
	if _, err := c.HeartbeatWarnAfter(); err != nil {
		return fmt.Errorf("invalid draft.heartbeat_warn_after: %w", err)
	}
	if _, err := c.HeartbeatErrorAfter(); err != nil {
		return fmt.Errorf("invalid draft.heartbeat_error_after: %w", err)
	}
	if c.Content.ContentDir == "" {
		return fmt.Errorf("content.content_dir must not be empty")
	}
	if c.Content.DataDir == "" {
		return fmt.Errorf("content.data_dir must not be empty")
	}
	spec := c.Draft.DefaultPackSpec
	return spec.Validate()
}

// ShutdownTimeout parses Server.ShutdownTimeout.
func (c *ServerConfig) ShutdownTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.ShutdownTimeout)
}

// HeartbeatWarnAfter parses Draft.HeartbeatWarnAfter.
func (c *ServerConfig) HeartbeatWarnAfter() (time.Duration, error) {
	return time.ParseDuration(c.Draft.HeartbeatWarnAfter)
}

// HeartbeatErrorAfter parses Draft.HeartbeatErrorAfter.
func (c *ServerConfig) HeartbeatErrorAfter() (time.Duration, error) {
	return time.ParseDuration(c.Draft.HeartbeatErrorAfter)
}
