// Package config loads textcodec settings from TOML.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/textcodec/errors"
)

type Config struct {
	Bridge  Bridge  `toml:"bridge"`
	Sandbox Sandbox `toml:"sandbox"`
	Log     Log     `toml:"log"`
}

// Bridge limits the host side of the bridge.
type Bridge struct {
	MaxPayloadBytes int `toml:"max_payload_bytes"`
	MaxOpenDecoders int `toml:"max_open_decoders"`
}

// Sandbox configures guests created by the CLI.
type Sandbox struct {
	MemoryLimitPages uint32 `toml:"memory_limit_pages"`
	ModuleName       string `toml:"module_name"`
}

// Log configures the zap logger and optional file rotation.
type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
	File        string `toml:"file"`
	MaxSizeMB   int    `toml:"max_size_mb"`
	MaxBackups  int    `toml:"max_backups"`
	MaxAgeDays  int    `toml:"max_age_days"`
	Compress    bool   `toml:"compress"`
}

func Default() *Config {
	return &Config{
		Bridge: Bridge{
			MaxPayloadBytes: 16 << 20,
			MaxOpenDecoders: 1024,
		},
		Sandbox: Sandbox{
			MemoryLimitPages: 256,
			ModuleName:       "script",
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  25,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// Load reads the file at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("read %s", path).Cause(err).Build()
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("decode config").Cause(err).Build()
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.InvalidInput(errors.PhaseConfig, "unknown keys: "+strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var problems []string

	if c.Bridge.MaxPayloadBytes < 0 {
		problems = append(problems, "bridge.max_payload_bytes must not be negative")
	}
	if c.Bridge.MaxOpenDecoders < 0 {
		problems = append(problems, "bridge.max_open_decoders must not be negative")
	}
	if c.Sandbox.MemoryLimitPages > 65536 {
		problems = append(problems, fmt.Sprintf("sandbox.memory_limit_pages %d exceeds 65536", c.Sandbox.MemoryLimitPages))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		problems = append(problems, "log rotation limits must not be negative")
	}

	if len(problems) > 0 {
		return errors.InvalidInput(errors.PhaseConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
