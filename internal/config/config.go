// Package config loads the wscat configuration.
//
// Values are taken from the defaults, then the YAML file if any, then
// environment variables prefixed with WSCAT_. Command line flags are
// applied on top by the caller.
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "WSCAT_"

// Config is the wscat configuration.
type Config struct {
	URL                   string        `yaml:"url" env:"URL"`
	Subprotocol           string        `yaml:"subprotocol" env:"SUBPROTOCOL"`
	Timeout               time.Duration `yaml:"timeout" env:"TIMEOUT"`
	PollInterval          time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	HandshakePollInterval time.Duration `yaml:"handshake_poll_interval" env:"HANDSHAKE_POLL_INTERVAL"`
	WriteBufferSize       int           `yaml:"write_buffer_size" env:"WRITE_BUFFER_SIZE"`
	MetricsAddr           string        `yaml:"metrics_addr" env:"METRICS_ADDR"`
	LogLevel              string        `yaml:"log_level" env:"LOG_LEVEL"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Timeout:               10 * time.Second,
		PollInterval:          10 * time.Millisecond,
		HandshakePollInterval: 100 * time.Millisecond,
		WriteBufferSize:       1360,
		LogLevel:              "info",
	}
}

// Load returns the configuration read from the YAML file at path and the
// environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, xerrors.Errorf("failed to read config file: %w", err)
		}
		err = yaml.Unmarshal(b, &cfg)
		if err != nil {
			return Config{}, xerrors.Errorf("failed to parse config file %q: %w", path, err)
		}
	}

	err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix})
	if err != nil {
		return Config{}, xerrors.Errorf("failed to parse environment: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return xerrors.Errorf("timeout must not be negative: %v", c.Timeout)
	}
	if c.PollInterval <= 0 {
		return xerrors.Errorf("poll interval must be positive: %v", c.PollInterval)
	}
	if c.HandshakePollInterval <= 0 {
		return xerrors.Errorf("handshake poll interval must be positive: %v", c.HandshakePollInterval)
	}
	if c.WriteBufferSize <= 0 {
		return xerrors.Errorf("write buffer size must be positive: %v", c.WriteBufferSize)
	}
	return nil
}
