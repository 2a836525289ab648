// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads prspdict defaults from the environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("invalid config")

// Config holds converter and logging settings.
type Config struct {
	// TempDir is the directory for the scratch word list file. Empty means
	// the system temp directory.
	TempDir string `yaml:"temp_dir" env:"PRSPDICT_TEMP_DIR"`

	// ShortLen is the maximum number of runes in a short translation.
	ShortLen int `yaml:"short_len" env:"PRSPDICT_SHORT_LEN" env-default:"80"`

	Log LogConfig `yaml:"log"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"PRSPDICT_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"PRSPDICT_LOG_FORMAT" env-default:"text"`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags). An empty path
// loads from ENV and defaults only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.ShortLen < 0 {
		return fmt.Errorf("%w: short_len %d", ErrInvalid, c.ShortLen)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}
