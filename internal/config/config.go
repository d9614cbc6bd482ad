// Copyright 2025 go-highway Authors
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

// Package config loads the settings of the cla command.
//
// Precedence, lowest first: built-in defaults, a YAML file, CLA_*
// environment variables, command-line flags (applied by the caller).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/neosoft-hpc/go-cla/cla/contrib/fastmult"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvWorkers         = "CLA_WORKERS"
	EnvBlockHeight     = "CLA_BLOCK_HEIGHT"
	EnvBlockWidth      = "CLA_BLOCK_WIDTH"
	EnvLogLevel        = "CLA_LOG_LEVEL"
	EnvSequentialInner = "CLA_SEQUENTIAL_INNER"
)

// Config holds the engine and logging settings.
type Config struct {
	Workers         int    `yaml:"workers"`
	BlockHeight     int    `yaml:"block_height"`
	BlockWidth      int    `yaml:"block_width"`
	LogLevel        string `yaml:"log_level"`
	SequentialInner bool   `yaml:"sequential_inner"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	p := fastmult.DefaultBlockParams()
	return &Config{
		Workers:     fastmult.DefaultWorkers(),
		BlockHeight: p.Height,
		BlockWidth:  p.Width,
		LogLevel:    "info",
	}
}

// Load returns the defaults overlaid with the YAML file at path, if any,
// and then with the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errors.Wrap(err, "config: read file")
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "config: parse %s", path)
			}
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CLA_* variables that are set.
func (c *Config) ApplyEnv() error {
	for _, v := range []struct {
		key string
		dst *int
	}{
		{EnvWorkers, &c.Workers},
		{EnvBlockHeight, &c.BlockHeight},
		{EnvBlockWidth, &c.BlockWidth},
	} {
		if s := os.Getenv(v.key); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return errors.Wrapf(err, "config: %s", v.key)
			}
			*v.dst = n
		}
	}
	if s := os.Getenv(EnvLogLevel); s != "" {
		c.LogLevel = s
	}
	if s := os.Getenv(EnvSequentialInner); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return errors.Wrapf(err, "config: %s", EnvSequentialInner)
		}
		c.SequentialInner = b
	}
	return nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return errors.Newf("config: invalid workers: %d", c.Workers)
	}
	if err := c.BlockParams().Validate(); err != nil {
		return errors.Wrap(err, "config")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// BlockParams returns the configured blocking.
func (c *Config) BlockParams() fastmult.BlockParams {
	return fastmult.BlockParams{Height: c.BlockHeight, Width: c.BlockWidth}
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, errors.WithHint(
			errors.Wrapf(err, "config: invalid log level %q", c.LogLevel),
			"use one of trace, debug, info, warn, error, fatal, panic, disabled")
	}
	return lvl, nil
}

// EngineOptions returns the fastmult options for this configuration.
func (c *Config) EngineOptions(log zerolog.Logger) []fastmult.Option {
	return []fastmult.Option{
		fastmult.WithWorkers(c.Workers),
		fastmult.WithBlockParams(c.BlockParams()),
		fastmult.WithSequentialInner(c.SequentialInner),
		fastmult.WithLogger(log),
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Workers: %d, Block: %dx%d, LogLevel: %s, SequentialInner: %v}",
		c.Workers, c.BlockHeight, c.BlockWidth, c.LogLevel, c.SequentialInner)
}
