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

// Command cla runs dense linear algebra from the command line: matrix
// products on the blocked SIMD engine, LU solves and inverses, and a
// throughput benchmark against the reference BLAS.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/neosoft-hpc/go-cla/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// app carries the settings resolved before a subcommand runs.
type app struct {
	cfgPath string
	cfg     *config.Config
	log     zerolog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "cla",
		Short:         "Dense linear algebra with a blocked SIMD matrix product",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "YAML configuration file")
	flags.Int("workers", 0, "worker pool width (0 = from config)")
	flags.Int("block-height", 0, "rows of A per cache block (0 = from config)")
	flags.Int("block-width", 0, "columns of A per cache block (0 = from config)")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.Bool("sequential-inner", false, "run the column blocks of a row block on one goroutine")

	root.AddCommand(
		a.newInfoCmd(),
		a.newBenchCmd(),
		a.newMultiplyCmd(),
		a.newSolveCmd(),
		a.newInverseCmd(),
	)
	return root
}

// setup loads the configuration, applies explicit flags on top and builds
// the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	applyFlags(cmd.Flags(), cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, _ := cfg.Level()

	a.cfg = cfg
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(lvl).
		With().Timestamp().Logger()
	a.log.Debug().Stringer("config", cfg).Msg("configuration loaded")
	return nil
}

// applyFlags copies the flags set on the command line into cfg.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("block-height") {
		cfg.BlockHeight, _ = flags.GetInt("block-height")
	}
	if flags.Changed("block-width") {
		cfg.BlockWidth, _ = flags.GetInt("block-width")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("sequential-inner") {
		cfg.SequentialInner, _ = flags.GetBool("sequential-inner")
	}
}
