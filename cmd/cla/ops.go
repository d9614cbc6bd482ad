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

package main

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/neosoft-hpc/go-cla/cla"
	"github.com/neosoft-hpc/go-cla/cla/contrib/fastmult"
	"github.com/neosoft-hpc/go-cla/cla/contrib/lapack"
	"github.com/spf13/cobra"
)

func writeMatrix(w io.Writer, format string, m *cla.Matrix) error {
	switch format {
	case "text":
		_, err := fmt.Fprint(w, m.String())
		return err
	case "yaml":
		data, err := matrixYAML(m)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return errors.Newf("unknown output format %q", format)
}

func writeVector(w io.Writer, format string, v *cla.Vector) error {
	switch format {
	case "text":
		_, err := fmt.Fprintln(w, v.String())
		return err
	case "yaml":
		data, err := vectorYAML(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return errors.Newf("unknown output format %q", format)
}

func (a *app) newMultiplyCmd() *cobra.Command {
	var aPath, bPath, format string
	cmd := &cobra.Command{
		Use:   "multiply",
		Short: "Print A·B computed by the blocked parallel engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			am, err := readMatrix(aPath)
			if err != nil {
				return err
			}
			bm, err := readMatrix(bPath)
			if err != nil {
				return err
			}
			e, err := fastmult.NewEngine(a.cfg.EngineOptions(a.log)...)
			if err != nil {
				return err
			}
			defer e.Close()

			c, err := e.Product(am.View, bm.View)
			if err != nil {
				return err
			}
			stats := e.Stats()
			a.log.Info().
				Int64("blocks", stats.Blocks).
				Int64("full_tiles", stats.FullTiles).
				Int64("masked_tiles", stats.MaskedTiles).
				Dur("staging", stats.Staging).
				Msg("product computed")
			return writeMatrix(cmd.OutOrStdout(), format, c)
		},
	}
	cmd.Flags().StringVar(&aPath, "a", "", "YAML file holding A")
	cmd.Flags().StringVar(&bPath, "b", "", "YAML file holding B")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or yaml")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")
	return cmd
}

func (a *app) newSolveCmd() *cobra.Command {
	var aPath, bPath, format string
	var factors bool
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve A·x = b with an LU factorization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			am, err := readMatrix(aPath)
			if err != nil {
				return err
			}
			b, err := readVector(bPath)
			if err != nil {
				return err
			}
			lu, err := lapack.NewLU(am)
			if err != nil {
				return err
			}
			a.log.Debug().Ints("pivots", lu.Pivots()).Float64("det", lu.Det()).Msg("factored")

			out := cmd.OutOrStdout()
			if factors {
				for _, f := range []struct {
					name string
					m    *cla.Matrix
				}{{"L", lu.LFactor()}, {"U", lu.UFactor()}, {"P", lu.PFactor()}} {
					fmt.Fprintf(out, "%s:\n", f.name)
					if err := writeMatrix(out, format, f.m); err != nil {
						return err
					}
				}
			}
			if err := lu.Solve(b); err != nil {
				return err
			}
			return writeVector(out, format, b)
		},
	}
	cmd.Flags().StringVar(&aPath, "a", "", "YAML file holding A")
	cmd.Flags().StringVar(&bPath, "b", "", "YAML file holding b")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or yaml")
	cmd.Flags().BoolVar(&factors, "factors", false, "also print the L, U and P factors")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")
	return cmd
}

func (a *app) newInverseCmd() *cobra.Command {
	var aPath, format string
	cmd := &cobra.Command{
		Use:   "inverse",
		Short: "Print the inverse of A",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			am, err := readMatrix(aPath)
			if err != nil {
				return err
			}
			lu, err := lapack.NewLU(am)
			if err != nil {
				return err
			}
			inv, err := lu.Inverse()
			if err != nil {
				return err
			}
			return writeMatrix(cmd.OutOrStdout(), format, inv)
		},
	}
	cmd.Flags().StringVar(&aPath, "a", "", "YAML file holding A")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or yaml")
	_ = cmd.MarkFlagRequired("a")
	return cmd
}
