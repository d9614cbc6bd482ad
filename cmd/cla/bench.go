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
	"math"
	"math/rand/v2"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/neosoft-hpc/go-cla/cla"
	"github.com/neosoft-hpc/go-cla/cla/contrib/fastmult"
	"github.com/neosoft-hpc/go-cla/cla/contrib/lapack"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func (a *app) newBenchCmd() *cobra.Command {
	var sizes []int
	var naiveMax int
	var seed uint64
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time square products on the engine, the reference BLAS and a naive loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := fastmult.NewEngine(a.cfg.EngineOptions(a.log)...)
			if err != nil {
				return err
			}
			defer e.Close()
			a.log.Info().
				Strs("sizes", lo.Map(sizes, func(n int, _ int) string { return strconv.Itoa(n) })).
				Int("workers", e.Workers()).
				Msg("benchmark starting")

			rng := rand.New(rand.NewPCG(seed, seed+1))
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "n\tmethod\ttime\tthroughput\tmax error")
			for _, n := range lo.Filter(sizes, func(n int, _ int) bool { return n > 0 }) {
				am := randomMatrix(rng, n)
				bm := randomMatrix(rng, n)

				ref := cla.NewMatrix(n, n, cla.RowMajor)
				refTime := timeIt(func() error { return lapack.Gemm(ref.View, am.View, bm.View) })

				got := cla.NewMatrix(n, n, cla.RowMajor)
				engTime := timeIt(func() error { return e.Multiply(got.View, am.View, bm.View) })

				row := func(method string, d time.Duration, errMax float64) {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.3g\n", n, method, d.Round(time.Microsecond),
						humanize.SIWithDigits(gflops(n, d)*1e9, 2, "FLOP/s"), errMax)
				}
				row("engine", engTime, maxAbsDiff(ref, got))
				row("gonum", refTime, 0)
				if n <= naiveMax {
					naive := cla.NewMatrix(n, n, cla.RowMajor)
					naiveTime := timeIt(func() error { naiveMultiply(naive, am, bm); return nil })
					row("naive", naiveTime, maxAbsDiff(ref, naive))
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntSliceVar(&sizes, "sizes", []int{100, 500, 1000}, "matrix sizes to time")
	cmd.Flags().IntVar(&naiveMax, "naive-max", 500, "largest size timed with the naive loop")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}

func randomMatrix(rng *rand.Rand, n int) *cla.Matrix {
	m := cla.NewMatrix(n, n, cla.RowMajor)
	data := m.Data()
	for i := range data {
		data[i] = rng.Float64()
	}
	return m
}

func timeIt(fn func() error) time.Duration {
	start := time.Now()
	if err := fn(); err != nil {
		panic(err)
	}
	return time.Since(start)
}

// gflops counts 2n³ floating point operations.
func gflops(n int, d time.Duration) float64 {
	return 2 * math.Pow(float64(n), 3) / d.Seconds() / 1e9
}

func naiveMultiply(c, a, b *cla.Matrix) {
	n := a.Rows()
	for i := range n {
		for j := range n {
			sum := 0.0
			for k := range n {
				sum += a.At(i, k) * b.At(k, j)
			}
			c.Set(i, j, sum)
		}
	}
}

func maxAbsDiff(a, b *cla.Matrix) float64 {
	diffs := lo.Map(a.Data(), func(x float64, i int) float64 { return math.Abs(x - b.Data()[i]) })
	return lo.Max(diffs)
}
