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
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/neosoft-hpc/go-cla/cla/contrib/fastmult"
	"github.com/neosoft-hpc/go-cla/hwy"
	"github.com/spf13/cobra"
	"github.com/viterin/vek"
)

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the detected SIMD level and the blocking in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			params := a.cfg.BlockParams()
			vi := vek.Info()

			fmt.Fprintf(out, "Dispatch level:   %s\n", hwy.CurrentName())
			fmt.Fprintf(out, "Vector width:     %d bytes (%d float64 lanes)\n", hwy.CurrentWidth(), hwy.MaxLanes[float64]())
			fmt.Fprintf(out, "FMA:              %v\n", hwy.HasFMA())
			fmt.Fprintf(out, "Native kernels:   %v\n", hwy.NativeKernels() && !hwy.NoSimdEnv())
			fmt.Fprintf(out, "Micro tile:       %dx%d\n", fastmult.TileHeight, fastmult.TileWidth())
			fmt.Fprintf(out, "Cache block:      %dx%d\n", params.Height, params.Width)
			fmt.Fprintf(out, "Scratch buffer:   %s per row block\n", humanize.IBytes(uint64(params.ScratchBytes())))
			fmt.Fprintf(out, "Workers:          %d\n", a.cfg.Workers)
			fmt.Fprintf(out, "Vector kernels:   acceleration=%v features=%s\n", vi.Acceleration, strings.Join(vi.CPUFeatures, ","))
			return nil
		},
	}
}
