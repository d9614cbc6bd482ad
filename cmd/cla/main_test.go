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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/neosoft-hpc/go-cla/cla"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeYAML(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const sampleA = `rows: 4
cols: 4
data: [6, 5, 3, -10, 3, 7, -3, 5, 12, 4, 4, 4, 0, 12, 0, -8]
`

func TestInfo(t *testing.T) {
	out, err := run(t, "info", "--block-height", "48")
	require.NoError(t, err)
	assert.Contains(t, out, "Dispatch level:")
	assert.Contains(t, out, "Cache block:      48x96")
}

func TestMultiply(t *testing.T) {
	a := writeYAML(t, "a.yaml", "rows: 2\ncols: 3\ndata: [1, 2, 3, 4, 5, 6]\n")
	b := writeYAML(t, "b.yaml", "rows: 3\ncols: 2\nlayout: col\ndata: [7, 8, 9, 10, 11, 12]\n")

	out, err := run(t, "multiply", "--a", a, "--b", b, "--workers", "2", "--format", "yaml")
	require.NoError(t, err)
	var got matrixFile
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, []float64{58, 64, 139, 154}, got.Data)

	out, err = run(t, "multiply", "--a", a, "--b", b)
	require.NoError(t, err)
	assert.Equal(t, "(58\t64\t)\n(139\t154\t)\n", out)

	_, err = run(t, "multiply", "--a", a, "--b", a)
	assert.ErrorIs(t, err, cla.ErrShapeMismatch)
}

func TestSolve(t *testing.T) {
	a := writeYAML(t, "a.yaml", sampleA)
	// b = A·(1, 1, 1, 1)
	b := writeYAML(t, "b.yaml", "data: [4, 12, 24, 4]\n")

	out, err := run(t, "solve", "--a", a, "--b", b, "--format", "yaml")
	require.NoError(t, err)
	var got matrixFile
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got.Data, 4)
	for i, x := range got.Data {
		assert.InDelta(t, 1, x, 1e-12, "x[%d]", i)
	}

	out, err = run(t, "solve", "--a", a, "--b", b, "--factors")
	require.NoError(t, err)
	assert.Contains(t, out, "L:\n")
	assert.Contains(t, out, "P:\n")
}

func TestInverseSingular(t *testing.T) {
	a := writeYAML(t, "a.yaml", "rows: 2\ncols: 2\ndata: [1, 2, 2, 4]\n")
	_, err := run(t, "inverse", "--a", a)
	assert.ErrorIs(t, err, cla.ErrSingular)
}

func TestBench(t *testing.T) {
	out, err := run(t, "bench", "--sizes", "8,13", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "engine")
	assert.Contains(t, out, "naive")
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "info", "--log-level", "chatty")
	assert.Error(t, err)

	cfg := writeYAML(t, "cla.yaml", "block_width: 0\n")
	_, err = run(t, "info", "--config", cfg)
	assert.Error(t, err)
}
