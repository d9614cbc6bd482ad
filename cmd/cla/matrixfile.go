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
	"os"

	"github.com/cockroachdb/errors"
	"github.com/neosoft-hpc/go-cla/cla"
	"gopkg.in/yaml.v3"
)

// matrixFile is the YAML form of a matrix or vector. Data is given in row
// order; vectors omit rows and cols.
type matrixFile struct {
	Rows   int       `yaml:"rows,omitempty"`
	Cols   int       `yaml:"cols,omitempty"`
	Layout string    `yaml:"layout,omitempty"`
	Data   []float64 `yaml:"data"`
}

func parseLayout(s string) (cla.Layout, error) {
	switch s {
	case "", "row", "rowmajor", cla.RowMajor.String():
		return cla.RowMajor, nil
	case "col", "colmajor", cla.ColMajor.String():
		return cla.ColMajor, nil
	}
	return 0, errors.Newf("unknown layout %q", s)
}

func readFile(path string) (*matrixFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var mf matrixFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return &mf, nil
}

func readMatrix(path string) (*cla.Matrix, error) {
	mf, err := readFile(path)
	if err != nil {
		return nil, err
	}
	layout, err := parseLayout(mf.Layout)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	m, err := cla.MatrixOf(mf.Rows, mf.Cols, layout, mf.Data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return m, nil
}

func readVector(path string) (*cla.Vector, error) {
	mf, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return cla.VectorOf(mf.Data...), nil
}

func matrixYAML(m *cla.Matrix) ([]byte, error) {
	var data []float64
	for _, row := range m.ToRows() {
		data = append(data, row...)
	}
	return yaml.Marshal(matrixFile{Rows: m.Rows(), Cols: m.Cols(), Layout: m.Layout().String(), Data: data})
}

func vectorYAML(v *cla.Vector) ([]byte, error) {
	return yaml.Marshal(matrixFile{Data: v.ToSlice()})
}
