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

package cla

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorRoundTrip(t *testing.T) {
	v := VectorOf(1, -2.5, math.Inf(1), math.SmallestNonzeroFloat64, 0)
	data, err := v.MarshalBinary()
	require.NoError(t, err)

	var got Vector
	require.NoError(t, got.UnmarshalBinary(data))
	if diff := cmp.Diff(v.ToSlice(), got.ToSlice()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStridedVectorRoundTrip(t *testing.T) {
	v := VectorOf(0, 1, 2, 3, 4, 5)
	s := &Vector{v.Slice(1, 2)}
	data, err := s.MarshalBinary()
	require.NoError(t, err)

	var got Vector
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, []float64{1, 3, 5}, got.ToSlice())
	assert.Equal(t, 1, got.Dist(), "restored vectors are dense")
}

func TestMatrixRoundTrip(t *testing.T) {
	for _, layout := range []Layout{RowMajor, ColMajor} {
		t.Run(layout.String(), func(t *testing.T) {
			m, err := MatrixOf(2, 3, layout, []float64{1, 2, 3, 4, 5, 6})
			require.NoError(t, err)
			data, err := m.MarshalBinary()
			require.NoError(t, err)

			var got Matrix
			require.NoError(t, got.UnmarshalBinary(data))
			assert.Equal(t, m.Shape(), got.Shape())
			assert.Equal(t, layout, got.Layout())
			if diff := cmp.Diff(m.ToRows(), got.ToRows()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmarshalRejectsMalformedState(t *testing.T) {
	vecData, err := VectorOf(1, 2, 3).MarshalBinary()
	require.NoError(t, err)
	m, err := MatrixOf(1, 2, RowMajor, []float64{1, 2})
	require.NoError(t, err)
	matData, err := m.MarshalBinary()
	require.NoError(t, err)

	// 2147437309 × 1073764994 elements is 2^61+67194; eight times that wraps
	// to 537552 bytes in 64 bits.
	huge := append([]byte{}, matData[:5]...)
	huge = binary.LittleEndian.AppendUint64(huge, 2147437309)
	huge = binary.LittleEndian.AppendUint64(huge, 1073764994)
	huge = binary.LittleEndian.AppendUint64(huge, 537552)
	huge = append(huge, make([]byte, 537552)...)

	tests := []struct {
		name string
		data []byte
		mat  bool
	}{
		{"empty", nil, false},
		{"bad magic", append([]byte("XYZ"), vecData[3:]...), false},
		{"vector as matrix", vecData, true},
		{"matrix as vector", matData, false},
		{"truncated payload", vecData[:len(vecData)-1], false},
		{"trailing bytes", append(append([]byte{}, vecData...), 0), false},
		{"truncated extents", matData[:10], true},
		{"element count overflow", huge, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.mat {
				err = new(Matrix).UnmarshalBinary(tt.data)
			} else {
				err = new(Vector).UnmarshalBinary(tt.data)
			}
			assert.True(t, errors.Is(err, ErrMalformedState), "got %v", err)
		})
	}
}

func TestUnmarshalLeavesReceiverOnError(t *testing.T) {
	v := VectorOf(4, 5)
	require.Error(t, v.UnmarshalBinary([]byte("CLA")))
	assert.Equal(t, []float64{4, 5}, v.ToSlice())
}
