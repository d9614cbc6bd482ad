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
	"strconv"
	"strings"
)

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// String lists the elements separated by ", ".
func (v VectorView) String() string {
	var sb strings.Builder
	for i := range v.size {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatFloat(v.data[i*v.dist]))
	}
	return sb.String()
}

// String prints one parenthesized row per line with tab-terminated
// elements, or "empty matrix".
func (v View) String() string {
	if v.Empty() {
		return "empty matrix"
	}
	var sb strings.Builder
	for i := range v.rows {
		sb.WriteByte('(')
		for j := range v.cols {
			sb.WriteString(formatFloat(v.data[v.offset(i, j)]))
			sb.WriteByte('\t')
		}
		sb.WriteString(")\n")
	}
	return sb.String()
}
