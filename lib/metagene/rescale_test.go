//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package metagene

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func formatCounts(counts []float64) string {
	fields := make([]string, len(counts))
	for i, c := range counts {
		fields[i] = strconv.FormatFloat(c, 'f', 3, 64)
	}
	return strings.Join(fields, ",")
}

func TestAdjustToMetagene(t *testing.T) {
	tests := []struct {
		name     string
		counts   []float64
		target   int
		expected string
	}{
		{"expand to metagene", []float64{16, 8, 24, 4}, 8,
			"8.000,8.000,4.000,4.000,12.000,12.000,2.000,2.000"},
		{"contract to metagene", []float64{6, 8, 6, 2, 4, 4, 2, 4, 24, 8}, 4,
			"17.000,9.000,8.000,34.000"},
		{"contract with messy floats", []float64{2.5, 4, 10.0 / 3, 10, 11, 7.3, 4}, 4,
			"5.500,9.333,17.825,9.475"},
		{"contract with other messy floats", []float64{2.5, 4, 10.0 / 3, 10, 11, 7.3, 4}, 3,
			"7.611,19.556,14.967"},
		{"identity", []float64{1, 2, 3}, 3, "1.000,2.000,3.000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adjusted := AdjustToMetagene(tt.counts, tt.target)
			assert.Len(t, adjusted, tt.target)
			assert.Equal(t, tt.expected, formatCounts(adjusted))
		})
	}
}

func TestAdjustToMetageneConservesTotals(t *testing.T) {
	counts := []float64{3, 0, 0, 7.25, 1, 1, 0.5, 12, 0, 2.125, 9}
	for _, target := range []int{1, 2, 3, 5, 11, 17, 40} {
		adjusted := AdjustToMetagene(counts, target)
		var before, after float64
		for _, c := range counts {
			before += c
		}
		for _, c := range adjusted {
			after += c
		}
		assert.InDelta(t, before, after, 1e-9, "target %d", target)
	}
}
