//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package read

import (
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCigar(t *testing.T, s string) sam.Cigar {
	t.Helper()
	cigar, err := sam.ParseCigar([]byte(s))
	require.NoError(t, err)
	return cigar
}

func TestBuildPositions(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		cigar    string
		seqLen   int
		expected []int
	}{
		{"full match", 1, "10M", 0, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"insertion", 1, "5M4I5M", 0, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"deletion", 1, "5M4D5M", 0, []int{1, 2, 3, 4, 5, 10, 11, 12, 13, 14}},
		{"gapped match", 1, "5M3N5M", 0, []int{1, 2, 3, 4, 5, 9, 10, 11, 12, 13}},
		{"softclipped match", 4, "3S5M", 0, []int{4, 5, 6, 7, 8}},
		{"hardclipped match", 4, "3H5M3H", 0, []int{4, 5, 6, 7, 8}},
		{"padded match", 1, "3P5M", 0, []int{4, 5, 6, 7, 8}},
		{"mismatch", 1, "5=1X3=", 0, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"no cigar match", 1, "", 5, []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cigar sam.Cigar
			if tt.cigar != "" {
				cigar = mustCigar(t, tt.cigar)
			}
			positions, err := BuildPositions(tt.start, cigar, tt.seqLen)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, positions)
		})
	}
}

func TestBuildPositionsErrors(t *testing.T) {
	_, err := BuildPositions(1, nil, 0)
	assert.Error(t, err, "missing CIGAR with unknown sequence length")

	_, err = BuildPositions(1, mustCigar(t, "5M4B"), 0)
	assert.Error(t, err, "back operation is not supported")

	_, err = BuildPositions(1, mustCigar(t, "10M"), 8)
	assert.Error(t, err, "query length differs from sequence length")
}
