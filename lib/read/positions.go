//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package read

import (
	"fmt"

	"github.com/biogo/hts/sam"
)

// BuildPositions expands a CIGAR into the 1-based chromosome positions
// covered by the read, left to right along the reference. Match, equal and
// mismatch operations cover positions; deletions, skips and padding advance
// along the reference without covering; insertions and clipping do neither.
// An empty CIGAR is taken as a perfect match over seqLen bases.
func BuildPositions(start int, cigar sam.Cigar, seqLen int) ([]int, error) {
	if len(cigar) == 0 {
		if seqLen <= 0 {
			return nil, fmt.Errorf("missing CIGAR and unknown sequence length: cannot infer covered positions")
		}
		positions := make([]int, seqLen)
		for i := range positions {
			positions[i] = start + i
		}
		return positions, nil
	}

	var positions []int
	position := start
	for _, co := range cigar {
		var covers, advances bool
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			covers, advances = true, true
		case sam.CigarDeletion, sam.CigarSkipped, sam.CigarPadded:
			advances = true
		case sam.CigarInsertion, sam.CigarSoftClipped, sam.CigarHardClipped:
		default:
			return nil, fmt.Errorf("unsupported CIGAR operation %v", co.Type())
		}
		for i := 0; i < co.Len(); i++ {
			if covers {
				positions = append(positions, position)
			}
			if advances {
				position++
			}
		}
	}
	if seqLen > 0 {
		if qlen := queryLength(cigar); qlen != seqLen {
			return nil, fmt.Errorf("CIGAR query length %d does not match sequence length %d", qlen, seqLen)
		}
	}
	return positions, nil
}

func queryLength(cigar sam.Cigar) int {
	var n int
	for _, co := range cigar {
		n += co.Len() * co.Type().Consumes().Query
	}
	return n
}
