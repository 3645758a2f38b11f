//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package read converts alignment records into chromosome position arrays
// weighted by abundance and mapping multiplicity.
package read

import (
	"fmt"

	"github.com/biogo/hts/sam"
)

// Options gather the per-run settings applied while converting alignment
// records.
type Options struct {
	Policy           FlagPolicy
	Method           CountMethod
	ExtractAbundance bool
	ExtractMappings  bool
	Unique           bool
	IgnoreStrand     bool
}

// Record is one alignment reduced to the chromosome positions it covers.
// Positions are 1-based and ordered 5' to 3' with respect to the read, so
// Positions[0] is the read start on both strands. Gaps in the alignment
// appear as jumps between consecutive values, not as array gaps.
type Record struct {
	Chrom       string
	Strand      int8
	Positions   []int
	Abundance   int
	Mappings    int
	HasMappings bool
}

// FromSAM converts an alignment record under the given options. ok is false
// for records excluded by the flag policy; err reports malformed records.
func FromSAM(r *sam.Record, opts Options) (rd *Record, ok bool, err error) {
	countable, reverse := opts.Policy.Evaluate(r.Flags, opts.Method)
	if !countable {
		return nil, false, nil
	}
	if r.Ref == nil {
		return nil, false, fmt.Errorf("record %s: mapped record without a reference", r.Name)
	}

	nMappings, hasMappings, err := mappings(r, opts.ExtractMappings, opts.Unique)
	if err != nil {
		return nil, false, err
	}
	nAbundance, err := abundance(r, opts.ExtractAbundance)
	if err != nil {
		return nil, false, err
	}

	positions, err := BuildPositions(r.Pos+1, r.Cigar, r.Seq.Length)
	if err != nil {
		return nil, false, fmt.Errorf("record %s: %w", r.Name, err)
	}
	if len(positions) == 0 {
		// alignment covers no chromosome position, e.g. fully clipped
		return nil, false, nil
	}

	var strand int8 = 1
	if reverse {
		strand = -1
		// reorder so index 0 is the 5' end of the read
		for i, j := 0, len(positions)-1; i < j; i, j = i+1, j-1 {
			positions[i], positions[j] = positions[j], positions[i]
		}
	}
	if opts.IgnoreStrand {
		strand = 0
	}

	return &Record{
		Chrom:       r.Ref.Name(),
		Strand:      strand,
		Positions:   positions,
		Abundance:   nAbundance,
		Mappings:    nMappings,
		HasMappings: hasMappings,
	}, true, nil
}

// Weight is the contribution of the read at each counted position:
// abundance split evenly across its mapping positions.
func (rd *Record) Weight() float64 {
	return float64(rd.Abundance) / float64(rd.Mappings)
}

// Gapped reports whether the alignment spans more chromosome positions than
// it covers.
func (rd *Record) Gapped() bool {
	span := rd.Positions[len(rd.Positions)-1] - rd.Positions[0]
	if span < 0 {
		span = -span
	}
	return span+1 > len(rd.Positions)
}

// CountPositions selects the positions contributing counts under a method:
// the 5' start, the 3' end, or every covered position.
func (rd *Record) CountPositions(method CountMethod) []int {
	switch method {
	case CountStart:
		return rd.Positions[:1]
	case CountEnd:
		return rd.Positions[len(rd.Positions)-1:]
	}
	return rd.Positions
}

func (rd *Record) String() string {
	return fmt.Sprintf("Read at %s:%d-%d on %s strand; counts for %.3f", rd.Chrom, rd.Positions[0], rd.Positions[len(rd.Positions)-1], strandString(rd.Strand), rd.Weight())
}

func strandString(strand int8) string {
	switch strand {
	case 1:
		return "+"
	case -1:
		return "-"
	}
	return "."
}
