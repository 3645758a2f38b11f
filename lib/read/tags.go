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
	"io"

	"github.com/biogo/hts/sam"

	"github.com/HollickLab/metagene-analysis/lib/esam"
)

// Auxiliary tags carrying read abundance (collapsed read count) and the
// number of alignment positions reported by the aligner.
var (
	TagAbundance = sam.Tag{'N', 'A'}
	TagMappings  = sam.Tag{'N', 'H'}
)

// TagSampleDepth is how many records are inspected when verifying that a
// requested tag is present in an alignment file.
const TagSampleDepth = 10

// CheckTags reads up to TagSampleDepth records and confirms that every
// requested tag occurs at least once among them. A tag that only appears
// later in the file passes this check and is caught per record instead.
func CheckTags(rr sam.RecordReader, needAbundance, needMappings bool) error {
	if !needAbundance && !needMappings {
		return nil
	}
	var sawAbundance, sawMappings bool
	for i := 0; i < TagSampleDepth; i++ {
		r, err := rr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if _, ok := r.Tag(TagAbundance[:]); ok {
			sawAbundance = true
		}
		if _, ok := r.Tag(TagMappings[:]); ok {
			sawMappings = true
		}
	}
	if needAbundance && !sawAbundance {
		return fmt.Errorf("abundance tag %v absent from the first %d records: was the file collapsed?", TagAbundance, TagSampleDepth)
	}
	if needMappings && !sawMappings {
		return fmt.Errorf("mappings tag %v absent from the first %d records: realign reporting hit counts or use unique mode", TagMappings, TagSampleDepth)
	}
	return nil
}

// abundance returns the read count for a record: the abundance tag value when
// extraction is requested, otherwise 1 per record.
func abundance(r *sam.Record, extract bool) (int, error) {
	if !extract {
		return 1, nil
	}
	v, ok := esam.AuxInt(r, TagAbundance)
	if !ok {
		return 0, fmt.Errorf("record %s: could not extract the abundance tag", r.Name)
	}
	if v < 0 {
		return 0, fmt.Errorf("record %s: abundance must be greater than or equal to 0", r.Name)
	}
	return v, nil
}

// mappings returns the number of alignment positions for a record and
// whether the value came from the mappings tag. Records without the tag
// fall back to a single mapping.
func mappings(r *sam.Record, extract, unique bool) (int, bool, error) {
	if unique || !extract {
		return 1, false, nil
	}
	v, ok := esam.AuxInt(r, TagMappings)
	if !ok {
		return 1, false, nil
	}
	if v <= 0 {
		return 0, false, fmt.Errorf("record %s: mappings must be greater than 0", r.Name)
	}
	return v, true, nil
}
