//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package read

import (
	"github.com/biogo/hts/sam"
)

// CountMethod selects which part of a read (or feature) contributes counts.
type CountMethod string

const (
	CountAll   CountMethod = "all"
	CountStart CountMethod = "start"
	CountEnd   CountMethod = "end"
)

// Valid reports whether the method is one of all, start or end.
func (m CountMethod) Valid() bool {
	return m == CountAll || m == CountStart || m == CountEnd
}

// FlagPolicy controls which special-category alignments enter counting.
// Unmapped records are always excluded.
type FlagPolicy struct {
	CountSecondary     bool
	CountQCFail        bool
	CountDuplicate     bool
	CountSupplementary bool
}

// DefaultFlagPolicy counts secondary and supplementary alignments but skips
// records that failed quality control or were marked as duplicates.
func DefaultFlagPolicy() FlagPolicy {
	return FlagPolicy{CountSecondary: true, CountSupplementary: true}
}

// Evaluate interprets a record's bitwise flag field under the policy.
// countable reports whether the record should be counted and reverse reports
// the reverse-complement bit, which is returned even for records rejected as
// unmapped. With start-only or end-only counting, multi-segment records must
// carry the matching first-in-template or last-in-template bit.
func (p FlagPolicy) Evaluate(flags sam.Flags, method CountMethod) (countable, reverse bool) {
	reverse = flags&sam.Reverse != 0
	if flags&sam.Unmapped != 0 {
		return false, reverse
	}
	if !p.CountSecondary && flags&sam.Secondary != 0 {
		return false, reverse
	}
	if !p.CountQCFail && flags&sam.QCFail != 0 {
		return false, reverse
	}
	if !p.CountDuplicate && flags&sam.Duplicate != 0 {
		return false, reverse
	}
	if !p.CountSupplementary && flags&sam.Supplementary != 0 {
		return false, reverse
	}
	if flags&sam.Paired != 0 {
		switch method {
		case CountStart:
			if flags&sam.Read1 == 0 {
				return false, reverse
			}
		case CountEnd:
			if flags&sam.Read2 == 0 {
				return false, reverse
			}
		}
	}
	return true, reverse
}
