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
)

func TestFlagPolicyEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		flags     sam.Flags
		policy    FlagPolicy
		method    CountMethod
		countable bool
		reverse   bool
	}{
		{"unmapped", sam.Unmapped, DefaultFlagPolicy(), CountAll, false, false},
		{"unmapped with flags", sam.Supplementary | sam.Secondary | sam.Read2 | sam.Read1 | sam.Reverse | sam.MateUnmapped | sam.Unmapped | sam.Paired, DefaultFlagPolicy(), CountAll, false, true},
		{"plus strand", 0, DefaultFlagPolicy(), CountAll, true, false},
		{"minus strand", sam.Reverse, DefaultFlagPolicy(), CountAll, true, true},
		{"multiple segments", sam.Paired, DefaultFlagPolicy(), CountAll, true, false},
		{"count secondary alignment", sam.Secondary, DefaultFlagPolicy(), CountAll, true, false},
		{"skip secondary alignment", sam.Secondary, FlagPolicy{CountSupplementary: true}, CountAll, false, false},
		{"skip failed quality control", sam.QCFail, DefaultFlagPolicy(), CountAll, false, false},
		{"count failed quality control", sam.QCFail, FlagPolicy{CountSecondary: true, CountQCFail: true, CountSupplementary: true}, CountAll, true, false},
		{"skip duplicate", sam.Duplicate, DefaultFlagPolicy(), CountAll, false, false},
		{"count duplicate", sam.Duplicate, FlagPolicy{CountSecondary: true, CountDuplicate: true, CountSupplementary: true}, CountAll, true, false},
		{"count supplementary alignment", sam.Supplementary, DefaultFlagPolicy(), CountAll, true, false},
		{"skip supplementary alignment", sam.Supplementary, FlagPolicy{CountSecondary: true}, CountAll, false, false},
		{"count only start success", sam.Paired | sam.Read1, DefaultFlagPolicy(), CountStart, true, false},
		{"count only start fail", sam.Paired, DefaultFlagPolicy(), CountStart, false, false},
		{"count only end success", sam.Paired | sam.Read2, DefaultFlagPolicy(), CountEnd, true, false},
		{"count only end fail", sam.Paired, DefaultFlagPolicy(), CountEnd, false, false},
		{"unpaired start counting", 0, DefaultFlagPolicy(), CountStart, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			countable, reverse := tt.policy.Evaluate(tt.flags, tt.method)
			assert.Equal(t, tt.countable, countable, "countable")
			assert.Equal(t, tt.reverse, reverse, "reverse")
		})
	}
}
