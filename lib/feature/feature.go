//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package feature models annotated genomic intervals and the padded,
// strand-oriented windows used to accumulate read coverage around them.
package feature

type Feature struct {
	ID     uint32
	Name   string
	Chrom  string
	Strand int8
	Start  int // 1-based, inclusive
	End    int // 1-based, inclusive; Start <= End
}

// Length returns the length of feature
func (feat Feature) Length() int {
	return feat.End - feat.Start + 1
}

// StrandString renders the strand as +, - or . for unstranded features.
func (feat Feature) StrandString() string {
	switch feat.Strand {
	case 1:
		return "+"
	case -1:
		return "-"
	}
	return "."
}
