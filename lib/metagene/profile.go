//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package metagene accumulates weighted read coverage over feature windows
// and reports it in a common, rescaled coordinate system.
package metagene

import (
	"fmt"
	"sort"

	"github.com/HollickLab/metagene-analysis/lib/feature"
	"github.com/HollickLab/metagene-analysis/lib/read"
)

// Subset labels. Each profile row is one orientation:gap combination;
// sense plus antisense equals unstranded, ungapped plus gapped equals
// allreads.
const (
	OrientationSense      = "sense"
	OrientationAntisense  = "antisense"
	OrientationUnstranded = "unstranded"

	GapsAllReads = "allreads"
	GapsGapped   = "gapped"
	GapsUngapped = "ungapped"
)

// Profile holds per-position weighted counts for one feature window, split
// by orientation and optionally by gap status.
type Profile struct {
	Window      *feature.Window
	GapCounting bool
	counts      map[string][]float64
}

func NewProfile(w *feature.Window, gapCounting bool) *Profile {
	var orientations []string
	if w.Feat.Strand == 0 {
		orientations = []string{OrientationUnstranded}
	} else {
		orientations = []string{OrientationSense, OrientationAntisense}
	}
	gaps := []string{GapsAllReads}
	if gapCounting {
		gaps = []string{GapsUngapped, GapsGapped}
	}
	counts := make(map[string][]float64, len(orientations)*len(gaps))
	for _, o := range orientations {
		for _, g := range gaps {
			counts[o+":"+g] = make([]float64, w.Length())
		}
	}
	return &Profile{Window: w, GapCounting: gapCounting, counts: counts}
}

// CountRead adds a read to the profile. Each contributing position adds the
// read weight to its window index. Unless countPartial is set, reads whose
// 5' or 3' end falls outside the padded window are skipped entirely;
// otherwise overlapping positions are counted and the rest clipped.
// counted reports whether any position contributed.
func (p *Profile) CountRead(rd *read.Record, method read.CountMethod, countPartial bool) (counted bool, err error) {
	w := p.Window
	var orientation string
	switch {
	case w.Feat.Strand == 0:
		orientation = OrientationUnstranded
	case rd.Strand != 0:
		if rd.Strand == w.Feat.Strand {
			orientation = OrientationSense
		} else {
			orientation = OrientationAntisense
		}
	default:
		return false, fmt.Errorf("can not count unstranded reads on stranded features")
	}
	gaps := GapsAllReads
	if p.GapCounting {
		if rd.Gapped() {
			gaps = GapsGapped
		} else {
			gaps = GapsUngapped
		}
	}

	if rd.Chrom != w.Feat.Chrom {
		return false, nil
	}
	if !countPartial {
		if _, ok := w.Index(rd.Positions[0]); !ok {
			return false, nil
		}
		if _, ok := w.Index(rd.Positions[len(rd.Positions)-1]); !ok {
			return false, nil
		}
	}

	counts := p.counts[orientation+":"+gaps]
	weight := rd.Weight()
	for _, gp := range rd.CountPositions(method) {
		if idx, ok := w.Index(gp); ok {
			counts[idx] += weight
			counted = true
		}
	}
	return counted, nil
}

// Subsets returns the orientation:gap keys in output row order.
func (p *Profile) Subsets() []string {
	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

// Counts returns the window-length count array for a subset key.
func (p *Profile) Counts(subset string) []float64 {
	return p.counts[subset]
}

// Merge adds the counts of another profile over the same window.
func (p *Profile) Merge(o *Profile) {
	for k, counts := range o.counts {
		dst := p.counts[k]
		for i, c := range counts {
			dst[i] += c
		}
	}
}
