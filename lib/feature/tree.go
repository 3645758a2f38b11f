//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"github.com/biogo/store/interval"
)

// BuildWindowTrees indexes the padded window of each feature in a per
// chromosome interval tree, so reads can be routed to the windows they may
// land in with one query per read.
func BuildWindowTrees(windows []*Window) (trees map[string]*interval.IntTree, err error) {
	trees = make(map[string]*interval.IntTree)
	for i, w := range windows {
		// New tree for unseen chromosome
		if _, ok := trees[w.Feat.Chrom]; !ok {
			trees[w.Feat.Chrom] = &interval.IntTree{}
		}
		start, end := w.Bounds()
		iv := IntInterval{Start: start, End: end, UID: uintptr(i), Idx: i}
		err = trees[w.Feat.Chrom].Insert(iv, false)
		if err != nil {
			return
		}
	}
	for k := range trees {
		trees[k].AdjustRanges()
	}
	return
}

// QueryWindows returns the indices of windows overlapping the 0-based
// half-open chromosome interval [start, end).
func QueryWindows(trees map[string]*interval.IntTree, chrom string, start, end int) []int {
	tree, ok := trees[chrom]
	if !ok {
		return nil
	}
	var idxs []int
	for _, iv := range tree.Get(IntInterval{Start: start, End: end}) {
		idxs = append(idxs, iv.(IntInterval).Idx)
	}
	return idxs
}
