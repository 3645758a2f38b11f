//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"fmt"

	"github.com/HollickLab/metagene-analysis/lib/read"
)

// Shape defines the common coordinate system counts are reported in: an
// interval of interest flanked by upstream and downstream padding.
type Shape struct {
	Interval      int
	PadUpstream   int
	PadDownstream int
}

// NewShape validates a metagene shape. The interval must be at least one
// position long; paddings may be zero.
func NewShape(interval, padUpstream, padDownstream int) (Shape, error) {
	if interval < 1 {
		return Shape{}, fmt.Errorf("interval must be greater than 0, got %d", interval)
	}
	if padUpstream < 0 || padDownstream < 0 {
		return Shape{}, fmt.Errorf("padding must be greater than or equal to 0, got %d and %d", padUpstream, padDownstream)
	}
	return Shape{Interval: interval, PadUpstream: padUpstream, PadDownstream: padDownstream}, nil
}

// Length is paddings plus interval.
func (s Shape) Length() int {
	return s.PadUpstream + s.Interval + s.PadDownstream
}

// RelativePositions lists the output column positions: negative values over
// the upstream padding, 0 to Interval-1 over the interval, then continuing
// over the downstream padding.
func (s Shape) RelativePositions() []int {
	positions := make([]int, 0, s.Length())
	for i := s.PadUpstream; i > 0; i-- {
		positions = append(positions, -i)
	}
	for i := 0; i < s.Interval+s.PadDownstream; i++ {
		positions = append(positions, i)
	}
	return positions
}

func (s Shape) String() string {
	return fmt.Sprintf("Upstream:%d -- Interval:%d -- Downstream:%d\tLength:%d", s.PadUpstream, s.Interval, s.PadDownstream, s.Length())
}

// Window is the padded genomic region around one feature, oriented 5' to 3'
// with respect to the feature. Index 0 is the upstream edge of the padding
// on both strands; for minus-strand features indices run against the
// chromosome. The window interval is the native feature length, rescaled to
// the shape interval only at output time.
type Window struct {
	Feat          Feature
	Interval      int
	PadUpstream   int
	PadDownstream int
	first         int // genomic 1-based position at index 0
	step          int // +1 on the plus strand, -1 on the minus strand
}

// NewWindow orients and pads a feature. With start or end feature counting
// the interval collapses to the single 5'-most or 3'-most feature position.
func NewWindow(feat Feature, shape Shape, featureCount read.CountMethod) *Window {
	start, end := feat.Start, feat.End
	if feat.Strand == -1 {
		// chromosome end is the feature start
		switch featureCount {
		case read.CountStart:
			start = end
		case read.CountEnd:
			end = start
		}
		return &Window{
			Feat:          feat,
			Interval:      end - start + 1,
			PadUpstream:   shape.PadUpstream,
			PadDownstream: shape.PadDownstream,
			first:         end + shape.PadUpstream,
			step:          -1,
		}
	}
	switch featureCount {
	case read.CountStart:
		end = start
	case read.CountEnd:
		start = end
	}
	return &Window{
		Feat:          feat,
		Interval:      end - start + 1,
		PadUpstream:   shape.PadUpstream,
		PadDownstream: shape.PadDownstream,
		first:         start - shape.PadUpstream,
		step:          1,
	}
}

// Length is the number of window positions, paddings included.
func (w *Window) Length() int {
	return w.PadUpstream + w.Interval + w.PadDownstream
}

// Index maps a 1-based chromosome position to its window index.
func (w *Window) Index(p int) (int, bool) {
	idx := (p - w.first) * w.step
	return idx, idx >= 0 && idx < w.Length()
}

// Bounds returns the 0-based half-open chromosome interval covered by the
// window, padding included.
func (w *Window) Bounds() (start, end int) {
	if w.step > 0 {
		return w.first - 1, w.first + w.Length() - 1
	}
	return w.first - w.Length(), w.first
}

// Positions lists the chromosome positions of the window in 5' to 3' order
// with respect to the feature.
func (w *Window) Positions() []int {
	positions := make([]int, w.Length())
	p := w.first
	for i := range positions {
		positions[i] = p
		p += w.step
	}
	return positions
}
