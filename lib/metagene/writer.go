//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package metagene

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"

	"github.com/HollickLab/metagene-analysis/lib/feature"
)

type GenericWriter interface {
	Write(buf []byte) (n int, err error)
	Close() error
}

type nopCloser struct {
	*os.File
}

func (nopCloser) Close() error { return nil }

// Writer streams metagene count rows to a CSV file. Paths ending in .gz or
// .lz4 are compressed on the fly. With IntervalVariable the native feature
// interval is written unscaled and the shared-coordinate header is skipped.
type Writer struct {
	Shape            feature.Shape
	IntervalVariable bool

	f  *os.File
	wc GenericWriter
}

func NewWriter(path string, shape feature.Shape, intervalVariable, appendOutput bool) (*Writer, error) {
	var fg int
	if appendOutput {
		fg = os.O_APPEND | os.O_CREATE | os.O_WRONLY
	} else {
		fg = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, fg, 0666)
	if err != nil {
		return nil, err
	}
	var wc GenericWriter
	switch {
	case strings.HasSuffix(path, ".gz"):
		wc = gzip.NewWriter(f)
	case strings.HasSuffix(path, ".lz4"):
		wc = lz4.NewWriter(f)
	default:
		wc = nopCloser{f}
	}
	return &Writer{Shape: shape, IntervalVariable: intervalVariable, f: f, wc: wc}, nil
}

// WriteHeader writes the shape comment and the column header giving the
// relative position of each count column. Skipped with variable intervals,
// where rows have differing lengths.
func (wr *Writer) WriteHeader() error {
	if wr.IntervalVariable {
		return nil
	}
	if _, err := fmt.Fprintf(wr.wc, "# Metagene:\t%s\n", wr.Shape); err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString("Feature,Orientation:Gap")
	for _, p := range wr.Shape.RelativePositions() {
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(p))
	}
	b.WriteByte('\n')
	_, err := wr.wc.Write([]byte(b.String()))
	return err
}

// WriteProfile writes one row per subset of the profile: feature name,
// subset, upstream padding counts, the interval rescaled onto the shape
// interval, then downstream padding counts.
func (wr *Writer) WriteProfile(p *Profile) error {
	w := p.Window
	padUp, interval := w.PadUpstream, w.Interval
	for _, subset := range p.Subsets() {
		counts := p.Counts(subset)
		upstream := counts[:padUp]
		internal := counts[padUp : padUp+interval]
		downstream := counts[padUp+interval:]
		if !wr.IntervalVariable {
			internal = AdjustToMetagene(internal, wr.Shape.Interval)
		}

		var b strings.Builder
		b.WriteString(w.Feat.Name)
		b.WriteByte(',')
		b.WriteString(subset)
		for _, section := range [][]float64{upstream, internal, downstream} {
			for _, c := range section {
				b.WriteByte(',')
				b.WriteString(strconv.FormatFloat(c, 'f', 3, 64))
			}
		}
		b.WriteByte('\n')
		if _, err := wr.wc.Write([]byte(b.String())); err != nil {
			return err
		}
	}
	return nil
}

func (wr *Writer) Close() error {
	if err := wr.wc.Close(); err != nil {
		wr.f.Close()
		return err
	}
	return wr.f.Close()
}
