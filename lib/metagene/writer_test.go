//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package metagene

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HollickLab/metagene-analysis/lib/feature"
	"github.com/HollickLab/metagene-analysis/lib/read"
)

func TestWriteHeader(t *testing.T) {
	shape := feature.Shape{Interval: 10, PadUpstream: 4, PadDownstream: 2}
	path := filepath.Join(t.TempDir(), "counts.csv")
	wr, err := NewWriter(path, shape, false, false)
	require.NoError(t, err)
	require.NoError(t, wr.WriteHeader())
	require.NoError(t, wr.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "# Metagene:\tUpstream:4 -- Interval:10 -- Downstream:2\tLength:16", lines[0])
	assert.Equal(t, "Feature,Orientation:Gap,-4,-3,-2,-1,0,1,2,3,4,5,6,7,8,9,10,11", lines[1])
}

func TestWriteProfileIntervalVariable(t *testing.T) {
	shape := feature.Shape{Interval: 4, PadUpstream: 1, PadDownstream: 1}
	w := feature.NewWindow(feature.Feature{Name: "var", Chrom: "chr1", Strand: 1, Start: 11, End: 20}, shape, read.CountAll)
	p := NewProfile(w, false)
	_, err := p.CountRead(testRead("chr1", 1, 1, 1, span(11, 20)), read.CountAll, true)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "counts.csv")
	wr, err := NewWriter(path, shape, true, false)
	require.NoError(t, err)
	require.NoError(t, wr.WriteHeader()) // no-op with variable intervals
	require.NoError(t, wr.WriteProfile(p))
	require.NoError(t, wr.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	// native 10-position interval, not rescaled to 4
	assert.Equal(t, "var,sense:allreads,0.000,1.000,1.000,1.000,1.000,1.000,1.000,1.000,1.000,1.000,1.000,0.000", lines[0])
	assert.Equal(t, 2+1+10+1, len(strings.Split(lines[0], ",")))
}

func TestWriterCompression(t *testing.T) {
	shape := feature.Shape{Interval: 2, PadUpstream: 0, PadDownstream: 0}

	tests := []struct {
		name   string
		file   string
		open   func(t *testing.T, path string) io.Reader
	}{
		{"gzip", "counts.csv.gz", func(t *testing.T, path string) io.Reader {
			f, err := os.Open(path)
			require.NoError(t, err)
			t.Cleanup(func() { f.Close() })
			zr, err := gzip.NewReader(f)
			require.NoError(t, err)
			return zr
		}},
		{"lz4", "counts.csv.lz4", func(t *testing.T, path string) io.Reader {
			f, err := os.Open(path)
			require.NoError(t, err)
			t.Cleanup(func() { f.Close() })
			return lz4.NewReader(f)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			wr, err := NewWriter(path, shape, false, false)
			require.NoError(t, err)
			require.NoError(t, wr.WriteHeader())
			require.NoError(t, wr.Close())

			content, err := io.ReadAll(tt.open(t, path))
			require.NoError(t, err)
			assert.Contains(t, string(content), "Feature,Orientation:Gap,0,1")
		})
	}
}

func TestWriterAppend(t *testing.T) {
	shape := feature.Shape{Interval: 2, PadUpstream: 0, PadDownstream: 0}
	path := filepath.Join(t.TempDir(), "counts.csv")

	wr, err := NewWriter(path, shape, false, false)
	require.NoError(t, err)
	require.NoError(t, wr.WriteHeader())
	require.NoError(t, wr.Close())

	wr, err = NewWriter(path, shape, false, true)
	require.NoError(t, err)
	w := feature.NewWindow(feature.Feature{Name: "f", Chrom: "chr1", Strand: 0, Start: 11, End: 12}, shape, read.CountAll)
	require.NoError(t, wr.WriteProfile(NewProfile(w, false)))
	require.NoError(t, wr.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "f,unstranded:allreads,0.000,0.000", lines[2])
}
