//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"fmt"
	"os"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// PathSAM stores Path to SAM (Binary=false) or BAM (Binary=true) file.
type PathSAM struct {
	Path   string
	Binary bool
}

// NewPathSAM classifies a path by extension: .bam is binary, anything else
// is treated as SAM text.
func NewPathSAM(path string) PathSAM {
	return PathSAM{Path: path, Binary: strings.HasSuffix(path, ".bam")}
}

// Open opens the SAM or BAM file and returns a record reader over it. The
// returned file must be closed by the caller after reading completes.
func Open(pathSAM PathSAM, nReader int) (f *os.File, rr sam.RecordReader, err error) {
	f, err = os.Open(pathSAM.Path)
	if err != nil {
		return nil, nil, err
	}
	if pathSAM.Binary {
		rr, err = bam.NewReader(f, nReader)
	} else {
		rr, err = sam.NewReader(f)
	}
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("opening %s: %w", pathSAM.Path, err)
	}
	return f, rr, nil
}

// ReadHeader opens the file just long enough to extract its header.
func ReadHeader(pathSAM PathSAM) (*sam.Header, error) {
	f, err := os.Open(pathSAM.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if pathSAM.Binary {
		rr, err := bam.NewReader(f, 1)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", pathSAM.Path, err)
		}
		defer rr.Close()
		return rr.Header(), nil
	}
	rr, err := sam.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", pathSAM.Path, err)
	}
	return rr.Header(), nil
}

// AuxInt returns the integer value of an auxiliary tag on the record.
func AuxInt(r *sam.Record, tag sam.Tag) (int, bool) {
	aux, ok := r.Tag(tag[:])
	if !ok {
		return 0, false
	}
	switch v := aux.Value().(type) {
	case int8:
		return int(v), true
	case uint8:
		return int(v), true
	case int16:
		return int(v), true
	case uint16:
		return int(v), true
	case int32:
		return int(v), true
	case uint32:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
