//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
)

// Format of a feature annotation file.
type Format string

const (
	FormatUnknown  Format = "UNKNOWN"
	FormatBED      Format = "BED"       // BED6 or BED12; columns past the strand are ignored
	FormatBEDShort Format = "BED_SHORT" // BED3 or BED4
	FormatGFF      Format = "GFF"
)

// formatSampleDepth is how many lines are classified when auto-detecting
// the annotation format.
const formatSampleDepth = 50

var (
	reBED      = regexp.MustCompile(`\A\S+\t\d+\t\d+\t\S+\t\S+\t[+.-](\t|$)`)
	reGFF      = regexp.MustCompile(`\A\S+\t\S+\t\S+\t\d+\t\d+\t\S+\t[+.-]\t\S+\t\S+`)
	reBEDShort = regexp.MustCompile(`\A\S+\t\d+\t\d+`)
)

// DetectFormat classifies the first lines of an annotation file and returns
// the format at least 80% of the non-header sample agrees on.
func DetectFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()

	counts := map[Format]int{}
	var total, header int
	scanner := bufio.NewScanner(f)
	for total+header < formatSampleDepth && scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line[0] == '#' {
			header++
			continue
		}
		total++
		switch {
		case reBED.MatchString(line):
			counts[FormatBED]++
		case reGFF.MatchString(line):
			counts[FormatGFF]++
		case reBEDShort.MatchString(line):
			counts[FormatBEDShort]++
		default:
			counts[FormatUnknown]++
		}
	}
	if err := scanner.Err(); err != nil {
		return FormatUnknown, err
	}

	best, bestCount := FormatUnknown, 0
	for format, count := range counts {
		if count > bestCount {
			best, bestCount = format, count
		}
	}
	if best == FormatUnknown || float64(bestCount) < 0.8*float64(total) {
		return FormatUnknown, fmt.Errorf("could not determine the format of feature file %s", path)
	}
	return best, nil
}
