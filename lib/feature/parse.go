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
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/HollickLab/metagene-analysis/lib/chrom"
)

// Parser turns annotation lines into validated features. Chromosome names
// are resolved through the registry; features on chromosomes absent from the
// alignment header are skipped.
type Parser struct {
	Format       Format
	Registry     *chrom.Registry
	IgnoreStrand bool

	logger        *zap.Logger
	warnedSwapped bool
	nextID        uint32
}

func NewParser(format Format, registry *chrom.Registry, ignoreStrand bool, logger *zap.Logger) *Parser {
	return &Parser{Format: format, Registry: registry, IgnoreStrand: ignoreStrand, logger: logger}
}

// Load parses a whole annotation file, skipping comment lines and features
// on unresolvable chromosomes.
func (pr *Parser) Load(path string) ([]Feature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var features []Feature
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		feat, ok, err := pr.Parse(scanner.Text())
		if err != nil {
			return nil, err
		}
		if ok {
			features = append(features, feat)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return features, nil
}

// Parse converts one annotation line. ok is false for comments, blank lines
// and features skipped for an unknown chromosome.
func (pr *Parser) Parse(line string) (feat Feature, ok bool, err error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || line[0] == '#' {
		return Feature{}, false, nil
	}
	switch pr.Format {
	case FormatBED:
		feat, err = pr.parseBED(line, false)
	case FormatBEDShort:
		feat, err = pr.parseBED(line, true)
	case FormatGFF:
		feat, err = pr.parseGFF(line)
	default:
		return Feature{}, false, fmt.Errorf("could not determine the format of features in the feature file")
	}
	if err != nil {
		return Feature{}, false, err
	}
	return pr.finish(feat)
}

// parseBED reads BED columns: chromosome, 0-based start, end, then name,
// score and strand for full BED. Minus-strand lines with start and end
// swapped are repaired with a one-time warning.
func (pr *Parser) parseBED(line string, short bool) (Feature, error) {
	parts := strings.Split(line, "\t")
	if short && len(parts) < 3 {
		return Feature{}, fmt.Errorf("BED line %q: expected at least 3 columns", line)
	}
	if !short && len(parts) < 6 {
		return Feature{}, fmt.Errorf("BED line %q: expected at least 6 columns", line)
	}
	rawStart, err := strconv.Atoi(parts[1])
	if err != nil {
		return Feature{}, fmt.Errorf("BED line %q: start is not an integer", line)
	}
	rawEnd, err := strconv.Atoi(parts[2])
	if err != nil {
		return Feature{}, fmt.Errorf("BED line %q: end is not an integer", line)
	}

	var strand int8
	if !short {
		strand = parseStrand(parts[5])
	}

	var start, end int
	if rawStart > rawEnd {
		if !short && strand == -1 {
			pr.warnSwapped()
			start = rawEnd // 1-based already
			end = rawStart + 1
		} else {
			return Feature{}, fmt.Errorf("BED line %q: start value is larger than end value", line)
		}
	} else {
		start = rawStart + 1
		end = rawEnd
	}

	name := "Unknown_name"
	if short {
		if len(parts) >= 4 {
			name = parts[3]
		}
	} else {
		name = parts[3]
	}
	return Feature{Name: name, Chrom: parts[0], Strand: strand, Start: start, End: end}, nil
}

// parseGFF reads GFF columns: chromosome, source, type, 1-based start, end,
// score, strand, frame, attributes. Commas in the attributes column are
// replaced so the name stays a single CSV field.
func (pr *Parser) parseGFF(line string) (Feature, error) {
	parts := strings.Split(line, "\t")
	if len(parts) < 9 {
		return Feature{}, fmt.Errorf("GFF line %q: expected at least 9 columns", line)
	}
	start, err := strconv.Atoi(parts[3])
	if err != nil {
		return Feature{}, fmt.Errorf("GFF line %q: start is not an integer", line)
	}
	end, err := strconv.Atoi(parts[4])
	if err != nil {
		return Feature{}, fmt.Errorf("GFF line %q: end is not an integer", line)
	}
	strand := parseStrand(parts[6])
	if start > end {
		if strand == -1 {
			pr.warnSwapped()
			start, end = end, start
		} else {
			return Feature{}, fmt.Errorf("GFF line %q: start value is larger than end value", line)
		}
	}
	name := strings.ReplaceAll(parts[8], ",", ";")
	return Feature{Name: name, Chrom: parts[0], Strand: strand, Start: start, End: end}, nil
}

// finish resolves the chromosome, validates bounds and assigns the ID.
func (pr *Parser) finish(feat Feature) (Feature, bool, error) {
	name, length, ok := pr.Registry.Resolve(feat.Chrom)
	if !ok {
		return Feature{}, false, nil
	}
	feat.Chrom = name
	if feat.Start < 1 || feat.Start > length {
		return Feature{}, false, fmt.Errorf("feature %s: start %d outside of chromosome %s (length %d)", feat.Name, feat.Start, feat.Chrom, length)
	}
	if feat.End < 1 || feat.End > length {
		return Feature{}, false, fmt.Errorf("feature %s: end %d outside of chromosome %s (length %d)", feat.Name, feat.End, feat.Chrom, length)
	}
	if pr.IgnoreStrand {
		feat.Strand = 0
	}
	feat.ID = pr.nextID
	pr.nextID++
	return feat, true, nil
}

func (pr *Parser) warnSwapped() {
	if !pr.warnedSwapped {
		pr.warnedSwapped = true
		pr.logger.Warn("minus strand start values are bigger than end values, converting assuming the start column is 0-based")
	}
}

func parseStrand(s string) int8 {
	switch s {
	case "+":
		return 1
	case "-":
		return -1
	}
	return 0
}
