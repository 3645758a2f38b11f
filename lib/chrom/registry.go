//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package chrom resolves chromosome names between alignment headers and
// annotation files, including user-supplied aliases.
package chrom

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/biogo/hts/sam"
	"go.uber.org/zap"
	set "gopkg.in/fatih/set.v0"
)

// Registry maps chromosome names to their reference lengths. Names absent
// from the alignment header can still resolve through an alias table.
type Registry struct {
	lengths map[string]int
	aliases map[string]string
	unknown *set.Set
	logger  *zap.Logger
}

// NewRegistry builds a registry from the @SQ lines of an alignment header.
func NewRegistry(header *sam.Header, logger *zap.Logger) *Registry {
	lengths := make(map[string]int, len(header.Refs()))
	for _, ref := range header.Refs() {
		lengths[ref.Name()] = ref.Len()
	}
	return &Registry{
		lengths: lengths,
		aliases: map[string]string{},
		unknown: set.New(set.ThreadSafe).(*set.Set),
		logger:  logger,
	}
}

// LoadAliases reads a two-column tab-delimited file mapping annotation
// chromosome names to alignment chromosome names. Blank lines and lines
// starting with # are skipped.
func (rg *Registry) LoadAliases(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return fmt.Errorf("chromosome alias line %q: expected 2 tab-separated columns", line)
		}
		rg.aliases[fields[0]] = fields[1]
	}
	return scanner.Err()
}

// Resolve returns the alignment-header name and length for a chromosome,
// following the alias table if needed. The first failed lookup per name is
// logged; repeats are silent.
func (rg *Registry) Resolve(name string) (string, int, bool) {
	if length, ok := rg.lengths[name]; ok {
		return name, length, true
	}
	if alias, ok := rg.aliases[name]; ok {
		if length, ok := rg.lengths[alias]; ok {
			return alias, length, true
		}
	}
	if !rg.unknown.Has(name) {
		rg.unknown.Add(name)
		rg.logger.Warn("chromosome absent from alignment header, skipping its features", zap.String("chrom", name))
	}
	return "", 0, false
}

// Length returns the reference length of an alignment-header chromosome.
func (rg *Registry) Length(name string) (int, bool) {
	length, ok := rg.lengths[name]
	return length, ok
}

// Names returns the chromosome names present in the alignment header.
func (rg *Registry) Names() []string {
	names := make([]string, 0, len(rg.lengths))
	for name := range rg.lengths {
		names = append(names, name)
	}
	return names
}
