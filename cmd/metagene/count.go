//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/HollickLab/metagene-analysis/lib/chrom"
	"github.com/HollickLab/metagene-analysis/lib/esam"
	"github.com/HollickLab/metagene-analysis/lib/feature"
	"github.com/HollickLab/metagene-analysis/lib/metagene"
	"github.com/HollickLab/metagene-analysis/lib/read"
)

// Read categories toggled by --include-reads / --exclude-reads.
const (
	readCatSecondary     = "secondary_alignment"
	readCatQCFail        = "failed_quality_control"
	readCatDuplicate     = "PCR_duplicate"
	readCatSupplementary = "supplementary_alignment"
)

type countOptions struct {
	Alignments       []string
	Feature          string
	FeatureFormat    string
	OutputPrefix     string
	Compress         string
	FeatureCount     string
	CountMethod      string
	CountPartial     bool
	Padding          int
	IntervalSize     int
	IntervalVariable bool
	IgnoreStrand     bool
	ExtractAbundance bool
	ExtractMappings  bool
	UniquelyMapping  bool
	ChromosomeNames  string
	CountSplicing    bool
	IncludeReads     []string
	ExcludeReads     []string
	Workers          int
	Append           bool
}

func newCountCmd(verbose *bool) *cobra.Command {
	var opts countOptions

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count read coverage over features into metagene profiles",
		Example: `  # Coverage over gene bodies, 1 kb padding, body rescaled to 1 kb
  metagene count -a sample.bam -f genes.bed -o sample

  # 5' end positions of uniquely mapping reads around feature starts
  metagene count -a sample.bam -f genes.gff --feature-count start \
      --count-method start --uniquely-mapping`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			// Values resolve flag > config file > environment > default
			opts.Alignments = viper.GetStringSlice("alignment")
			opts.Feature = viper.GetString("feature")
			opts.FeatureFormat = viper.GetString("feature-format")
			opts.OutputPrefix = viper.GetString("output-prefix")
			opts.Compress = viper.GetString("compress")
			opts.FeatureCount = viper.GetString("feature-count")
			opts.CountMethod = viper.GetString("count-method")
			opts.CountPartial = viper.GetBool("count-partial-reads")
			opts.Padding = viper.GetInt("padding")
			opts.IntervalSize = viper.GetInt("interval-size")
			opts.IntervalVariable = viper.GetBool("interval-variable")
			opts.IgnoreStrand = viper.GetBool("ignore-strand")
			opts.ExtractAbundance = viper.GetBool("extract-abundance")
			opts.ExtractMappings = viper.GetBool("extract-mappings")
			opts.UniquelyMapping = viper.GetBool("uniquely-mapping")
			opts.ChromosomeNames = viper.GetString("chromosome-names")
			opts.CountSplicing = viper.GetBool("count-splicing")
			opts.IncludeReads = viper.GetStringSlice("include-reads")
			opts.ExcludeReads = viper.GetStringSlice("exclude-reads")
			opts.Workers = viper.GetInt("workers")
			opts.Append = viper.GetBool("append")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(*verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runCount(cmd.Context(), logger, opts)
		},
	}

	fs := cmd.Flags()
	fs.StringSliceP("alignment", "a", nil, "Alignment file(s), SAM or BAM ('.bam' suffix)")
	fs.StringP("feature", "f", "", "Feature file, BED or GFF")
	fs.String("feature-format", "auto", "Feature file format: 'auto', 'bed', 'bed_short' or 'gff'")
	fs.StringP("output-prefix", "o", time.Now().Format("060102-150405")+".metagene", "Prefix for output files")
	fs.String("compress", "", "Compress count output: 'gzip' or 'lz4'")
	fs.String("feature-count", "all", "Examine the 'start', 'end' or 'all' of each feature")
	fs.String("count-method", "all", "Count the 'start', 'end' or 'all' of each read")
	fs.Bool("count-partial-reads", false, "Clip reads that only partially overlap the padded window (default: skip them)")
	fs.Int("padding", 1000, "Padding in nt added on both sides of the feature")
	fs.Int("interval-size", 1000, "Rescaled size of the feature body")
	fs.Bool("interval-variable", false, "Keep native feature lengths; skips rescaling and the common header")
	fs.Bool("ignore-strand", false, "Do not separate read counts by strand")
	fs.Bool("extract-abundance", false, "Read abundance from the NA:i tag")
	fs.Bool("extract-mappings", false, "Read number of mappings from the NH:i tag")
	fs.Bool("uniquely-mapping", false, "All reads are uniquely mapping")
	fs.StringP("chromosome-names", "c", "", "Chromosome conversion file (feature_name TAB alignment_name)")
	fs.Bool("count-splicing", false, "Separate counts of gapped (spliced) and ungapped reads")
	fs.StringSlice("include-reads", nil, "Also count reads with these flags: 'secondary_alignment', 'failed_quality_control', 'PCR_duplicate', 'supplementary_alignment'")
	fs.StringSlice("exclude-reads", nil, "Skip reads with these flags (same categories as --include-reads)")
	fs.Int("workers", 1, "Number of counting worker(s)")
	fs.Bool("append", false, "Append to the count output instead of truncating")

	return cmd
}

func buildFlagPolicy(include, exclude []string) (read.FlagPolicy, error) {
	policy := read.DefaultFlagPolicy()
	apply := func(categories []string, value bool) error {
		for _, cat := range categories {
			switch cat {
			case readCatSecondary:
				policy.CountSecondary = value
			case readCatQCFail:
				policy.CountQCFail = value
			case readCatDuplicate:
				policy.CountDuplicate = value
			case readCatSupplementary:
				policy.CountSupplementary = value
			default:
				return fmt.Errorf("unknown read category %q", cat)
			}
		}
		return nil
	}
	if err := apply(include, true); err != nil {
		return policy, err
	}
	if err := apply(exclude, false); err != nil {
		return policy, err
	}
	return policy, nil
}

func resolveFormat(raw, path string) (feature.Format, error) {
	switch strings.ToLower(raw) {
	case "auto", "":
		return feature.DetectFormat(path)
	case "bed":
		return feature.FormatBED, nil
	case "bed_short":
		return feature.FormatBEDShort, nil
	case "gff":
		return feature.FormatGFF, nil
	}
	return feature.FormatUnknown, fmt.Errorf("unknown feature format %q", raw)
}

func runCount(ctx context.Context, logger *zap.Logger, opts countOptions) error {
	timeStart := time.Now()

	// Validate options
	if len(opts.Alignments) == 0 {
		return fmt.Errorf("no alignment input (see --alignment)")
	}
	if opts.Feature == "" {
		return fmt.Errorf("no feature input (see --feature)")
	}
	featureCount := read.CountMethod(opts.FeatureCount)
	if !featureCount.Valid() {
		return fmt.Errorf("invalid feature-count %q: must be 'start', 'end' or 'all'", opts.FeatureCount)
	}
	countMethod := read.CountMethod(opts.CountMethod)
	if !countMethod.Valid() {
		return fmt.Errorf("invalid count-method %q: must be 'start', 'end' or 'all'", opts.CountMethod)
	}
	if opts.Padding < 0 {
		return fmt.Errorf("padding must be >= 0, got %d", opts.Padding)
	}
	intervalSize := opts.IntervalSize
	if featureCount != read.CountAll {
		// Start and end anchors are single positions
		intervalSize = 1
	}
	policy, err := buildFlagPolicy(opts.IncludeReads, opts.ExcludeReads)
	if err != nil {
		return err
	}
	var pathSAMs []esam.PathSAM
	for _, p := range opts.Alignments {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("alignment file %s: %w", p, err)
		}
		pathSAMs = append(pathSAMs, esam.NewPathSAM(p))
	}

	shape, err := feature.NewShape(intervalSize, opts.Padding, opts.Padding)
	if err != nil {
		return err
	}
	logger.Info("metagene definition", zap.String("shape", shape.String()))

	// Chromosome sizes from the first alignment header
	header, err := esam.ReadHeader(pathSAMs[0])
	if err != nil {
		return fmt.Errorf("reading header of %s: %w", pathSAMs[0].Path, err)
	}
	registry := chrom.NewRegistry(header, logger)
	if opts.ChromosomeNames != "" {
		if err := registry.LoadAliases(opts.ChromosomeNames); err != nil {
			return fmt.Errorf("loading chromosome names from %s: %w", opts.ChromosomeNames, err)
		}
	}

	// Probe the first records of each input for the requested tags
	needMappings := opts.ExtractMappings && !opts.UniquelyMapping
	if opts.ExtractAbundance || needMappings {
		for _, pathSAM := range pathSAMs {
			f, rr, err := esam.Open(pathSAM, 1)
			if err != nil {
				return err
			}
			err = read.CheckTags(rr, opts.ExtractAbundance, needMappings)
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", pathSAM.Path, err)
			}
		}
	}

	// Load features
	format, err := resolveFormat(opts.FeatureFormat, opts.Feature)
	if err != nil {
		return err
	}
	logger.Info("reading features", zap.String("path", opts.Feature), zap.String("format", string(format)))
	parser := feature.NewParser(format, registry, opts.IgnoreStrand, logger)
	features, err := parser.Load(opts.Feature)
	if err != nil {
		return err
	}
	if len(features) == 0 {
		return fmt.Errorf("no usable feature in %s", opts.Feature)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	runtime.GOMAXPROCS(workers * 2)

	result, err := metagene.Count(ctx, metagene.Config{
		PathSAMs:     pathSAMs,
		Features:     features,
		Shape:        shape,
		FeatureCount: featureCount,
		ReadOptions: read.Options{
			Policy:           policy,
			Method:           countMethod,
			ExtractAbundance: opts.ExtractAbundance,
			ExtractMappings:  opts.ExtractMappings,
			Unique:           opts.UniquelyMapping,
			IgnoreStrand:     opts.IgnoreStrand,
		},
		CountPartial: opts.CountPartial,
		GapCounting:  opts.CountSplicing,
		NWorker:      workers,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	// Write count rows in feature order
	pathCounts := opts.OutputPrefix + ".metagene_counts.csv"
	switch opts.Compress {
	case "":
	case "gzip":
		pathCounts += ".gz"
	case "lz4":
		pathCounts += ".lz4"
	default:
		return fmt.Errorf("unknown compression %q: must be 'gzip' or 'lz4'", opts.Compress)
	}
	writer, err := metagene.NewWriter(pathCounts, shape, opts.IntervalVariable, opts.Append)
	if err != nil {
		return err
	}
	if !opts.Append {
		if err := writer.WriteHeader(); err != nil {
			writer.Close()
			return err
		}
	}
	for _, p := range result.Profiles {
		if err := writer.WriteProfile(p); err != nil {
			writer.Close()
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	logger.Info("count report",
		zap.Uint64("alignments", result.NAlign),
		zap.Float64("input_weight", result.InputWeight),
		zap.Int("counted_reads", result.NCountedReads),
		zap.Int("features", len(features)),
		zap.String("counts", pathCounts),
		zap.Duration("run_time", time.Since(timeStart)))

	return nil
}
