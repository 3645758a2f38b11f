//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package metagene

import (
	"context"
	"io"
	"time"

	"github.com/biogo/hts/sam"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	set "gopkg.in/fatih/set.v0"

	"github.com/HollickLab/metagene-analysis/lib/esam"
	"github.com/HollickLab/metagene-analysis/lib/feature"
	"github.com/HollickLab/metagene-analysis/lib/read"
)

const sBatchLength = 10

// Config gathers the per-run settings of the counting pipeline.
type Config struct {
	PathSAMs     []esam.PathSAM
	Features     []feature.Feature
	Shape        feature.Shape
	FeatureCount read.CountMethod
	ReadOptions  read.Options
	CountPartial bool
	GapCounting  bool
	NWorker      int
	Logger       *zap.Logger
}

// Result of one counting run. Profiles are in feature order.
type Result struct {
	Windows  []*feature.Window
	Profiles []*Profile

	NAlign        uint64  // alignment records read
	InputWeight   float64 // total weight of records passing the flag policy
	NCountedReads int     // distinct read names contributing counts
}

// partition is one worker's private accumulation, merged by summation once
// the worker drains its input.
type partition struct {
	profiles    []*Profile
	inputWeight float64
}

// Count runs the counting pipeline: one producer goroutine streams and
// batches alignment records, workers convert each record and route it
// through the window trees into their own profile partition, and the
// partitions are summed into the final profiles.
func Count(ctx context.Context, cfg Config) (*Result, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	nWorker := cfg.NWorker
	if nWorker < 1 {
		nWorker = 1
	}
	nReader := nWorker / 2
	if nReader < 1 {
		nReader = 1
	}

	windows := make([]*feature.Window, len(cfg.Features))
	for i, feat := range cfg.Features {
		windows[i] = feature.NewWindow(feat, cfg.Shape, cfg.FeatureCount)
	}
	trees, err := feature.BuildWindowTrees(windows)
	if err != nil {
		return nil, err
	}

	countedReads := set.New(set.ThreadSafe).(*set.Set)
	timeStart := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	chAln := make(chan []*sam.Record, nWorker*10)
	chFinal := make(chan *partition, nWorker)

	var nAlign uint64
	g.Go(func() error {
		defer close(chAln)
		timeLog := timeStart
		for _, pathSAM := range cfg.PathSAMs {
			logger.Info("opening alignment file", zap.String("path", pathSAM.Path), zap.Bool("binary", pathSAM.Binary))
			f, rr, err := esam.Open(pathSAM, nReader)
			if err != nil {
				return err
			}
			var iBatch int
			sBatch := make([]*sam.Record, sBatchLength)
			for {
				r, err := rr.Read()
				if err == io.EOF {
					break
				} else if err != nil {
					f.Close()
					return err
				}
				sBatch[iBatch] = r
				if iBatch == sBatchLength-1 {
					select {
					case <-gctx.Done():
						f.Close()
						return gctx.Err()
					case chAln <- sBatch:
					}
					sBatch = make([]*sam.Record, sBatchLength)
					iBatch = -1
				}
				iBatch++
				nAlign++

				if timeNow := time.Now(); timeNow.Sub(timeLog).Minutes() > 1. {
					logger.Info("counting", zap.Uint64("alignments", nAlign), zap.Duration("elapsed", timeNow.Sub(timeStart)))
					timeLog = timeNow
				}
			}
			if iBatch > 0 {
				select {
				case <-gctx.Done():
					f.Close()
					return gctx.Err()
				case chAln <- sBatch[:iBatch]:
				}
			}
			if err = f.Close(); err != nil {
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		defer close(chFinal)
		wg, wgctx := errgroup.WithContext(gctx)
		for i := 0; i < nWorker; i++ {
			wg.Go(func() error {
				part := &partition{profiles: make([]*Profile, len(windows))}
				for sBatch := range chAln {
					for _, r := range sBatch {
						rd, ok, err := read.FromSAM(r, cfg.ReadOptions)
						if err != nil {
							return err
						}
						if !ok {
							continue
						}
						part.inputWeight += rd.Weight()

						lo, hi := rd.Positions[0], rd.Positions[len(rd.Positions)-1]
						if lo > hi {
							lo, hi = hi, lo
						}
						for _, idx := range feature.QueryWindows(trees, rd.Chrom, lo-1, hi) {
							p := part.profiles[idx]
							if p == nil {
								p = NewProfile(windows[idx], cfg.GapCounting)
								part.profiles[idx] = p
							}
							counted, err := p.CountRead(rd, cfg.ReadOptions.Method, cfg.CountPartial)
							if err != nil {
								return err
							}
							if counted {
								countedReads.Add(r.Name)
							}
						}
					}
				}
				select {
				case <-wgctx.Done():
					return wgctx.Err()
				case chFinal <- part:
				}
				return nil
			})
		}
		return wg.Wait()
	})

	// Combine worker partitions into the final profiles
	profiles := make([]*Profile, len(windows))
	for i, w := range windows {
		profiles[i] = NewProfile(w, cfg.GapCounting)
	}
	var inputWeight float64
	for part := range chFinal {
		inputWeight += part.inputWeight
		for i, p := range part.profiles {
			if p != nil {
				profiles[i].Merge(p)
			}
		}
	}

	if err = g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("counting done",
		zap.Uint64("alignments", nAlign),
		zap.Int("features", len(windows)),
		zap.Int("counted_reads", countedReads.Size()),
		zap.Duration("elapsed", time.Since(timeStart)))

	return &Result{
		Windows:       windows,
		Profiles:      profiles,
		NAlign:        nAlign,
		InputWeight:   inputWeight,
		NCountedReads: countedReads.Size(),
	}, nil
}
