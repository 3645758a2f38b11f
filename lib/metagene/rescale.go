//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package metagene

// AdjustToMetagene linearly rescales native interval counts onto target
// bins. Each native position holds one unit of width poured into output bins
// of width len(counts)/target, splitting a position's counts at bin
// boundaries in proportion to the overlap. Total counts are conserved.
func AdjustToMetagene(counts []float64, target int) []float64 {
	adjusted := make([]float64, 0, target)
	shrink := float64(len(counts)) / float64(target)
	var binCount float64
	remainingBin := shrink

	for _, c := range counts {
		remainingPosition := 1.0
		for remainingPosition > 0 {
			if remainingPosition <= remainingBin {
				binCount += c * remainingPosition
				remainingBin -= remainingPosition
				remainingPosition = 0
			} else {
				binCount += c * remainingBin
				remainingPosition -= remainingBin
				remainingBin = 0
			}
			if remainingBin == 0 {
				adjusted = append(adjusted, binCount)
				binCount = 0
				remainingBin = shrink
			}
		}
	}
	// float drift can leave the last bin pending
	if len(adjusted) < target {
		adjusted = append(adjusted, binCount)
	}
	return adjusted
}
