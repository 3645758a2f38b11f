//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Command metagene computes read-coverage metagene profiles from BAM/SAM
// alignments intersected with BED/GFF features.
package main

import (
	"fmt"
	"os"
)

var version = "DEV"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
