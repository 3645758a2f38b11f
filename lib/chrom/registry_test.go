//
// Copyright (C) 2014-2024 HollickLab
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package chrom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	chr1, err := sam.NewReference("chr1", "", "", 10000, nil, nil)
	require.NoError(t, err)
	chr2, err := sam.NewReference("chr2", "", "", 1000, nil, nil)
	require.NoError(t, err)
	header, err := sam.NewHeader(nil, []*sam.Reference{chr1, chr2})
	require.NoError(t, err)
	return NewRegistry(header, zap.NewNop())
}

func TestResolve(t *testing.T) {
	rg := newTestRegistry(t)

	name, length, ok := rg.Resolve("chr1")
	require.True(t, ok)
	assert.Equal(t, "chr1", name)
	assert.Equal(t, 10000, length)

	_, _, ok = rg.Resolve("chrU")
	assert.False(t, ok)
	// repeated failures stay silent but still miss
	_, _, ok = rg.Resolve("chrU")
	assert.False(t, ok)
}

func TestAliases(t *testing.T) {
	rg := newTestRegistry(t)

	path := filepath.Join(t.TempDir(), "aliases.tsv")
	require.NoError(t, os.WriteFile(path, []byte("# feature\talignment\n1\tchr1\n2\tchr2\n"), 0o644))
	require.NoError(t, rg.LoadAliases(path))

	name, length, ok := rg.Resolve("1")
	require.True(t, ok)
	assert.Equal(t, "chr1", name)
	assert.Equal(t, 10000, length)

	// direct names keep working
	name, _, ok = rg.Resolve("chr2")
	require.True(t, ok)
	assert.Equal(t, "chr2", name)
}

func TestLoadAliasesMalformed(t *testing.T) {
	rg := newTestRegistry(t)
	path := filepath.Join(t.TempDir(), "aliases.tsv")
	require.NoError(t, os.WriteFile(path, []byte("justonecolumn\n"), 0o644))
	assert.Error(t, rg.LoadAliases(path))
}

func TestLength(t *testing.T) {
	rg := newTestRegistry(t)
	length, ok := rg.Length("chr2")
	require.True(t, ok)
	assert.Equal(t, 1000, length)
	_, ok = rg.Length("chrU")
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"chr1", "chr2"}, rg.Names())
}
