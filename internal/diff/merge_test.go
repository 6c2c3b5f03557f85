// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge3OneSideChange(t *testing.T) {
	base := "one\ntwo\nthree\n"

	merged, conflicted := merge3(base, "one\ntwo changed\nthree\n", base)
	assert.False(t, conflicted)
	assert.Equal(t, "one\ntwo changed\nthree\n", merged)

	merged, conflicted = merge3(base, base, "one\ntwo\nthree changed\n")
	assert.False(t, conflicted)
	assert.Equal(t, "one\ntwo\nthree changed\n", merged)
}

func TestMerge3DisjointChanges(t *testing.T) {
	base := "one\ntwo\nthree\nfour\nfive\n"
	ours := "one changed\ntwo\nthree\nfour\nfive\n"
	theirs := "one\ntwo\nthree\nfour\nfive changed\n"

	merged, conflicted := merge3(base, ours, theirs)
	assert.False(t, conflicted)
	assert.Equal(t, "one changed\ntwo\nthree\nfour\nfive changed\n", merged)
}

func TestMerge3IdenticalChanges(t *testing.T) {
	base := "one\ntwo\n"
	both := "one\ntwo\nthree\n"

	merged, conflicted := merge3(base, both, both)
	assert.False(t, conflicted)
	assert.Equal(t, both, merged)
}

func TestMerge3Conflict(t *testing.T) {
	base := "shared\n"
	merged, conflicted := merge3(base, "ours\n", "theirs\n")
	assert.True(t, conflicted)

	assert.Equal(t, "<<<<<<< HEAD\nours\n||||||| BASE\nshared\n=======\ntheirs\n>>>>>>> MERGE_HEAD\n", merged)
}

func TestMerge3ConflictKeepsSurroundingLines(t *testing.T) {
	base := "intro\nshared\noutro\n"
	ours := "intro\nour version\noutro\n"
	theirs := "intro\ntheir version\noutro\n"

	merged, conflicted := merge3(base, ours, theirs)
	assert.True(t, conflicted)
	assert.True(t, strings.HasPrefix(merged, "intro\n"))
	assert.True(t, strings.HasSuffix(merged, "outro\n"))
	assert.Contains(t, merged, "<<<<<<< HEAD\nour version\n")
	assert.Contains(t, merged, "=======\ntheir version\n")
}

func TestMerge3BothAppendConflict(t *testing.T) {
	base := "hello\n"
	merged, conflicted := merge3(base, "hello\nours\n", "hello\ntheirs\n")
	assert.True(t, conflicted)
	assert.True(t, strings.HasPrefix(merged, "hello\n"))
	assert.Contains(t, merged, "ours\n")
	assert.Contains(t, merged, "theirs\n")
	assert.Contains(t, merged, markerBase)
}

func TestMerge3DeletionOnOneSide(t *testing.T) {
	base := "one\ntwo\nthree\n"
	ours := "one\nthree\n"

	merged, conflicted := merge3(base, ours, base)
	assert.False(t, conflicted)
	assert.Equal(t, "one\nthree\n", merged)
}

func TestMerge3FromEmptyBase(t *testing.T) {
	merged, conflicted := merge3("", "created by us\n", "")
	assert.False(t, conflicted)
	assert.Equal(t, "created by us\n", merged)

	merged, conflicted = merge3("", "created by us\n", "created by them\n")
	assert.True(t, conflicted)
	assert.Contains(t, merged, "created by us\n")
	assert.Contains(t, merged, "created by them\n")
}

func TestMergeTrees(t *testing.T) {
	r := newTestRepo(t)

	base := map[string]string{
		"clean.txt":    storeBlob(t, r, "base\n"),
		"conflict.txt": storeBlob(t, r, "shared\n"),
	}
	ours := map[string]string{
		"clean.txt":    storeBlob(t, r, "base\n"),
		"conflict.txt": storeBlob(t, r, "ours\n"),
		"added.txt":    storeBlob(t, r, "only ours\n"),
	}
	theirs := map[string]string{
		"clean.txt":    storeBlob(t, r, "theirs improved\n"),
		"conflict.txt": storeBlob(t, r, "theirs\n"),
	}

	merged, conflicts, err := MergeTrees(r, base, ours, theirs)
	require.NoError(t, err)

	assert.Equal(t, []string{"conflict.txt"}, conflicts)
	assert.Equal(t, "theirs improved\n", string(merged["clean.txt"]))
	assert.Equal(t, "only ours\n", string(merged["added.txt"]))
	assert.Contains(t, string(merged["conflict.txt"]), markerOurs)
}

func TestMergeTreesDeletedOnBothSides(t *testing.T) {
	r := newTestRepo(t)

	base := map[string]string{"gone.txt": storeBlob(t, r, "was here\n")}

	merged, conflicts, err := MergeTrees(r, base, map[string]string{}, map[string]string{})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.Empty(t, merged["gone.txt"])
}
