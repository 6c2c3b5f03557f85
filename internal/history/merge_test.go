// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFastForward(t *testing.T) {
	r := newTestRepo(t)

	writeWorkFile(t, r, "a.txt", "base\n")
	base, err := WriteCommit(r, "base")
	require.NoError(t, err)

	require.NoError(t, CreateBranch(r, "feature", base))
	require.NoError(t, Checkout(r, "feature"))
	writeWorkFile(t, r, "b.txt", "feature\n")
	feature, err := WriteCommit(r, "feature")
	require.NoError(t, err)

	require.NoError(t, Checkout(r, "main"))

	result, err := Merge(r, feature)
	require.NoError(t, err)
	assert.True(t, result.FastForward)
	assert.Empty(t, result.Conflicts)

	head, err := r.GetRef("HEAD", true)
	require.NoError(t, err)
	assert.Equal(t, feature, head.Value)

	assert.Equal(t, "feature\n", readWorkFile(t, r, "b.txt"))

	// No merge is in progress
	mergeHead, err := r.GetRef("MERGE_HEAD", true)
	require.NoError(t, err)
	assert.Empty(t, mergeHead.Value)
}

func TestMergeThreeWay(t *testing.T) {
	r := newTestRepo(t)

	writeWorkFile(t, r, "a.txt", "line one\nline two\nline three\n")
	base, err := WriteCommit(r, "base")
	require.NoError(t, err)

	require.NoError(t, CreateBranch(r, "other", base))
	require.NoError(t, Checkout(r, "other"))
	writeWorkFile(t, r, "a.txt", "line one\nline two\nline three changed\n")
	other, err := WriteCommit(r, "change line three")
	require.NoError(t, err)

	require.NoError(t, Checkout(r, "main"))
	writeWorkFile(t, r, "a.txt", "line one changed\nline two\nline three\n")
	head, err := WriteCommit(r, "change line one")
	require.NoError(t, err)

	result, err := Merge(r, other)
	require.NoError(t, err)
	assert.False(t, result.FastForward)
	assert.Empty(t, result.Conflicts)

	// Both changes land in the working tree
	assert.Equal(t, "line one changed\nline two\nline three changed\n", readWorkFile(t, r, "a.txt"))

	mergeHead, err := r.GetRef("MERGE_HEAD", true)
	require.NoError(t, err)
	assert.Equal(t, other, mergeHead.Value)

	// Committing concludes the merge with both parents
	merge, err := WriteCommit(r, "merge other")
	require.NoError(t, err)

	commit, err := GetCommit(r, merge)
	require.NoError(t, err)
	assert.Equal(t, []string{head, other}, commit.Parents)

	mergeHead, err = r.GetRef("MERGE_HEAD", true)
	require.NoError(t, err)
	assert.Empty(t, mergeHead.Value)
}

func TestMergeConflict(t *testing.T) {
	r := newTestRepo(t)

	writeWorkFile(t, r, "a.txt", "shared\n")
	base, err := WriteCommit(r, "base")
	require.NoError(t, err)

	require.NoError(t, CreateBranch(r, "other", base))
	require.NoError(t, Checkout(r, "other"))
	writeWorkFile(t, r, "a.txt", "their version\n")
	other, err := WriteCommit(r, "theirs")
	require.NoError(t, err)

	require.NoError(t, Checkout(r, "main"))
	writeWorkFile(t, r, "a.txt", "our version\n")
	_, err = WriteCommit(r, "ours")
	require.NoError(t, err)

	result, err := Merge(r, other)
	require.NoError(t, err)
	assert.False(t, result.FastForward)
	assert.Equal(t, []string{"a.txt"}, result.Conflicts)

	merged := readWorkFile(t, r, "a.txt")
	assert.True(t, strings.Contains(merged, "<<<<<<< HEAD"))
	assert.True(t, strings.Contains(merged, "our version\n"))
	assert.True(t, strings.Contains(merged, "their version\n"))
	assert.True(t, strings.Contains(merged, ">>>>>>> MERGE_HEAD"))
}

func TestMergeAddedFileOnOneSide(t *testing.T) {
	r := newTestRepo(t)

	writeWorkFile(t, r, "a.txt", "base\n")
	base, err := WriteCommit(r, "base")
	require.NoError(t, err)

	require.NoError(t, CreateBranch(r, "other", base))
	require.NoError(t, Checkout(r, "other"))
	writeWorkFile(t, r, "new.txt", "only theirs\n")
	other, err := WriteCommit(r, "add new file")
	require.NoError(t, err)

	require.NoError(t, Checkout(r, "main"))
	writeWorkFile(t, r, "a.txt", "base changed\n")
	_, err = WriteCommit(r, "change a")
	require.NoError(t, err)

	result, err := Merge(r, other)
	require.NoError(t, err)
	assert.Empty(t, result.Conflicts)

	assert.Equal(t, "only theirs\n", readWorkFile(t, r, "new.txt"))
	assert.Equal(t, "base changed\n", readWorkFile(t, r, "a.txt"))
}
