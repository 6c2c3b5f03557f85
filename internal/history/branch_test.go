// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lirios/ugit/internal/repo"
)

func TestInitSetsSymbolicHEAD(t *testing.T) {
	r := newTestRepo(t)

	head, err := r.GetRef("HEAD", false)
	require.NoError(t, err)
	assert.True(t, head.Symbolic)
	assert.Equal(t, "refs/heads/main", head.Value)
}

func TestResolveName(t *testing.T) {
	r := newTestRepo(t)

	writeWorkFile(t, r, "a.txt", "hello\n")
	oid, err := WriteCommit(r, "first")
	require.NoError(t, err)

	require.NoError(t, CreateTag(r, "v1", oid))
	require.NoError(t, CreateBranch(r, "feature", oid))

	for _, name := range []string{"@", "HEAD", "main", "feature", "v1", "tags/v1", "heads/main", oid} {
		resolved, err := ResolveName(r, name)
		require.NoError(t, err, "resolving %s", name)
		assert.Equal(t, oid, resolved, "resolving %s", name)
	}

	_, err = ResolveName(r, "no-such-name")
	assert.True(t, errors.Is(err, repo.ErrUnknownName))

	// A 40-hex string that names no stored ref is taken literally
	literal := "0123456789abcdef0123456789abcdef01234567"
	resolved, err := ResolveName(r, literal)
	require.NoError(t, err)
	assert.Equal(t, literal, resolved)
}

func TestBranches(t *testing.T) {
	r := newTestRepo(t)

	writeWorkFile(t, r, "a.txt", "hello\n")
	oid, err := WriteCommit(r, "first")
	require.NoError(t, err)

	require.NoError(t, CreateBranch(r, "feature", oid))

	names, err := BranchNames(r)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main", "feature"}, names)

	exists, err := IsBranch(r, "feature")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = IsBranch(r, "nope")
	require.NoError(t, err)
	assert.False(t, exists)

	current, err := CurrentBranch(r)
	require.NoError(t, err)
	assert.Equal(t, "main", current)
}

func TestCheckoutBranchRestoresContent(t *testing.T) {
	r := newTestRepo(t)

	writeWorkFile(t, r, "a.txt", "pre-branch\n")
	base, err := WriteCommit(r, "base")
	require.NoError(t, err)

	require.NoError(t, CreateBranch(r, "feature", base))
	require.NoError(t, Checkout(r, "feature"))

	current, err := CurrentBranch(r)
	require.NoError(t, err)
	assert.Equal(t, "feature", current)

	writeWorkFile(t, r, "a.txt", "feature change\n")
	_, err = WriteCommit(r, "feature change")
	require.NoError(t, err)

	require.NoError(t, Checkout(r, "main"))
	assert.Equal(t, "pre-branch\n", readWorkFile(t, r, "a.txt"))

	current, err = CurrentBranch(r)
	require.NoError(t, err)
	assert.Equal(t, "main", current)
}

func TestCheckoutCommitDetachesHEAD(t *testing.T) {
	r := newTestRepo(t)

	writeWorkFile(t, r, "a.txt", "hello\n")
	oid, err := WriteCommit(r, "first")
	require.NoError(t, err)

	require.NoError(t, Checkout(r, oid))

	head, err := r.GetRef("HEAD", false)
	require.NoError(t, err)
	assert.False(t, head.Symbolic)
	assert.Equal(t, oid, head.Value)

	current, err := CurrentBranch(r)
	require.NoError(t, err)
	assert.Empty(t, current)
}

func TestResetMovesHEADOnly(t *testing.T) {
	r := newTestRepo(t)

	writeWorkFile(t, r, "a.txt", "first\n")
	first, err := WriteCommit(r, "first")
	require.NoError(t, err)

	writeWorkFile(t, r, "a.txt", "second\n")
	_, err = WriteCommit(r, "second")
	require.NoError(t, err)

	require.NoError(t, Reset(r, first))

	// The branch moved back, HEAD stays symbolic
	head, err := r.GetRef("HEAD", true)
	require.NoError(t, err)
	assert.Equal(t, first, head.Value)

	branch, err := r.GetRef("refs/heads/main", true)
	require.NoError(t, err)
	assert.Equal(t, first, branch.Value)

	// The working tree is untouched
	assert.Equal(t, "second\n", readWorkFile(t, r, "a.txt"))
}

func TestCreateTag(t *testing.T) {
	r := newTestRepo(t)

	writeWorkFile(t, r, "a.txt", "hello\n")
	oid, err := WriteCommit(r, "first")
	require.NoError(t, err)

	require.NoError(t, CreateTag(r, "v1", oid))

	ref, err := r.GetRef("refs/tags/v1", true)
	require.NoError(t, err)
	assert.Equal(t, oid, ref.Value)
}
