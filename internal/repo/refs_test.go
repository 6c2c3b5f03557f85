// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package repo

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	oidA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	oidB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func TestDirectRef(t *testing.T) {
	r := newTestRepo(t)

	require.NoError(t, r.UpdateRef("refs/heads/main", RefValue{Value: oidA}, true))

	ref, err := r.GetRef("refs/heads/main", true)
	require.NoError(t, err)
	assert.False(t, ref.Symbolic)
	assert.Equal(t, oidA, ref.Value)
}

func TestGetRefMissing(t *testing.T) {
	r := newTestRepo(t)

	ref, err := r.GetRef("refs/heads/nope", true)
	require.NoError(t, err)
	assert.False(t, ref.Symbolic)
	assert.Empty(t, ref.Value)
}

func TestSymbolicUpdateThroughHEAD(t *testing.T) {
	r := newTestRepo(t)

	require.NoError(t, r.UpdateRef("HEAD", RefValue{Symbolic: true, Value: "refs/heads/x"}, true))
	require.NoError(t, r.UpdateRef("HEAD", RefValue{Value: oidA}, true))

	// The write lands on the branch the chain terminates at
	branch, err := r.GetRef("refs/heads/x", true)
	require.NoError(t, err)
	assert.Equal(t, oidA, branch.Value)

	// HEAD itself stays symbolic
	head, err := r.GetRef("HEAD", false)
	require.NoError(t, err)
	assert.True(t, head.Symbolic)
	assert.Equal(t, "refs/heads/x", head.Value)

	// Dereferenced HEAD reads the branch value
	head, err = r.GetRef("HEAD", true)
	require.NoError(t, err)
	assert.Equal(t, oidA, head.Value)
}

func TestUpdateRefWithoutDeref(t *testing.T) {
	r := newTestRepo(t)

	require.NoError(t, r.UpdateRef("HEAD", RefValue{Symbolic: true, Value: "refs/heads/x"}, true))
	require.NoError(t, r.UpdateRef("refs/heads/x", RefValue{Value: oidA}, true))

	// A non-dereffed update detaches HEAD instead of moving the branch
	require.NoError(t, r.UpdateRef("HEAD", RefValue{Value: oidB}, false))

	head, err := r.GetRef("HEAD", false)
	require.NoError(t, err)
	assert.False(t, head.Symbolic)
	assert.Equal(t, oidB, head.Value)

	branch, err := r.GetRef("refs/heads/x", true)
	require.NoError(t, err)
	assert.Equal(t, oidA, branch.Value)
}

func TestRefChainTermination(t *testing.T) {
	r := newTestRepo(t)

	require.NoError(t, r.UpdateRef("refs/heads/a", RefValue{Symbolic: true, Value: "refs/heads/b"}, false))
	require.NoError(t, r.UpdateRef("refs/heads/b", RefValue{Symbolic: true, Value: "refs/heads/a"}, false))

	_, err := r.GetRef("refs/heads/a", true)
	assert.True(t, errors.Is(err, ErrRefCycle))
}

func TestDeleteRef(t *testing.T) {
	r := newTestRepo(t)

	require.NoError(t, r.UpdateRef("refs/tags/v1", RefValue{Value: oidA}, true))
	require.NoError(t, r.DeleteRef("refs/tags/v1", true))

	ref, err := r.GetRef("refs/tags/v1", true)
	require.NoError(t, err)
	assert.Empty(t, ref.Value)

	err = r.DeleteRef("refs/tags/v1", true)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteRefNonDereffed(t *testing.T) {
	r := newTestRepo(t)

	require.NoError(t, r.UpdateRef("MERGE_HEAD", RefValue{Value: oidA}, true))
	require.NoError(t, r.DeleteRef("MERGE_HEAD", false))

	ref, err := r.GetRef("MERGE_HEAD", true)
	require.NoError(t, err)
	assert.Empty(t, ref.Value)
}

func TestListRefs(t *testing.T) {
	r := newTestRepo(t)

	require.NoError(t, r.UpdateRef("refs/heads/main", RefValue{Value: oidA}, true))
	require.NoError(t, r.UpdateRef("refs/heads/feature", RefValue{Value: oidB}, true))
	require.NoError(t, r.UpdateRef("refs/tags/v1", RefValue{Value: oidA}, true))
	require.NoError(t, r.UpdateRef("HEAD", RefValue{Symbolic: true, Value: "refs/heads/main"}, false))

	refs, err := r.ListRefs("", true)
	require.NoError(t, err)

	byName := map[string]RefValue{}
	for _, ref := range refs {
		assert.NotContains(t, ref.Name, "\\")
		byName[ref.Name] = ref.Ref
	}

	assert.Equal(t, oidA, byName["HEAD"].Value)
	assert.Equal(t, oidA, byName["refs/heads/main"].Value)
	assert.Equal(t, oidB, byName["refs/heads/feature"].Value)
	assert.Equal(t, oidA, byName["refs/tags/v1"].Value)
	// MERGE_HEAD was never set
	assert.NotContains(t, byName, "MERGE_HEAD")

	heads, err := r.ListRefs("refs/heads/", true)
	require.NoError(t, err)
	assert.Len(t, heads, 2)
	for _, ref := range heads {
		assert.True(t, strings.HasPrefix(ref.Name, "refs/heads/"))
	}
}

func TestListRefsWithoutDeref(t *testing.T) {
	r := newTestRepo(t)

	require.NoError(t, r.UpdateRef("refs/heads/main", RefValue{Value: oidA}, true))
	require.NoError(t, r.UpdateRef("HEAD", RefValue{Symbolic: true, Value: "refs/heads/main"}, false))

	refs, err := r.ListRefs("HEAD", false)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.True(t, refs[0].Ref.Symbolic)
	assert.Equal(t, "refs/heads/main", refs[0].Ref.Value)
}
