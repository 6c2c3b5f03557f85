// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/lirios/ugit/internal/diff"
	"github.com/lirios/ugit/internal/repo"
)

// MergeResult reports how a merge concluded
type MergeResult struct {
	// FastForward is set when HEAD was simply advanced to the other
	// commit and no merge commit is needed
	FastForward bool
	// Conflicts lists the paths whose merged content contains
	// conflict markers
	Conflicts []string
}

// Merge merges the other commit into HEAD. A fast-forward advances
// HEAD and restores the working tree. Otherwise the three-way merged
// content is written to the working tree, MERGE_HEAD records the other
// commit, and the user is expected to commit to conclude the merge.
func Merge(r *repo.Repo, otherOID string) (MergeResult, error) {
	head, err := r.GetRef("HEAD", true)
	if err != nil {
		return MergeResult{}, err
	}
	if head.Value == "" {
		return MergeResult{}, errors.Wrap(repo.ErrUnknownName, "HEAD is not set")
	}

	base, err := MergeBase(r, otherOID, head.Value)
	if err != nil {
		return MergeResult{}, err
	}

	other, err := GetCommit(r, otherOID)
	if err != nil {
		return MergeResult{}, err
	}

	if base == head.Value {
		if err := ReadTree(r, other.Tree); err != nil {
			return MergeResult{}, err
		}
		if err := r.UpdateRef("HEAD", repo.RefValue{Value: otherOID}, true); err != nil {
			return MergeResult{}, err
		}
		return MergeResult{FastForward: true}, nil
	}

	if err := r.UpdateRef("MERGE_HEAD", repo.RefValue{Value: otherOID}, true); err != nil {
		return MergeResult{}, err
	}

	baseTree := map[string]string{}
	if base != "" {
		baseCommit, err := GetCommit(r, base)
		if err != nil {
			return MergeResult{}, err
		}
		baseTree, err = GetTree(r, baseCommit.Tree, "")
		if err != nil {
			return MergeResult{}, err
		}
	}

	headCommit, err := GetCommit(r, head.Value)
	if err != nil {
		return MergeResult{}, err
	}
	headTree, err := GetTree(r, headCommit.Tree, "")
	if err != nil {
		return MergeResult{}, err
	}

	otherTree, err := GetTree(r, other.Tree, "")
	if err != nil {
		return MergeResult{}, err
	}

	merged, conflicts, err := diff.MergeTrees(r, baseTree, headTree, otherTree)
	if err != nil {
		return MergeResult{}, err
	}

	if err := emptyWorkingTree(r); err != nil {
		return MergeResult{}, err
	}

	for path, blob := range merged {
		full := filepath.Join(r.Root(), filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return MergeResult{}, err
		}
		if err := os.WriteFile(full, blob, 0644); err != nil {
			return MergeResult{}, err
		}
	}

	return MergeResult{Conflicts: conflicts}, nil
}
