// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"github.com/lirios/ugit/internal/repo"
)

// CommitsAndParents returns every commit reachable from the seeds via
// parent edges, each exactly once. The walk prefers first parents, so
// linear stretches of history come out in reverse chronological order.
func CommitsAndParents(r *repo.Repo, seeds []string) ([]string, error) {
	work := append([]string{}, seeds...)
	visited := map[string]bool{}
	var result []string

	for len(work) > 0 {
		oid := work[0]
		work = work[1:]

		if oid == "" || visited[oid] {
			continue
		}
		visited[oid] = true
		result = append(result, oid)

		commit, err := GetCommit(r, oid)
		if err != nil {
			return nil, err
		}

		if len(commit.Parents) > 0 {
			work = append([]string{commit.Parents[0]}, work...)
			work = append(work, commit.Parents[1:]...)
		}
	}

	return result, nil
}

// ObjectsInCommits returns every object reachable from the seed
// commits: the commits themselves, their trees and the transitive
// closure of subtrees and blobs, each exactly once.
func ObjectsInCommits(r *repo.Repo, seeds []string) ([]string, error) {
	commits, err := CommitsAndParents(r, seeds)
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{}
	var result []string

	for _, oid := range commits {
		visited[oid] = true
		result = append(result, oid)

		commit, err := GetCommit(r, oid)
		if err != nil {
			return nil, err
		}

		if err := collectTreeObjects(r, commit.Tree, visited, &result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func collectTreeObjects(r *repo.Repo, oid string, visited map[string]bool, result *[]string) error {
	if visited[oid] {
		return nil
	}
	visited[oid] = true
	*result = append(*result, oid)

	entries, err := iterTreeEntries(r, oid)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if visited[entry.OID] {
			continue
		}
		if entry.Kind == repo.KindTree {
			if err := collectTreeObjects(r, entry.OID, visited, result); err != nil {
				return err
			}
		} else {
			visited[entry.OID] = true
			*result = append(*result, entry.OID)
		}
	}

	return nil
}

// MergeBase returns the first ancestor of b that is also an ancestor
// of a, or an empty string when the histories are disjoint. The result
// is a common ancestor but not necessarily the lowest one in a complex
// DAG.
func MergeBase(r *repo.Repo, a, b string) (string, error) {
	ancestorsA, err := CommitsAndParents(r, []string{a})
	if err != nil {
		return "", err
	}

	inA := map[string]bool{}
	for _, oid := range ancestorsA {
		inA[oid] = true
	}

	ancestorsB, err := CommitsAndParents(r, []string{b})
	if err != nil {
		return "", err
	}

	for _, oid := range ancestorsB {
		if inA[oid] {
			return oid, nil
		}
	}

	return "", nil
}

// IsAncestorOf reports whether maybeAncestor is reachable from commit
func IsAncestorOf(r *repo.Repo, commit, maybeAncestor string) (bool, error) {
	ancestors, err := CommitsAndParents(r, []string{commit})
	if err != nil {
		return false, err
	}

	for _, oid := range ancestors {
		if oid == maybeAncestor {
			return true, nil
		}
	}

	return false, nil
}
