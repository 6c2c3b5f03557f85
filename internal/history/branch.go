// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/lirios/ugit/internal/repo"
)

const branchRefsBase = "refs/heads/"

// Init creates a new repository at the given path with HEAD pointing
// symbolically at the configured default branch
func Init(path string) (*repo.Repo, error) {
	r, err := repo.Init(path)
	if err != nil {
		return nil, err
	}

	config, err := r.Config()
	if err != nil {
		return nil, err
	}

	head := repo.RefValue{Symbolic: true, Value: branchRefsBase + config.DefaultBranch}
	if err := r.UpdateRef("HEAD", head, true); err != nil {
		return nil, err
	}

	return r, nil
}

// ResolveName resolves a user-supplied name to an object ID. "@" is an
// alias for HEAD. Refs are tried before interpreting the name as a
// literal OID.
func ResolveName(r *repo.Repo, name string) (string, error) {
	if name == "@" {
		name = "HEAD"
	}

	candidates := []string{
		name,
		"refs/" + name,
		"refs/tags/" + name,
		branchRefsBase + name,
	}
	for _, candidate := range candidates {
		ref, err := r.GetRef(candidate, true)
		if err != nil {
			return "", err
		}
		if ref.Value != "" {
			return ref.Value, nil
		}
	}

	if len(name) == repo.OIDLen && isHex(name) {
		return name, nil
	}

	return "", errors.Wrapf(repo.ErrUnknownName, "%s", name)
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// CreateBranch creates a branch pointing at the given commit
func CreateBranch(r *repo.Repo, name, oid string) error {
	return r.UpdateRef(branchRefsBase+name, repo.RefValue{Value: oid}, true)
}

// IsBranch reports whether a branch with the given name exists
func IsBranch(r *repo.Repo, name string) (bool, error) {
	ref, err := r.GetRef(branchRefsBase+name, true)
	if err != nil {
		return false, err
	}
	return ref.Value != "", nil
}

// CurrentBranch returns the branch HEAD points at symbolically, or an
// empty string when HEAD is detached
func CurrentBranch(r *repo.Repo) (string, error) {
	head, err := r.GetRef("HEAD", false)
	if err != nil {
		return "", err
	}
	if !head.Symbolic {
		return "", nil
	}
	if !strings.HasPrefix(head.Value, branchRefsBase) {
		return "", errors.Wrapf(repo.ErrMalformedObject, "HEAD points outside %s: %s", branchRefsBase, head.Value)
	}
	return strings.TrimPrefix(head.Value, branchRefsBase), nil
}

// BranchNames lists the names of all branches
func BranchNames(r *repo.Repo) ([]string, error) {
	refs, err := r.ListRefs(branchRefsBase, true)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, ref := range refs {
		names = append(names, strings.TrimPrefix(ref.Name, branchRefsBase))
	}

	return names, nil
}

// Checkout restores the working tree from the commit the name resolves
// to. When the name is a branch, HEAD becomes symbolic to it;
// otherwise HEAD is detached at the commit.
func Checkout(r *repo.Repo, name string) error {
	oid, err := ResolveName(r, name)
	if err != nil {
		return err
	}

	commit, err := GetCommit(r, oid)
	if err != nil {
		return err
	}

	if err := ReadTree(r, commit.Tree); err != nil {
		return err
	}

	branch, err := IsBranch(r, name)
	if err != nil {
		return err
	}

	head := repo.RefValue{Value: oid}
	if branch {
		head = repo.RefValue{Symbolic: true, Value: branchRefsBase + name}
	}

	return r.UpdateRef("HEAD", head, false)
}

// Reset moves HEAD to the given commit without touching the working
// tree
func Reset(r *repo.Repo, oid string) error {
	return r.UpdateRef("HEAD", repo.RefValue{Value: oid}, true)
}

// CreateTag creates a tag pointing at the given commit
func CreateTag(r *repo.Repo, name, oid string) error {
	return r.UpdateRef("refs/tags/"+name, repo.RefValue{Value: oid}, true)
}
