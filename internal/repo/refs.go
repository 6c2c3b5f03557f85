// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package repo

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const symbolicPrefix = "ref: "

// maxSymbolicDepth bounds symbolic ref resolution so a corrupted chain
// cannot recurse forever
const maxSymbolicDepth = 8

// RefValue is the content of a reference: either a direct object ID or
// a symbolic pointer to another refname. An absent ref has an empty
// Value.
type RefValue struct {
	Symbolic bool
	Value    string
}

// NamedRef pairs a refname with its value
type NamedRef struct {
	Name string
	Ref  RefValue
}

func (r *Repo) refPath(name string) string {
	return filepath.Join(r.gitDir, filepath.FromSlash(name))
}

// resolveRef reads the ref and follows the symbolic chain when deref is
// set. It returns the terminal refname together with its value.
func (r *Repo) resolveRef(name string, deref bool, depth int) (string, RefValue, error) {
	if depth > maxSymbolicDepth {
		return "", RefValue{}, errors.Wrapf(ErrRefCycle, "resolving %s", name)
	}

	value := ""
	data, err := os.ReadFile(r.refPath(name))
	if err == nil {
		value = strings.TrimSpace(string(data))
	} else if !os.IsNotExist(err) {
		return "", RefValue{}, err
	}

	if strings.HasPrefix(value, symbolicPrefix) {
		target := strings.TrimSpace(strings.TrimPrefix(value, symbolicPrefix))
		if deref {
			return r.resolveRef(target, true, depth+1)
		}
		return name, RefValue{Symbolic: true, Value: target}, nil
	}

	return name, RefValue{Symbolic: false, Value: value}, nil
}

// GetRef retrieves the value of a reference. A missing ref yields an
// empty direct value. When deref is set, symbolic refs resolve to the
// terminal direct value.
func (r *Repo) GetRef(name string, deref bool) (RefValue, error) {
	_, ref, err := r.resolveRef(name, deref, 0)
	return ref, err
}

// UpdateRef updates the value of a reference. When deref is set and the
// ref is symbolic, the update applies to the terminal refname of the
// chain instead.
func (r *Repo) UpdateRef(name string, value RefValue, deref bool) error {
	target, _, err := r.resolveRef(name, deref, 0)
	if err != nil {
		return err
	}

	if value.Value == "" {
		return errors.Errorf("refusing to write empty value to %s", name)
	}

	content := value.Value
	if value.Symbolic {
		content = symbolicPrefix + value.Value
	}

	path := r.refPath(target)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "failed to create ref directory for %s", target)
	}

	return writeFileAtomic(path, []byte(content+"\n"), 0644)
}

// DeleteRef removes a reference, resolving the symbolic chain first
// when deref is set
func (r *Repo) DeleteRef(name string, deref bool) error {
	target, _, err := r.resolveRef(name, deref, 0)
	if err != nil {
		return err
	}

	if err := os.Remove(r.refPath(target)); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrNotFound, "ref %s", target)
		}
		return err
	}

	return nil
}

// ListRefs lists HEAD, MERGE_HEAD and every ref under the refs tree,
// filtered by prefix. Refnames always use forward slashes. Refs that
// do not resolve to a value are skipped.
func (r *Repo) ListRefs(prefix string, deref bool) ([]NamedRef, error) {
	names := []string{"HEAD", "MERGE_HEAD"}

	refsDir := filepath.Join(r.gitDir, RefsDirName)
	err := filepath.WalkDir(refsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(r.gitDir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	var refs []NamedRef
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		ref, err := r.GetRef(name, deref)
		if err != nil {
			return nil, err
		}
		if ref.Value == "" {
			continue
		}
		refs = append(refs, NamedRef{Name: name, Ref: ref})
	}

	return refs, nil
}
