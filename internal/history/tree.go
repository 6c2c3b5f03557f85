// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/lirios/ugit/internal/repo"
)

// Names excluded from snapshotting and working tree cleanup, in any
// path segment
var ignoredNames = map[string]bool{
	".ugit": true,
	".git":  true,
	".venv": true,
}

// IsIgnored reports whether any segment of the slash-separated path is
// in the ignore set
func IsIgnored(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if ignoredNames[part] {
			return true
		}
	}
	return false
}

type treeEntry struct {
	Kind string
	OID  string
	Name string
}

// WriteTree writes the working tree as a tree object and returns its
// object ID
func WriteTree(r *repo.Repo) (string, error) {
	return writeTreeDir(r, r.Root())
}

func writeTreeDir(r *repo.Repo, dir string) (string, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var entries []treeEntry
	for _, dirent := range dirents {
		if ignoredNames[dirent.Name()] {
			continue
		}

		full := filepath.Join(dir, dirent.Name())
		switch {
		case dirent.Type().IsRegular():
			data, err := os.ReadFile(full)
			if err != nil {
				return "", err
			}
			oid, err := r.HashObject(data, repo.KindBlob)
			if err != nil {
				return "", err
			}
			entries = append(entries, treeEntry{Kind: repo.KindBlob, OID: oid, Name: dirent.Name()})
		case dirent.IsDir():
			oid, err := writeTreeDir(r, full)
			if err != nil {
				return "", err
			}
			entries = append(entries, treeEntry{Kind: repo.KindTree, OID: oid, Name: dirent.Name()})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	var tree strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&tree, "%s %s %s\n", entry.Kind, entry.OID, entry.Name)
	}

	return r.HashObject([]byte(tree.String()), repo.KindTree)
}

func iterTreeEntries(r *repo.Repo, oid string) ([]treeEntry, error) {
	if oid == "" {
		return nil, nil
	}

	payload, err := r.GetObject(oid, repo.KindTree)
	if err != nil {
		return nil, err
	}

	var entries []treeEntry
	for _, line := range strings.Split(string(payload), "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 3)
		if len(fields) != 3 {
			return nil, errors.Wrapf(repo.ErrMalformedObject, "tree %s entry %q", oid, line)
		}
		entries = append(entries, treeEntry{Kind: fields[0], OID: fields[1], Name: fields[2]})
	}

	return entries, nil
}

// GetTree flattens the tree object into a map from slash-separated
// paths to blob object IDs
func GetTree(r *repo.Repo, oid, base string) (map[string]string, error) {
	result := map[string]string{}

	entries, err := iterTreeEntries(r, oid)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if strings.Contains(entry.Name, "/") || entry.Name == "." || entry.Name == ".." {
			return nil, errors.Wrapf(repo.ErrMalformedObject, "tree %s has invalid entry name %q", oid, entry.Name)
		}

		path := base + entry.Name
		switch entry.Kind {
		case repo.KindBlob:
			result[path] = entry.OID
		case repo.KindTree:
			subtree, err := GetTree(r, entry.OID, path+"/")
			if err != nil {
				return nil, err
			}
			for subpath, suboid := range subtree {
				result[subpath] = suboid
			}
		default:
			return nil, errors.Wrapf(repo.ErrMalformedObject, "tree %s has unknown entry kind %q", oid, entry.Kind)
		}
	}

	return result, nil
}

// ReadTree clears the working tree and restores it from the tree
// object
func ReadTree(r *repo.Repo, treeOID string) error {
	if err := emptyWorkingTree(r); err != nil {
		return err
	}

	tree, err := GetTree(r, treeOID, "")
	if err != nil {
		return err
	}

	for path, oid := range tree {
		data, err := r.GetObject(oid, repo.KindBlob)
		if err != nil {
			return err
		}

		full := filepath.Join(r.Root(), filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(full, data, 0644); err != nil {
			return err
		}
	}

	return nil
}

// emptyWorkingTree deletes every non-ignored file under the working
// tree root, then removes directories that became empty. Removal of a
// directory still holding ignored files is expected to fail and is
// tolerated.
func emptyWorkingTree(r *repo.Repo) error {
	var files, dirs []string

	err := filepath.WalkDir(r.Root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if ignoredNames[d.Name()] && path != r.Root() {
				return fs.SkipDir
			}
			if path != r.Root() {
				dirs = append(dirs, path)
			}
			return nil
		}
		if d.Type().IsRegular() && !ignoredNames[d.Name()] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, path := range files {
		if err := os.Remove(path); err != nil {
			return err
		}
	}

	// Deepest directories first
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, path := range dirs {
		os.Remove(path)
	}

	return nil
}

// GetWorkingTree returns the map from slash-separated paths to blob
// object IDs that WriteTree would produce, without writing anything to
// the object store
func GetWorkingTree(r *repo.Repo) (map[string]string, error) {
	return hashWorkingTree(r, func(data []byte) (string, error) {
		return repo.DigestObject(data, repo.KindBlob), nil
	})
}

// SnapshotWorkingTree is GetWorkingTree with the side effect of
// storing every hashed blob, so the snapshot's contents can be read
// back from the object store
func SnapshotWorkingTree(r *repo.Repo) (map[string]string, error) {
	return hashWorkingTree(r, func(data []byte) (string, error) {
		return r.HashObject(data, repo.KindBlob)
	})
}

func hashWorkingTree(r *repo.Repo, hash func(data []byte) (string, error)) (map[string]string, error) {
	var paths []string

	err := filepath.WalkDir(r.Root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if ignoredNames[d.Name()] && path != r.Root() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && !ignoredNames[d.Name()] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	oids := make([]string, len(paths))
	var group errgroup.Group
	group.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		group.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			oid, err := hash(data)
			if err != nil {
				return err
			}
			oids[i] = oid
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := map[string]string{}
	for i, path := range paths {
		rel, err := filepath.Rel(r.Root(), path)
		if err != nil {
			return nil, err
		}
		result[filepath.ToSlash(rel)] = oids[i]
	}

	return result, nil
}
