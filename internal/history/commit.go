// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/lirios/ugit/internal/repo"
)

// Commit is the parsed form of a commit object
type Commit struct {
	Tree    string
	Parents []string
	Message string
}

// WriteCommit records the working tree as a new commit with the given
// message and advances HEAD to it. An in-progress merge contributes
// MERGE_HEAD as a second parent and is concluded.
func WriteCommit(r *repo.Repo, message string) (string, error) {
	treeOID, err := WriteTree(r)
	if err != nil {
		return "", err
	}

	var payload strings.Builder
	fmt.Fprintf(&payload, "tree %s\n", treeOID)

	head, err := r.GetRef("HEAD", true)
	if err != nil {
		return "", err
	}
	if head.Value != "" {
		fmt.Fprintf(&payload, "parent %s\n", head.Value)
	}

	mergeHead, err := r.GetRef("MERGE_HEAD", true)
	if err != nil {
		return "", err
	}
	if mergeHead.Value != "" {
		fmt.Fprintf(&payload, "parent %s\n", mergeHead.Value)
		if err := r.DeleteRef("MERGE_HEAD", false); err != nil {
			return "", err
		}
	}

	payload.WriteString("\n")
	payload.WriteString(message)
	payload.WriteString("\n")

	oid, err := r.HashObject([]byte(payload.String()), repo.KindCommit)
	if err != nil {
		return "", err
	}

	if err := r.UpdateRef("HEAD", repo.RefValue{Value: oid}, true); err != nil {
		return "", err
	}

	return oid, nil
}

// GetCommit parses the commit object with the given ID
func GetCommit(r *repo.Repo, oid string) (Commit, error) {
	payload, err := r.GetObject(oid, repo.KindCommit)
	if err != nil {
		return Commit{}, err
	}

	text := string(payload)
	sep := strings.Index(text, "\n\n")
	if sep < 0 {
		return Commit{}, errors.Wrapf(repo.ErrMalformedObject, "commit %s has no message separator", oid)
	}

	commit := Commit{Message: strings.TrimSuffix(text[sep+2:], "\n")}
	for _, line := range strings.Split(text[:sep], "\n") {
		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			return Commit{}, errors.Wrapf(repo.ErrMalformedObject, "commit %s header %q", oid, line)
		}

		switch fields[0] {
		case "tree":
			if commit.Tree != "" {
				return Commit{}, errors.Wrapf(repo.ErrMalformedObject, "commit %s has multiple tree headers", oid)
			}
			commit.Tree = fields[1]
		case "parent":
			commit.Parents = append(commit.Parents, fields[1])
		default:
			return Commit{}, errors.Wrapf(repo.ErrMalformedObject, "commit %s has unknown header %q", oid, fields[0])
		}
	}

	if commit.Tree == "" {
		return Commit{}, errors.Wrapf(repo.ErrMalformedObject, "commit %s has no tree header", oid)
	}

	return commit, nil
}

// Add stages the given files and directories in the index. The whole
// update is transactional: on error nothing is persisted.
func Add(r *repo.Repo, paths []string) error {
	index, err := r.OpenIndex()
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			index.Abort()
		}
	}()

	for _, path := range paths {
		full, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		fi, err := os.Stat(full)
		if err != nil {
			return err
		}

		if fi.IsDir() {
			if err := addDirectory(r, index, full); err != nil {
				return err
			}
		} else {
			if err := addFile(r, index, full); err != nil {
				return err
			}
		}
	}

	committed = true
	return index.Commit()
}

func addFile(r *repo.Repo, index *repo.Index, full string) error {
	rel, err := filepath.Rel(r.Root(), full)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") {
		return errors.Errorf("%s is outside the repository", full)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return err
	}

	oid, err := r.HashObject(data, repo.KindBlob)
	if err != nil {
		return err
	}

	return index.Set(rel, oid)
}

func addDirectory(r *repo.Repo, index *repo.Index, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if ignoredNames[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ignoredNames[d.Name()] {
			return nil
		}
		return addFile(r, index, path)
	})
}
