// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package repo

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// DirName is the name of the repository metadata directory
	DirName = ".ugit"
	// ObjectsDirName is the name of the object store directory inside DirName
	ObjectsDirName = "objects"
	// RefsDirName is the name of the refs tree inside DirName
	RefsDirName = "refs"
	// IndexFileName is the name of the staging index file inside DirName
	IndexFileName = "index"
	// ConfigFileName is the name of the configuration file inside DirName
	ConfigFileName = "config.yaml"
)

// Repo represents a local ugit repository
type Repo struct {
	root   string
	gitDir string
}

// Open attempts to open the repository rooted at the given path
func Open(path string) (*Repo, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}

	root, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	gitDir := filepath.Join(root, DirName)
	if fi, err := os.Stat(gitDir); err != nil || !fi.IsDir() {
		return nil, errors.Errorf("not a ugit repository: %s", path)
	}

	return &Repo{root: root, gitDir: gitDir}, nil
}

// Init creates the repository storage at the given path and returns a
// handle to it. Creating an already initialized repository is an error.
func Init(path string) (*Repo, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	gitDir := filepath.Join(root, DirName)
	if _, err := os.Stat(gitDir); err == nil {
		return nil, errors.Errorf("repository already exists: %s", path)
	}

	dirs := []string{
		gitDir,
		filepath.Join(gitDir, ObjectsDirName),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}

	r := &Repo{root: root, gitDir: gitDir}

	// Write the default configuration
	if _, err := CreateConfig(r.configPath()); err != nil {
		return nil, err
	}

	return r, nil
}

// Root returns the working tree root
func (r *Repo) Root() string {
	return r.root
}

// GitDir returns the repository metadata directory
func (r *Repo) GitDir() string {
	return r.gitDir
}

func (r *Repo) configPath() string {
	return filepath.Join(r.gitDir, ConfigFileName)
}

func (r *Repo) indexPath() string {
	return filepath.Join(r.gitDir, IndexFileName)
}

// Config opens the repository configuration file. A missing file
// yields the built-in defaults.
func (r *Repo) Config() (*Config, error) {
	if _, err := os.Stat(r.configPath()); os.IsNotExist(err) {
		return defaultConfig(r.configPath()), nil
	}
	return OpenConfig(r.configPath())
}
