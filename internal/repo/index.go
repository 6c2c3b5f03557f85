// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package repo

import (
	"os"

	"github.com/hashicorp/go-memdb"
	"gopkg.in/yaml.v2"
)

// IndexEntry represents a staged path in the index
type IndexEntry struct {
	Path string
	OID  string
}

// Index is the staging area, open for mutation. Changes live in a
// memdb transaction until Commit persists them to the index file;
// Abort discards them.
type Index struct {
	r   *Repo
	txn *memdb.Txn
}

func indexSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"entry": {
				Name: "entry",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:         "id",
						Unique:       true,
						AllowMissing: false,
						Indexer:      &memdb.StringFieldIndex{Field: "Path"},
					},
				},
			},
		},
	}
}

// ReadIndex reads the persisted staging map. A missing index file
// yields an empty map.
func (r *Repo) ReadIndex() (map[string]string, error) {
	buf, err := os.ReadFile(r.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	entries := map[string]string{}
	if err := yaml.Unmarshal(buf, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// OpenIndex opens the staging area for mutation
func (r *Repo) OpenIndex() (*Index, error) {
	db, err := memdb.NewMemDB(indexSchema())
	if err != nil {
		return nil, err
	}

	entries, err := r.ReadIndex()
	if err != nil {
		return nil, err
	}

	// Seed the table with the persisted entries
	seed := db.Txn(true)
	for path, oid := range entries {
		if err := seed.Insert("entry", &IndexEntry{Path: path, OID: oid}); err != nil {
			seed.Abort()
			return nil, err
		}
	}
	seed.Commit()

	return &Index{r: r, txn: db.Txn(true)}, nil
}

// Set stages the object ID for the given path
func (ix *Index) Set(path, oid string) error {
	return ix.txn.Insert("entry", &IndexEntry{Path: path, OID: oid})
}

// Get returns the staged object ID for the given path, or an empty
// string if the path is not staged
func (ix *Index) Get(path string) (string, error) {
	raw, err := ix.txn.First("entry", "id", path)
	if err != nil {
		return "", err
	}
	if raw == nil {
		return "", nil
	}
	return raw.(*IndexEntry).OID, nil
}

// Entries returns the staging map as currently visible inside the
// transaction
func (ix *Index) Entries() (map[string]string, error) {
	it, err := ix.txn.Get("entry", "id")
	if err != nil {
		return nil, err
	}

	entries := map[string]string{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		entry := raw.(*IndexEntry)
		entries[entry.Path] = entry.OID
	}

	return entries, nil
}

// Commit persists the staged entries to the index file and closes the
// transaction
func (ix *Index) Commit() error {
	entries, err := ix.Entries()
	if err != nil {
		ix.txn.Abort()
		return err
	}
	ix.txn.Commit()

	data, err := yaml.Marshal(entries)
	if err != nil {
		return err
	}

	return writeFileAtomic(ix.r.indexPath(), data, 0644)
}

// Abort discards the staged changes
func (ix *Index) Abort() {
	ix.txn.Abort()
}
