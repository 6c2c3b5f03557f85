// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package repo

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Object kinds accepted by the store
const (
	KindBlob   = "blob"
	KindTree   = "tree"
	KindCommit = "commit"
)

// OIDLen is the length of an object ID in hex digits
const OIDLen = 40

// DigestObject computes the object ID of the given payload without
// touching the store. Equal content yields an equal OID.
func DigestObject(data []byte, kind string) string {
	obj := encodeObject(data, kind)
	sum := sha1.Sum(obj)
	return hex.EncodeToString(sum[:])
}

func encodeObject(data []byte, kind string) []byte {
	obj := make([]byte, 0, len(kind)+1+len(data))
	obj = append(obj, kind...)
	obj = append(obj, 0)
	obj = append(obj, data...)
	return obj
}

// ObjectPath returns the path of the object in the store
func (r *Repo) ObjectPath(oid string) string {
	return filepath.Join(r.gitDir, ObjectsDirName, oid)
}

// HashObject stores the payload under its content address and returns
// the object ID. Re-hashing identical content is a no-op.
func (r *Repo) HashObject(data []byte, kind string) (string, error) {
	obj := encodeObject(data, kind)
	sum := sha1.Sum(obj)
	oid := hex.EncodeToString(sum[:])

	path := r.ObjectPath(oid)
	if _, err := os.Stat(path); err == nil {
		return oid, nil
	}

	if err := writeFileAtomic(path, obj, 0644); err != nil {
		return "", errors.Wrapf(err, "failed to store object %s", oid)
	}

	return oid, nil
}

// GetObject reads the payload of the object with the given ID. When
// expected is not empty the object kind is validated against it.
func (r *Repo) GetObject(oid, expected string) ([]byte, error) {
	obj, err := os.ReadFile(r.ObjectPath(oid))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "object %s", oid)
		}
		return nil, err
	}

	sep := bytes.IndexByte(obj, 0)
	if sep < 0 {
		return nil, errors.Wrapf(ErrMalformedObject, "object %s has no kind header", oid)
	}

	kind := string(obj[:sep])
	if expected != "" && kind != expected {
		return nil, errors.Wrapf(ErrKindMismatch, "expected object of kind %s, got %s", expected, kind)
	}

	return obj[sep+1:], nil
}

// ObjectExists reports whether the object is present in the store
func (r *Repo) ObjectExists(oid string) bool {
	fi, err := os.Stat(r.ObjectPath(oid))
	return err == nil && fi.Mode().IsRegular()
}

// CopyObjectFrom copies the object byte-for-byte from the other
// repository into this one
func (r *Repo) CopyObjectFrom(oid string, other *Repo) error {
	if !other.ObjectExists(oid) {
		return errors.Wrapf(ErrMissingObject, "object %s not in %s", oid, other.Root())
	}
	return copyFile(other.ObjectPath(oid), r.ObjectPath(oid))
}

// CopyObjectTo copies the object byte-for-byte from this repository
// into the other one
func (r *Repo) CopyObjectTo(oid string, other *Repo) error {
	if !r.ObjectExists(oid) {
		return errors.Wrapf(ErrMissingObject, "object %s not in %s", oid, r.Root())
	}
	return copyFile(r.ObjectPath(oid), other.ObjectPath(oid))
}
