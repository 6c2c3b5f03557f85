// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package repo

import "errors"

// Errors reported by the storage and history layers. Call sites wrap
// these with context; the command layer maps them to messages and a
// non-zero exit.
var (
	// ErrNotFound means an object or ref is missing from the store
	ErrNotFound = errors.New("not found")
	// ErrKindMismatch means an object has a different kind than expected
	ErrKindMismatch = errors.New("object kind mismatch")
	// ErrMalformedObject means stored bytes cannot be parsed
	ErrMalformedObject = errors.New("malformed object")
	// ErrRefCycle means a symbolic ref chain exceeds the resolution bound
	ErrRefCycle = errors.New("symbolic ref chain too deep")
	// ErrUnknownName means name resolution was exhausted
	ErrUnknownName = errors.New("unknown name")
	// ErrNonFastForward means a push was rejected because the remote
	// ref is not an ancestor of the local one
	ErrNonFastForward = errors.New("not a fast-forward")
	// ErrMissingObject means the source side of a transfer lacks an
	// object needed to satisfy reachability
	ErrMissingObject = errors.New("missing object")
)
