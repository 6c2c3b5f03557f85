// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/lirios/ugit/internal/history"
	"github.com/lirios/ugit/internal/logger"
	"github.com/lirios/ugit/internal/repo"
)

const (
	remoteRefsBase = "refs/heads/"
	localRefsBase  = "refs/remote/"
)

// Fetch copies every object reachable from the remote's branches into
// the local repository and mirrors the branches under refs/remote/.
// Objects already present locally are skipped, so fetching twice is
// the same as fetching once.
func Fetch(local *repo.Repo, remotePath string) error {
	remote, err := repo.Open(remotePath)
	if err != nil {
		return err
	}

	refs, err := remote.ListRefs(remoteRefsBase, true)
	if err != nil {
		return err
	}

	var seeds []string
	for _, ref := range refs {
		seeds = append(seeds, ref.Ref.Value)
	}

	logger.Actionf("Enumerating objects reachable from %d branches...", len(refs))
	oids, err := history.ObjectsInCommits(remote, seeds)
	if err != nil {
		return err
	}

	transferred := 0
	for _, oid := range oids {
		if local.ObjectExists(oid) {
			continue
		}
		if err := local.CopyObjectFrom(oid, remote); err != nil {
			return err
		}
		transferred++
	}
	logger.Debugf("Transferred %d objects from %s", transferred, remotePath)

	for _, ref := range refs {
		name := strings.TrimPrefix(ref.Name, remoteRefsBase)
		value := repo.RefValue{Value: ref.Ref.Value}
		if err := local.UpdateRef(localRefsBase+name, value, true); err != nil {
			return err
		}
	}

	return nil
}

// Push transfers the objects reachable from the local ref that the
// remote does not already have, then updates the remote's ref. The
// update must be a fast-forward: an existing remote ref has to be an
// ancestor of the local commit.
func Push(local *repo.Repo, remotePath, refname string) error {
	remote, err := repo.Open(remotePath)
	if err != nil {
		return err
	}

	remoteRefs, err := remote.ListRefs("", true)
	if err != nil {
		return err
	}

	localRef, err := local.GetRef(refname, true)
	if err != nil {
		return err
	}
	if localRef.Value == "" {
		return errors.Wrapf(repo.ErrUnknownName, "local ref %s", refname)
	}

	var remoteOID string
	for _, ref := range remoteRefs {
		if ref.Name == refname {
			remoteOID = ref.Ref.Value
			break
		}
	}
	if remoteOID != "" {
		ancestor, err := history.IsAncestorOf(local, localRef.Value, remoteOID)
		if err != nil {
			return err
		}
		if !ancestor {
			return errors.Wrapf(repo.ErrNonFastForward, "remote %s is at %s", refname, remoteOID)
		}
	}

	// Remote refs whose objects exist locally bound the set of
	// objects the remote is known to already have
	var known []string
	for _, ref := range remoteRefs {
		if local.ObjectExists(ref.Ref.Value) {
			known = append(known, ref.Ref.Value)
		}
	}

	remoteObjects, err := history.ObjectsInCommits(local, known)
	if err != nil {
		return err
	}
	present := map[string]bool{}
	for _, oid := range remoteObjects {
		present[oid] = true
	}

	localObjects, err := history.ObjectsInCommits(local, []string{localRef.Value})
	if err != nil {
		return err
	}

	transferred := 0
	for _, oid := range localObjects {
		if present[oid] {
			continue
		}
		if err := local.CopyObjectTo(oid, remote); err != nil {
			return err
		}
		transferred++
	}
	logger.Debugf("Transferred %d objects to %s", transferred, remotePath)

	return remote.UpdateRef(refname, repo.RefValue{Value: localRef.Value}, true)
}
