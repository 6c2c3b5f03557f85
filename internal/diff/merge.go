// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/lirios/ugit/internal/repo"
)

// Conflict markers, matching the labels an in-progress merge shows the
// user: the current HEAD, the merge base, and MERGE_HEAD.
const (
	markerOurs   = "<<<<<<< HEAD\n"
	markerBase   = "||||||| BASE\n"
	markerSplit  = "=======\n"
	markerTheirs = ">>>>>>> MERGE_HEAD\n"
)

// MergeTrees merges the three flattened trees path by path and returns
// the merged blob contents together with the paths that had conflicts.
// Absent blobs are treated as empty files; conflict markers are kept
// verbatim in the merged content.
func MergeTrees(r *repo.Repo, base, ours, theirs map[string]string) (map[string][]byte, []string, error) {
	merged := map[string][]byte{}
	var conflicts []string

	for _, c := range CompareTrees(base, ours, theirs) {
		blob, conflicted, err := mergeBlobs(r, c.OIDs[0], c.OIDs[1], c.OIDs[2])
		if err != nil {
			return nil, nil, err
		}

		merged[c.Path] = blob
		if conflicted {
			conflicts = append(conflicts, c.Path)
		}
	}

	return merged, conflicts, nil
}

func mergeBlobs(r *repo.Repo, oBase, oOurs, oTheirs string) ([]byte, bool, error) {
	baseText, err := blobText(r, oBase)
	if err != nil {
		return nil, false, err
	}
	oursText, err := blobText(r, oOurs)
	if err != nil {
		return nil, false, err
	}
	theirsText, err := blobText(r, oTheirs)
	if err != nil {
		return nil, false, err
	}

	mergedText, conflicted := merge3(baseText, oursText, theirsText)
	return []byte(mergedText), conflicted, nil
}

// region is a span of base lines [bs, be) replaced by the span
// [os, oe) of the other side. Insertions have bs == be.
type region struct {
	bs, be int
	os, oe int
}

func (r region) delta() int {
	return (r.oe - r.os) - (r.be - r.bs)
}

// diffRegions computes the changed regions between the base text and
// the other text, coalescing adjacent deletions and insertions
func diffRegions(base, other string) []region {
	var regions []region
	var cur region
	open := false
	b, o := 0, 0

	for _, d := range lineDiffs(base, other) {
		n := len(splitLines(d.Text))
		if n == 0 {
			continue
		}

		switch d.Type {
		case diffmatchpatch.DiffEqual:
			if open {
				cur.be, cur.oe = b, o
				regions = append(regions, cur)
				open = false
			}
			b += n
			o += n
		case diffmatchpatch.DiffDelete:
			if !open {
				cur = region{bs: b, os: o}
				open = true
			}
			b += n
		case diffmatchpatch.DiffInsert:
			if !open {
				cur = region{bs: b, os: o}
				open = true
			}
			o += n
		}
	}
	if open {
		cur.be, cur.oe = b, o
		regions = append(regions, cur)
	}

	return regions
}

const (
	sideOurs = iota
	sideTheirs
)

type sidedRegion struct {
	region
	side int
}

// groupRegions clusters the two sides' regions into chunks that must
// be resolved together: regions overlapping in base lines, and
// same-point insertions from both sides
func groupRegions(ours, theirs []region) [][]sidedRegion {
	var all []sidedRegion
	for _, r := range ours {
		all = append(all, sidedRegion{region: r, side: sideOurs})
	}
	for _, r := range theirs {
		all = append(all, sidedRegion{region: r, side: sideTheirs})
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].bs != all[j].bs {
			return all[i].bs < all[j].bs
		}
		return all[i].be < all[j].be
	})

	var groups [][]sidedRegion
	for _, r := range all {
		if len(groups) > 0 {
			group := groups[len(groups)-1]
			bs, be := groupSpan(group)
			overlaps := r.bs < be
			samePointInsert := r.bs == be && r.bs == r.be && bs == be
			if overlaps || samePointInsert {
				groups[len(groups)-1] = append(group, r)
				continue
			}
		}
		groups = append(groups, []sidedRegion{r})
	}

	return groups
}

func groupSpan(group []sidedRegion) (int, int) {
	bs, be := group[0].bs, group[0].be
	for _, r := range group[1:] {
		if r.bs < bs {
			bs = r.bs
		}
		if r.be > be {
			be = r.be
		}
	}
	return bs, be
}

// merge3 merges two descendants of a base text line by line. Regions
// changed on only one side take that side; regions changed identically
// on both take either; diverging regions produce a conflict block.
func merge3(base, ours, theirs string) (string, bool) {
	if ours == theirs {
		return ours, false
	}
	if ours == base {
		return theirs, false
	}
	if theirs == base {
		return ours, false
	}

	baseLines := splitLines(base)
	oursLines := splitLines(ours)
	theirsLines := splitLines(theirs)

	groups := groupRegions(diffRegions(base, ours), diffRegions(base, theirs))

	var out strings.Builder
	conflicted := false

	// Cumulative line-count deltas of the regions consumed so far,
	// per side
	deltas := [2]int{}
	cursor := 0

	for _, group := range groups {
		bs, be := groupSpan(group)

		for _, line := range baseLines[cursor:bs] {
			out.WriteString(line)
		}
		cursor = be

		baseSeg := strings.Join(baseLines[bs:be], "")
		var segs [2]string
		for side, lines := range [2][]string{oursLines, theirsLines} {
			start := bs + deltas[side]
			end := be + deltas[side]
			for _, r := range group {
				if r.side == side {
					end += r.delta()
				}
			}
			segs[side] = strings.Join(lines[start:end], "")
		}
		for _, r := range group {
			deltas[r.side] += r.delta()
		}

		oursSeg, theirsSeg := segs[sideOurs], segs[sideTheirs]
		switch {
		case oursSeg == baseSeg:
			out.WriteString(theirsSeg)
		case theirsSeg == baseSeg:
			out.WriteString(oursSeg)
		case oursSeg == theirsSeg:
			out.WriteString(oursSeg)
		default:
			conflicted = true
			out.WriteString(conflictBlock(oursSeg, baseSeg, theirsSeg))
		}
	}

	for _, line := range baseLines[cursor:] {
		out.WriteString(line)
	}

	return out.String(), conflicted
}

func conflictBlock(ours, base, theirs string) string {
	var out strings.Builder
	out.WriteString(markerOurs)
	writeSegment(&out, ours)
	out.WriteString(markerBase)
	writeSegment(&out, base)
	out.WriteString(markerSplit)
	writeSegment(&out, theirs)
	out.WriteString(markerTheirs)
	return out.String()
}

func writeSegment(out *strings.Builder, seg string) {
	out.WriteString(seg)
	if seg != "" && !strings.HasSuffix(seg, "\n") {
		out.WriteString("\n")
	}
}
