// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/lirios/ugit/internal/repo"
)

// Actions reported for changed files
const (
	ActionNewFile  = "new file"
	ActionDeleted  = "deleted"
	ActionModified = "modified"
)

// Comparison pairs a path with its object ID in each compared tree.
// An empty string marks a tree that does not contain the path.
type Comparison struct {
	Path string
	OIDs []string
}

// Change pairs a path with the action that happened to it between two
// trees
type Change struct {
	Path   string
	Action string
}

// CompareTrees builds the union of paths across the given trees, each
// paired with its object ID in every tree, sorted by path
func CompareTrees(trees ...map[string]string) []Comparison {
	entries := map[string][]string{}
	for i, tree := range trees {
		for path, oid := range tree {
			if _, ok := entries[path]; !ok {
				entries[path] = make([]string, len(trees))
			}
			entries[path][i] = oid
		}
	}

	var result []Comparison
	for path, oids := range entries {
		result = append(result, Comparison{Path: path, OIDs: oids})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })

	return result
}

// ChangedFiles yields the paths that differ between the two trees and
// the action that happened to each
func ChangedFiles(from, to map[string]string) []Change {
	var changes []Change
	for _, c := range CompareTrees(from, to) {
		oFrom, oTo := c.OIDs[0], c.OIDs[1]
		if oFrom == oTo {
			continue
		}

		action := ActionModified
		switch {
		case oFrom == "":
			action = ActionNewFile
		case oTo == "":
			action = ActionDeleted
		}
		changes = append(changes, Change{Path: c.Path, Action: action})
	}

	return changes
}

// Trees produces a unified textual diff between the two flattened
// trees, concatenating the diff of every differing path
func Trees(r *repo.Repo, from, to map[string]string) ([]byte, error) {
	var output bytes.Buffer
	for _, c := range CompareTrees(from, to) {
		oFrom, oTo := c.OIDs[0], c.OIDs[1]
		if oFrom == oTo {
			continue
		}

		blobDiff, err := Blobs(r, oFrom, oTo, c.Path)
		if err != nil {
			return nil, err
		}
		output.Write(blobDiff)
	}

	return output.Bytes(), nil
}

// Blobs produces a unified diff between two blobs, labeled a/<path>
// and b/<path>. An empty object ID stands for an absent blob.
func Blobs(r *repo.Repo, from, to, path string) ([]byte, error) {
	fromText, err := blobText(r, from)
	if err != nil {
		return nil, err
	}
	toText, err := blobText(r, to)
	if err != nil {
		return nil, err
	}

	diff := unifiedDiff(fromText, toText, "a/"+path, "b/"+path)
	return []byte(diff), nil
}

func blobText(r *repo.Repo, oid string) (string, error) {
	if oid == "" {
		return "", nil
	}
	data, err := r.GetObject(oid, repo.KindBlob)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// splitLines splits text into lines, each keeping its terminating
// newline except possibly the last one
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// lineDiffs computes a line-level diff between the two texts
func lineDiffs(from, to string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	cFrom, cTo, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffMain(cFrom, cTo, false)
	return dmp.DiffCharsToLines(diffs, lines)
}

type lineEdit struct {
	op   diffmatchpatch.Operation
	text string
}

func lineEdits(from, to string) []lineEdit {
	var edits []lineEdit
	for _, d := range lineDiffs(from, to) {
		for _, line := range splitLines(d.Text) {
			edits = append(edits, lineEdit{op: d.Type, text: line})
		}
	}
	return edits
}

const contextLines = 3

// unifiedDiff renders the edits between the two texts in unified
// format with the given labels. Identical texts yield an empty string.
func unifiedDiff(from, to, fromLabel, toLabel string) string {
	edits := lineEdits(from, to)

	changed := false
	for _, e := range edits {
		if e.op != diffmatchpatch.DiffEqual {
			changed = true
			break
		}
	}
	if !changed {
		return ""
	}

	var out strings.Builder
	fmt.Fprintf(&out, "--- %s\n", fromLabel)
	fmt.Fprintf(&out, "+++ %s\n", toLabel)

	for _, h := range hunks(edits) {
		fmt.Fprintf(&out, "@@ -%d,%d +%d,%d @@\n", h.fromStart, h.fromCount, h.toStart, h.toCount)
		for _, e := range h.edits {
			switch e.op {
			case diffmatchpatch.DiffDelete:
				out.WriteString("-")
			case diffmatchpatch.DiffInsert:
				out.WriteString("+")
			default:
				out.WriteString(" ")
			}
			out.WriteString(e.text)
			if !strings.HasSuffix(e.text, "\n") {
				out.WriteString("\n")
			}
		}
	}

	return out.String()
}

type hunk struct {
	fromStart, fromCount int
	toStart, toCount     int
	edits                []lineEdit
}

// hunks groups the edits into unified-diff hunks with up to
// contextLines of surrounding context, merging hunks whose context
// would overlap
func hunks(edits []lineEdit) []hunk {
	// Positions in the from/to texts before each edit
	fromPos := make([]int, len(edits)+1)
	toPos := make([]int, len(edits)+1)
	for i, e := range edits {
		fromPos[i+1] = fromPos[i]
		toPos[i+1] = toPos[i]
		if e.op != diffmatchpatch.DiffInsert {
			fromPos[i+1]++
		}
		if e.op != diffmatchpatch.DiffDelete {
			toPos[i+1]++
		}
	}

	var result []hunk
	i := 0
	for i < len(edits) {
		if edits[i].op == diffmatchpatch.DiffEqual {
			i++
			continue
		}

		// Expand the hunk over nearby changes
		start := i - contextLines
		if start < 0 {
			start = 0
		}
		end := i
		last := i
		for end < len(edits) {
			if edits[end].op != diffmatchpatch.DiffEqual {
				last = end
				end++
				continue
			}
			if end-last > 2*contextLines {
				break
			}
			end++
		}
		end = last + contextLines + 1
		if end > len(edits) {
			end = len(edits)
		}

		h := hunk{edits: edits[start:end]}
		h.fromCount = fromPos[end] - fromPos[start]
		h.toCount = toPos[end] - toPos[start]
		h.fromStart = fromPos[start]
		if h.fromCount > 0 {
			h.fromStart++
		}
		h.toStart = toPos[start]
		if h.toCount > 0 {
			h.toStart++
		}
		result = append(result, h)

		i = end
	}

	return result
}
