package sync

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	ConflictMarkerLocal  = "<<<<<<< local"
	ConflictMarkerSep    = "======="
	ConflictMarkerRemote = ">>>>>>> remote"
)

// MergeResult is the outcome of a three-way merge. When Success is false the
// merged text contains inline conflict marker blocks and ConflictCount says
// how many.
type MergeResult struct {
	Merged        string
	Success       bool
	ConflictCount int
}

// HasConflictMarkers reports whether text still carries unresolved conflict
// blocks from an earlier merge.
func HasConflictMarkers(text string) bool {
	return strings.Contains(text, ConflictMarkerLocal) &&
		strings.Contains(text, ConflictMarkerRemote)
}

// hunk is one edit against the base: the half-open base line range
// [start, end) is replaced by lines. A pure insertion has start == end.
type hunk struct {
	start, end int
	lines      []string
}

// MergeText reconciles two independent line-level edits of base. Regions
// touched by only one side take that side's edit; regions both sides changed
// identically apply once; regions that diverge become conflict blocks.
func MergeText(base, local, remote string) MergeResult {
	// trivial cases first
	if local == remote {
		return MergeResult{Merged: local, Success: true}
	}
	if base == local {
		return MergeResult{Merged: remote, Success: true}
	}
	if base == remote {
		return MergeResult{Merged: local, Success: true}
	}

	baseLines := splitLines(base)
	localHunks := editScript(baseLines, splitLines(local))
	remoteHunks := editScript(baseLines, splitLines(remote))

	merged, conflicts := mergeHunks(baseLines, localHunks, remoteHunks)

	var out string
	if len(merged) > 0 {
		out = strings.Join(merged, "\n") + "\n"
	}
	return MergeResult{
		Merged:        out,
		Success:       conflicts == 0,
		ConflictCount: conflicts,
	}
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// editScript computes the line-level hunks that turn base into side.
func editScript(base, side []string) []hunk {
	dmp := diffmatchpatch.New()
	a, b, lineIndex := dmp.DiffLinesToChars(joinLines(base), joinLines(side))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineIndex)

	var hunks []hunk
	pos := 0
	open := -1 // index of the hunk being extended, -1 if none

	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			open = -1
			pos += n
		case diffmatchpatch.DiffDelete:
			if open < 0 {
				hunks = append(hunks, hunk{start: pos, end: pos})
				open = len(hunks) - 1
			}
			hunks[open].end += n
			pos += n
		case diffmatchpatch.DiffInsert:
			if open < 0 {
				hunks = append(hunks, hunk{start: pos, end: pos})
				open = len(hunks) - 1
			}
			hunks[open].lines = append(hunks[open].lines, splitLines(d.Text)...)
		}
	}
	return hunks
}

// mergeHunks walks both edit scripts over the base, coalescing overlapping
// or touching hunks into regions decided as a unit.
func mergeHunks(baseLines []string, lh, rh []hunk) ([]string, int) {
	var out []string
	conflicts := 0
	pos := 0
	i, j := 0, 0

	for i < len(lh) || j < len(rh) {
		var start int
		switch {
		case i >= len(lh):
			start = rh[j].start
		case j >= len(rh):
			start = lh[i].start
		case lh[i].start <= rh[j].start:
			start = lh[i].start
		default:
			start = rh[j].start
		}

		out = append(out, baseLines[pos:start]...)

		// grow the region while either side's next hunk touches it
		end := start
		li, rj := i, j
		for {
			grew := false
			for i < len(lh) && lh[i].start <= end {
				if lh[i].end > end {
					end = lh[i].end
				}
				i++
				grew = true
			}
			for j < len(rh) && rh[j].start <= end {
				if rh[j].end > end {
					end = rh[j].end
				}
				j++
				grew = true
			}
			if !grew {
				break
			}
		}

		baseSeg := baseLines[start:end]
		localSeg := applyHunks(baseLines, start, end, lh[li:i])
		remoteSeg := applyHunks(baseLines, start, end, rh[rj:j])

		switch {
		case linesEqual(localSeg, remoteSeg):
			out = append(out, localSeg...)
		case linesEqual(remoteSeg, baseSeg):
			out = append(out, localSeg...)
		case linesEqual(localSeg, baseSeg):
			out = append(out, remoteSeg...)
		default:
			out = append(out, ConflictMarkerLocal)
			out = append(out, localSeg...)
			out = append(out, ConflictMarkerSep)
			out = append(out, remoteSeg...)
			out = append(out, ConflictMarkerRemote)
			conflicts++
		}

		pos = end
	}

	out = append(out, baseLines[pos:]...)
	return out, conflicts
}

// applyHunks replaces each hunk's base range with its lines within the
// region [start, end).
func applyHunks(baseLines []string, start, end int, hunks []hunk) []string {
	var out []string
	pos := start
	for _, h := range hunks {
		out = append(out, baseLines[pos:h.start]...)
		out = append(out, h.lines...)
		pos = h.end
	}
	return append(out, baseLines[pos:end]...)
}

func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
