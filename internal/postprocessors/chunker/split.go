package chunker

import (
	"strings"
	"unicode"
)

// DefaultSeparators is the boundary priority: paragraph, line, word,
// then a hard character cut (the empty separator).
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Split cuts text into chunks of at most size characters.
//
// Each chunk ends on the highest-priority separator that leaves the chunk
// longer than overlap; when no separator qualifies the next one down is
// tried, ending in a hard cut at size. The next chunk starts at least
// overlap characters before the previous end, snapped back to a word
// boundary when one lies within another overlap of that point, so
// consecutive chunks share at least overlap characters.
//
// Empty and whitespace-only text yields no chunks. Lengths are counted in
// runes so multibyte characters are never split.
func Split(text string, size, overlap int) []string {
	return SplitWith(text, size, overlap, DefaultSeparators)
}

// SplitWith is Split with a custom separator priority list.
func SplitWith(text string, size, overlap int, separators []string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}

	runes := []rune(text)
	seps := make([][]rune, 0, len(separators))
	for _, s := range separators {
		seps = append(seps, []rune(s))
	}

	var chunks []string
	start := 0
	for {
		if len(runes)-start <= size {
			chunks = appendChunk(chunks, runes[start:])
			return chunks
		}

		end := cut(runes, start+overlap+1, start+size, seps)
		chunks = appendChunk(chunks, runes[start:end])
		start = overlapStart(runes, start, end, overlap)
	}
}

func appendChunk(chunks []string, r []rune) []string {
	s := string(r)
	if strings.TrimSpace(s) == "" {
		return chunks
	}
	return append(chunks, s)
}

// cut returns the chunk end in [lo, hi]: the position just after the last
// occurrence of the first separator that has one there, else hi.
func cut(runes []rune, lo, hi int, seps [][]rune) int {
	if len(seps) == 0 || len(seps[0]) == 0 {
		return hi
	}
	if p := lastBoundary(runes, seps[0], lo, hi); p >= 0 {
		return p
	}
	return cut(runes, lo, hi, seps[1:])
}

// lastBoundary returns the largest p in [lo, hi] such that sep ends at p, or -1.
func lastBoundary(runes, sep []rune, lo, hi int) int {
	for p := hi; p >= lo; p-- {
		if p < len(sep) {
			return -1
		}
		if equalRunes(runes[p-len(sep):p], sep) {
			return p
		}
	}
	return -1
}

func equalRunes(a, b []rune) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// overlapStart picks where the chunk after [start, end) begins.
func overlapStart(runes []rune, start, end, overlap int) int {
	target := end - overlap
	floor := max(start+1, target-overlap)
	for p := target; p > floor; p-- {
		if unicode.IsSpace(runes[p-1]) && !unicode.IsSpace(runes[p]) {
			return p
		}
	}
	return target
}
