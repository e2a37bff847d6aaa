package gitdriver

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// wordDiffMaxLineLength skips word-level annotation for lines longer than
// this; such lines are rare and the per-rune diff cost is not worth it.
const wordDiffMaxLineLength = 500

// WordDiff computes a token-level diff between two corresponding old/new
// lines of a unified diff hunk, used to highlight exactly what changed
// within a modified line rather than marking the whole line as changed.
func WordDiff(oldLine, newLine string) (oldSegments, newSegments []WordSegment) {
	if oldLine == "" && newLine == "" {
		return nil, nil
	}
	if oldLine == "" {
		return nil, []WordSegment{{Type: SegmentAdded, Text: newLine}}
	}
	if newLine == "" {
		return []WordSegment{{Type: SegmentDeleted, Text: oldLine}}, nil
	}
	if len(oldLine) > wordDiffMaxLineLength || len(newLine) > wordDiffMaxLineLength {
		return []WordSegment{{Type: SegmentDeleted, Text: oldLine}},
			[]WordSegment{{Type: SegmentAdded, Text: newLine}}
	}

	oldTokens := tokenize(oldLine)
	newTokens := tokenize(newLine)

	dmp := diffmatchpatch.New()
	oldText := strings.Join(oldTokens, "\x00")
	newText := strings.Join(newTokens, "\x00")

	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	for _, d := range diffs {
		text := strings.ReplaceAll(d.Text, "\x00", "")
		if text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldSegments = append(oldSegments, WordSegment{Type: SegmentUnchanged, Text: text})
			newSegments = append(newSegments, WordSegment{Type: SegmentUnchanged, Text: text})
		case diffmatchpatch.DiffDelete:
			oldSegments = append(oldSegments, WordSegment{Type: SegmentDeleted, Text: text})
		case diffmatchpatch.DiffInsert:
			newSegments = append(newSegments, WordSegment{Type: SegmentAdded, Text: text})
		}
	}
	return oldSegments, newSegments
}

// tokenize splits a line into words, single whitespace characters, and
// punctuation, the unit at which word diffs are computed.
func tokenize(line string) []string {
	if line == "" {
		return nil
	}
	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == ' ' || r == '\t':
			flush()
			tokens = append(tokens, string(r))
		case isWordPunct(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func isWordPunct(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	default:
		return true
	}
}
