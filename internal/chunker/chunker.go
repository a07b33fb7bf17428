// Package chunker cleans extracted document text and splits it into
// overlapping, source-tagged segments.
package chunker

import (
	"regexp"
	"strings"

	"document-qa/internal/models"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:()\-"]`)
	multiSpaceRe = regexp.MustCompile(` +`)
)

// Clean collapses whitespace runs, strips characters outside a conservative
// allow-list and trims the result.
func Clean(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = disallowedRe.ReplaceAllString(text, " ")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Chunk cleans text and splits it into overlapping chunks of at most chunkSize
// characters, preferring to break on a sentence terminator, then on a space,
// within the second half of the chunk window. Empty text yields no chunks; text
// shorter than chunkSize yields exactly one. The step from one chunk to the
// next always advances, so the walk terminates.
func Chunk(text, sourceName string, chunkSize, overlap int) []models.Chunk {
	if chunkSize <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}

	text = Clean(text)
	if text == "" {
		return nil
	}

	var chunks []models.Chunk
	start := 0
	seq := 0
	for start < len(text) {
		end := start + chunkSize
		if end < len(text) {
			end = boundary(text, start, end, chunkSize)
		} else {
			end = len(text)
		}

		segment := strings.TrimSpace(text[start:end])
		if segment != "" {
			chunks = append(chunks, models.Chunk{
				Text:          segment,
				SourceName:    sourceName,
				SequenceIndex: seq,
			})
			seq++
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// boundary moves the cut point back to the latest sentence terminator in the
// second half of the window, falling back to the latest space, else the raw cut.
func boundary(text string, start, end, chunkSize int) int {
	window := text[start:end]
	if i := strings.LastIndexByte(window, '.'); i > chunkSize/2 {
		return start + i + 1
	}
	if i := strings.LastIndexByte(window, ' '); i > chunkSize/2 {
		return start + i
	}
	return end
}
