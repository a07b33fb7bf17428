package models

const (
	// PaddingText fills synthetic chunks added when a corpus has fewer than
	// two genuine chunks.
	PaddingText = "padding document for TF-IDF"

	// NoAnswerResponse is returned when a query matches nothing.
	NoAnswerResponse = "I couldn't find any relevant information in the uploaded documents."

	// PreviewMaxChars caps the excerpt length carried by a SearchResult.
	PreviewMaxChars = 300

	// MaxAnswerSources caps how many deduplicated sources an answer exposes.
	MaxAnswerSources = 3
)

// PreviewOf returns text ellipsis-truncated to PreviewMaxChars characters.
// Truncation counts runes, not bytes, so multibyte text stays valid UTF-8.
func PreviewOf(text string) string {
	if len(text) <= PreviewMaxChars {
		return text
	}
	runes := []rune(text)
	if len(runes) <= PreviewMaxChars {
		return text
	}
	return string(runes[:PreviewMaxChars]) + "..."
}
