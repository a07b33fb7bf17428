package models

// Chunk represents one bounded, source-tagged text segment of a document.
// Padding chunks are synthetic filler injected so the TF-IDF fit is well-defined
// on tiny corpora; they never appear in search results.
type Chunk struct {
	Text          string
	SourceName    string
	SequenceIndex int
	Padding       bool
}

// SearchResult is one ranked match returned by a similarity search.
type SearchResult struct {
	RankPosition    int     `json:"chunk_id"`
	SourceName      string  `json:"source_name"`
	SimilarityScore float64 `json:"similarity_score"`
	Preview         string  `json:"preview"`
}

// RetrievalAnswer is the assembled response for one query.
// Confidence is a presentation heuristic mapped into [0.5, 0.95] (0.0 when
// nothing matched); it is not a calibrated probability.
type RetrievalAnswer struct {
	Response    string         `json:"response"`
	Sources     []SearchResult `json:"sources"`
	Confidence  float64        `json:"confidence"`
	SourceCount int            `json:"num_sources"`
}

// CorpusStats summarizes one completed ingest.
type CorpusStats struct {
	TotalChunks        int
	EmbeddingDimension int
	DocumentsProcessed int
	DocumentsSkipped   int
}

// Stats describes the currently loaded corpus generation.
type Stats struct {
	TotalChunks        int
	EmbeddingDimension int
	IndexRowCount      int
}
