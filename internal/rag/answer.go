package rag

import (
	"context"
	"fmt"

	"document-qa/internal/models"
)

// Answer runs a similarity search and assembles the extractive answer payload.
func Answer(ctx context.Context, idx SimilarityIndex, query string, k int) (models.RetrievalAnswer, error) {
	results, err := idx.Search(ctx, query, k)
	if err != nil {
		return models.RetrievalAnswer{}, err
	}
	return AssembleAnswer(results), nil
}

// AssembleAnswer deduplicates ranked results by source, keeping the
// highest-scoring chunk per source (ties keep the first seen) in first-seen
// order, and answers with an attributed excerpt of the best source. No text is
// synthesized.
func AssembleAnswer(results []models.SearchResult) models.RetrievalAnswer {
	if len(results) == 0 {
		return models.RetrievalAnswer{
			Response:    models.NoAnswerResponse,
			Sources:     []models.SearchResult{},
			Confidence:  0.0,
			SourceCount: 0,
		}
	}

	best := make(map[string]int, len(results))
	order := make([]string, 0, len(results))
	for i, r := range results {
		j, seen := best[r.SourceName]
		if !seen {
			best[r.SourceName] = i
			order = append(order, r.SourceName)
			continue
		}
		if r.SimilarityScore > results[j].SimilarityScore {
			best[r.SourceName] = i
		}
	}

	unique := make([]models.SearchResult, 0, len(order))
	for _, source := range order {
		unique = append(unique, results[best[source]])
	}

	top := unique[0]
	sources := unique
	if len(sources) > models.MaxAnswerSources {
		sources = sources[:models.MaxAnswerSources]
	}

	return models.RetrievalAnswer{
		Response:    fmt.Sprintf("Based on '%s':\n\n%s", top.SourceName, top.Preview),
		Sources:     sources,
		Confidence:  confidence(top.SimilarityScore),
		SourceCount: len(unique),
	}
}

// confidence maps a similarity score in [-1,1] to a user-facing value in
// [0.5, 0.95]. The +0.3 shift and clamp are a presentation heuristic, not a
// calibrated probability.
func confidence(topScore float64) float64 {
	c := topScore + 0.3
	if c < 0.5 {
		return 0.5
	}
	if c > 0.95 {
		return 0.95
	}
	return c
}
