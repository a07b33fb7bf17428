// Package index provides an in-memory similarity index over chunk embeddings.
// Vectors are L2-normalized on the way in, so the inner product of a stored
// row with a normalized query is their cosine similarity in [-1, 1].
package index

import (
	"context"
	"errors"
	"math"
	"sort"

	"document-qa/internal/embedding"
	"document-qa/internal/models"
)

// Index stores chunks and their normalized vectors in parallel: chunk i
// corresponds to row i. It is rebuilt wholesale, never patched.
type Index struct {
	embedder *embedding.Embedder
	chunks   []models.Chunk
	vectors  [][]float64
	dim      int
}

func New(embedder *embedding.Embedder) *Index {
	return &Index{embedder: embedder}
}

// Build embeds every chunk, normalizes the vectors and replaces any previous
// contents. The realized dimension is taken from the first vector produced.
func (ix *Index) Build(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return errors.New("no chunks to index")
	}
	vectors := make([][]float64, len(chunks))
	for i, chunk := range chunks {
		vec := ix.embedder.Embed(chunk.Text)
		normalize(vec)
		vectors[i] = vec
	}
	ix.chunks = append([]models.Chunk(nil), chunks...)
	ix.vectors = vectors
	ix.dim = len(vectors[0])
	return nil
}

// Search returns up to k genuine results by descending cosine similarity, ties
// broken by insertion order. Padding chunks are filtered out after scoring, so
// the k limit applies to real results. An unbuilt index yields no results.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	if len(ix.vectors) == 0 || k <= 0 {
		return nil, nil
	}

	qvec := ix.embedder.Embed(query)
	normalize(qvec)

	order := make([]int, len(ix.vectors))
	scores := make([]float64, len(ix.vectors))
	for i := range ix.vectors {
		order[i] = i
		scores[i] = dot(ix.vectors[i], qvec)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	results := make([]models.SearchResult, 0, k)
	for _, i := range order {
		if ix.chunks[i].Padding {
			continue
		}
		results = append(results, models.SearchResult{
			RankPosition:    len(results) + 1,
			SourceName:      ix.chunks[i].SourceName,
			SimilarityScore: scores[i],
			Preview:         models.PreviewOf(ix.chunks[i].Text),
		})
		if len(results) >= k {
			break
		}
	}
	return results, nil
}

// Rows returns the number of stored vectors, padding included.
func (ix *Index) Rows() int { return len(ix.vectors) }

// Dimension returns the realized embedding dimension, 0 before Build.
func (ix *Index) Dimension() int { return ix.dim }

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(vec []float64) {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}
