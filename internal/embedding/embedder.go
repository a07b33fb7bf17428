// Package embedding maps text to fixed-length vectors. The primary path is a
// corpus-fitted TF-IDF projection; when the fit is unavailable or fails, a
// deterministic hash-based embedding takes over, and a constant vector is the
// tier of last resort. Embedding never fails: each degradation is logged and
// the next tier engages.
package embedding

import (
	"errors"

	"github.com/rs/zerolog/log"
)

// Embedder produces vectors of exactly Dimension() values.
type Embedder struct {
	dim        int
	vectorizer *Vectorizer
}

// strategy is one embedding tier; tiers are tried in order and the first
// success wins.
type strategy struct {
	name  string
	embed func(text string) ([]float64, error)
}

// New creates an embedder that emits dim-length vectors. Until Fit succeeds,
// the hash fallback serves every Embed call.
func New(dim int) *Embedder {
	return &Embedder{dim: dim}
}

// Dimension returns the fixed output vector length.
func (e *Embedder) Dimension() int { return e.dim }

// Fit trains the TF-IDF vectorizer on the corpus. Failure is non-fatal: it is
// logged and the embedder degrades to the hash fallback.
func (e *Embedder) Fit(corpus []string) {
	v := NewVectorizer(e.dim)
	if err := v.Fit(corpus); err != nil {
		log.Warn().Err(err).Msg("TF-IDF fit unavailable, falling back to hash embedding")
		e.vectorizer = nil
		return
	}
	log.Debug().Int("terms", v.Dimension()).Msg("TF-IDF vectorizer fitted")
	e.vectorizer = v
}

// Fitted reports whether the TF-IDF path is active.
func (e *Embedder) Fitted() bool { return e.vectorizer != nil }

// Reset discards any fitted state.
func (e *Embedder) Reset() { e.vectorizer = nil }

// Embed converts text to a vector of exactly Dimension() values. It never
// fails: tiers degrade from TF-IDF to hash to a constant vector, logging each
// step down.
func (e *Embedder) Embed(text string) []float64 {
	for _, s := range e.strategies() {
		vec, err := s.embed(text)
		if err != nil {
			log.Warn().Err(err).Str("strategy", s.name).Msg("embedding strategy failed, trying next tier")
			continue
		}
		return fitDimension(vec, e.dim)
	}
	return constantEmbedding(e.dim)
}

func (e *Embedder) strategies() []strategy {
	return []strategy{
		{name: "tfidf", embed: func(text string) ([]float64, error) {
			if e.vectorizer == nil {
				return nil, errors.New("vectorizer not fitted")
			}
			return e.vectorizer.Transform(text)
		}},
		{name: "hash", embed: func(text string) ([]float64, error) {
			return hashEmbedding(text, e.dim), nil
		}},
	}
}

// fitDimension truncates or zero-pads vec to exactly dim values.
func fitDimension(vec []float64, dim int) []float64 {
	if len(vec) == dim {
		return vec
	}
	if len(vec) > dim {
		return vec[:dim]
	}
	out := make([]float64, dim)
	copy(out, vec)
	return out
}
