package embedding

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Vectorizer is a corpus-fitted TF-IDF vectorizer with a bounded vocabulary.
// Tokenization is case-insensitive on word boundaries, English stop words are
// removed, and both unigrams and bigrams are counted. Terms must appear in at
// least one document and at most 95% of documents.
type Vectorizer struct {
	vocabulary   map[string]int
	idf          []float64
	maxFeatures  int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
	fitted       bool
}

const maxDocFreqRatio = 0.95

// NewVectorizer creates an unfitted vectorizer with a vocabulary capped at
// maxFeatures terms.
func NewVectorizer(maxFeatures int) *Vectorizer {
	return &Vectorizer{
		vocabulary:   make(map[string]int),
		maxFeatures:  maxFeatures,
		tokenPattern: regexp.MustCompile(`\b\w+\b`),
		stopwords:    englishStopwords(),
	}
}

// Fit builds the vocabulary and IDF weights from the corpus. It fails on an
// empty corpus or when document-frequency pruning leaves no terms.
func (v *Vectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF fit")
	}

	df := make(map[string]int)
	total := make(map[string]int)
	for _, text := range corpus {
		terms := v.terms(text)
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			total[term]++
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	n := float64(len(corpus))
	maxDF := maxDocFreqRatio * n
	kept := make([]string, 0, len(df))
	for term, count := range df {
		if float64(count) > maxDF {
			continue
		}
		kept = append(kept, term)
	}
	if len(kept) == 0 {
		return errors.New("document-frequency pruning left no terms")
	}

	// Keep the top maxFeatures terms by total corpus frequency, ties broken
	// alphabetically so the fit is deterministic.
	if v.maxFeatures > 0 && len(kept) > v.maxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			if total[kept[i]] != total[kept[j]] {
				return total[kept[i]] > total[kept[j]]
			}
			return kept[i] < kept[j]
		})
		kept = kept[:v.maxFeatures]
	}
	sort.Strings(kept)

	v.vocabulary = make(map[string]int, len(kept))
	v.idf = make([]float64, len(kept))
	for i, term := range kept {
		v.vocabulary[term] = i
		// Smoothed IDF
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	v.fitted = true
	return nil
}

// Fitted reports whether Fit has completed successfully.
func (v *Vectorizer) Fitted() bool { return v.fitted }

// Dimension returns the vocabulary size.
func (v *Vectorizer) Dimension() int { return len(v.idf) }

// Transform projects text into the fitted vocabulary space and L2-normalizes
// the result. Text sharing no terms with the vocabulary maps to the zero vector.
func (v *Vectorizer) Transform(text string) ([]float64, error) {
	if !v.fitted {
		return nil, errors.New("vectorizer not fitted")
	}
	vec := make([]float64, len(v.idf))
	for _, term := range v.terms(text) {
		if idx, ok := v.vocabulary[term]; ok {
			vec[idx] += v.idf[idx]
		}
	}
	normalize(vec)
	return vec, nil
}

// terms tokenizes text and returns unigrams plus adjacent bigrams, with stop
// words removed before bigram assembly.
func (v *Vectorizer) terms(text string) []string {
	raw := v.tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if _, stop := v.stopwords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}
	out := make([]string, 0, 2*len(tokens))
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
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
