package embedding

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
)

// hashFuncs is the rotating set of digests used by the deterministic fallback.
var hashFuncs = []func() hash.Hash{md5.New, sha1.New, sha256.New}

// hashEmbedding builds a deterministic vector by hashing "{text}_{i}" for each
// dimension i, mapping the digest's leading 32 bits into [-1.0, 1.0). It needs
// no fitting step: the same text always yields the same vector.
func hashEmbedding(text string, dim int) []float64 {
	vec := make([]float64, dim)
	for i := 0; i < dim; i++ {
		h := hashFuncs[i%len(hashFuncs)]()
		fmt.Fprintf(h, "%s_%d", text, i)
		v := binary.BigEndian.Uint32(h.Sum(nil)[:4])
		vec[i] = (float64(v%2000) - 1000) / 1000.0
	}
	return vec
}

// constantEmbedding is the tier of last resort: the index stays usable but
// ranking degrades to insertion order.
func constantEmbedding(dim int) []float64 {
	vec := make([]float64, dim)
	for i := range vec {
		vec[i] = 0.1
	}
	return vec
}
