// Package embed provides the embedding capability consumed by the vector
// search adapter. Embedding of ingested documents happens outside this
// repository; query embedding must use the same model, which is why the
// model name is configuration, not a constant.
package embed

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
)

var ErrNotSupported = errors.New("embedding not supported")

// Embedder converts text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

const dummyDim = 256

// DummyEmbedder produces a deterministic pseudo-embedding from a hash of the
// text. Good enough for tests and offline runs; useless for real retrieval.
type DummyEmbedder struct{}

func (DummyEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return DummyEmbedding(text), nil
}

// DummyEmbedding hashes the text into a fixed-size unit vector.
func DummyEmbedding(text string) []float32 {
	vec := make([]float32, dummyDim)
	h := fnv.New64a()
	for i := range vec {
		h.Write([]byte{byte(i)})
		h.Write([]byte(text))
		vec[i] = float32(h.Sum64()%2048)/1024.0 - 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

var _ Embedder = DummyEmbedder{}
