package testutils

import (
	"fmt"

	"github.com/papervec/papervec/pkg/store"
)

// UnitVector returns a dim-length vector with 1 at axis and 0 elsewhere.
func UnitVector(dim, axis int) []float32 {
	v := make([]float32, dim)
	v[axis] = 1
	return v
}

// ConstantVector returns a dim-length vector with every component set to val.
func ConstantVector(dim int, val float32) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = val
	}
	return v
}

// Chunks builds one chunk per vector with sequential ids ("chunk-0", ...)
// and placeholder text, for tests that only care about the vectors.
func Chunks(vectors ...[]float32) []store.Chunk {
	chunks := make([]store.Chunk, 0, len(vectors))
	for i, vec := range vectors {
		text := fmt.Sprintf("passage %d", i)
		chunks = append(chunks, store.Chunk{
			ID:         fmt.Sprintf("chunk-%d", i),
			Text:       text,
			Vector:     vec,
			ChunkIndex: int32(i),
			TextLength: int32(len(text)),
		})
	}
	return chunks
}
