package store

import "fmt"

// Batch is a columnar encoding of an ordered chunk sequence: one contiguous
// slice per column. Vectors are flattened into a single float buffer and read
// back with a constant stride, so a batch of n d-dimensional vectors costs
// one allocation of n*d floats instead of n row allocations.
type Batch struct {
	schema Schema

	IDs          []string
	Texts        []string
	Vectors      []float32 // flat, stride = schema.Dimensions()
	ChunkIndexes []int32
	TextLengths  []int32
}

// EncodeBatch converts an ordered chunk sequence into a single columnar
// batch. Insertion order is preserved; there is no dedup and no sort. Every
// vector must have the first chunk's length; a mismatch fails naming the
// offending chunk. An empty sequence yields a zero-row batch with
// DefaultDimensions so an empty table can still be created.
func EncodeBatch(chunks []Chunk) (*Batch, error) {
	dim := DefaultDimensions
	if len(chunks) > 0 {
		dim = len(chunks[0].Vector)
	}

	schema, err := NewSchema(dim)
	if err != nil {
		return nil, err
	}

	b := &Batch{
		schema:       schema,
		IDs:          make([]string, 0, len(chunks)),
		Texts:        make([]string, 0, len(chunks)),
		Vectors:      make([]float32, 0, len(chunks)*dim),
		ChunkIndexes: make([]int32, 0, len(chunks)),
		TextLengths:  make([]int32, 0, len(chunks)),
	}

	for i, c := range chunks {
		if len(c.Vector) != dim {
			return nil, fmt.Errorf("%w: chunk %d (%s): vector length %d does not match batch dimensionality %d",
				ErrSchema, i, c.ID, len(c.Vector), dim)
		}

		b.IDs = append(b.IDs, c.ID)
		b.Texts = append(b.Texts, c.Text)
		b.Vectors = append(b.Vectors, c.Vector...)
		b.ChunkIndexes = append(b.ChunkIndexes, c.ChunkIndex)
		b.TextLengths = append(b.TextLengths, c.TextLength)
	}

	return b, nil
}

// Schema returns the layout this batch conforms to.
func (b *Batch) Schema() Schema {
	return b.schema
}

// NumRows returns the number of encoded chunks.
func (b *Batch) NumRows() int {
	return len(b.IDs)
}

// Dimensions returns the batch's vector width.
func (b *Batch) Dimensions() int {
	return b.schema.Dimensions()
}

// Vector returns row i's embedding as a stride slice of the flat buffer. The
// slice aliases the batch and must not be mutated.
func (b *Batch) Vector(i int) []float32 {
	d := b.schema.Dimensions()
	return b.Vectors[i*d : (i+1)*d]
}
