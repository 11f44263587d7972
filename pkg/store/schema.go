package store

import "fmt"

// DefaultDimensions is the vector width used when an empty batch creates a
// table and nothing else pins the dimensionality.
const DefaultDimensions = 384

// FieldType enumerates the column types a document table carries.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInt32
	FieldFloat32Vector
)

// Field is one column of a document table's layout.
type Field struct {
	Name     string
	Type     FieldType
	Nullable bool

	// Width is the fixed vector length for FieldFloat32Vector columns,
	// zero otherwise.
	Width int
}

// Schema is the five-column layout shared by every document table. The
// layout written must be the layout read back; backends verify it on open
// rather than coercing silently.
type Schema struct {
	fields []Field
}

// NewSchema returns the document-table layout for the given vector
// dimensionality: id, text, vector, chunk_index, text_length, in that order,
// all non-nullable.
func NewSchema(dim int) (Schema, error) {
	if dim <= 0 {
		return Schema{}, fmt.Errorf("%w: vector dimensionality must be positive, got %d", ErrSchema, dim)
	}
	return Schema{fields: []Field{
		{Name: "id", Type: FieldText},
		{Name: "text", Type: FieldText},
		{Name: "vector", Type: FieldFloat32Vector, Width: dim},
		{Name: "chunk_index", Type: FieldInt32},
		{Name: "text_length", Type: FieldInt32},
	}}, nil
}

// Fields returns the columns in table order.
func (s Schema) Fields() []Field {
	return s.fields
}

// Dimensions returns the fixed vector width of the vector column.
func (s Schema) Dimensions() int {
	for _, f := range s.fields {
		if f.Type == FieldFloat32Vector {
			return f.Width
		}
	}
	return 0
}

// Equal reports whether two schemas describe the same layout.
func (s Schema) Equal(other Schema) bool {
	if len(s.fields) != len(other.fields) {
		return false
	}
	for i, f := range s.fields {
		if f != other.fields[i] {
			return false
		}
	}
	return true
}
