package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrCorruptIndex      = errors.New("corrupt index file")
)

const indexFormatVersion uint32 = 1

// Hit is one nearest-neighbor candidate: the insertion position of the vector
// and its inner-product score against the query.
type Hit struct {
	Position int
	Score    float32
}

// FlatIndex is an exact inner-product index over unit-normalized vectors.
// It is append-only: entries are never removed or reordered, so position i
// permanently identifies the i-th vector added.
type FlatIndex struct {
	dim     int
	vectors [][]float32
}

func NewFlatIndex() *FlatIndex {
	return &FlatIndex{}
}

// Count returns the number of indexed vectors.
func (x *FlatIndex) Count() int { return len(x.vectors) }

// Dimension returns the vector dimensionality, or 0 before the first Add.
func (x *FlatIndex) Dimension() int { return x.dim }

// Vector returns the stored vector at position, or nil when out of range.
func (x *FlatIndex) Vector(position int) []float32 {
	if position < 0 || position >= len(x.vectors) {
		return nil
	}
	return x.vectors[position]
}

// Add appends vectors in order. The first batch pins the index dimension.
func (x *FlatIndex) Add(vectors [][]float32) error {
	for _, v := range vectors {
		if x.dim == 0 {
			if len(v) == 0 {
				return fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
			}
			x.dim = len(v)
		}
		if len(v) != x.dim {
			return fmt.Errorf("%w: got %d, index holds %d", ErrDimensionMismatch, len(v), x.dim)
		}
	}
	x.vectors = append(x.vectors, vectors...)
	return nil
}

// Search returns up to k nearest neighbors by inner product, best first.
// Ties keep insertion order. An empty index yields an empty result.
func (x *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(x.vectors) == 0 {
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has %d, index holds %d", ErrDimensionMismatch, len(query), x.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	hits := make([]Hit, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = Hit{Position: i, Score: dot(v, query)}
	}

	// Stable sort over insertion-ordered hits keeps earlier positions first on ties.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Save writes the index as a little-endian binary blob: version, dimension,
// count, then the raw float32 data in insertion order.
func (x *FlatIndex) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header := []uint32{indexFormatVersion, uint32(x.dim), uint32(len(x.vectors))}
	for _, v := range header {
		if err := binary.Write(f, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	for _, vec := range x.vectors {
		if err := binary.Write(f, binary.LittleEndian, vec); err != nil {
			return err
		}
	}
	return nil
}

// Load replaces the index contents with the blob at path.
func (x *FlatIndex) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var version, dim, count uint32
	for _, p := range []*uint32{&version, &dim, &count} {
		if err := binary.Read(f, binary.LittleEndian, p); err != nil {
			return fmt.Errorf("%w: short header", ErrCorruptIndex)
		}
	}
	if version != indexFormatVersion {
		return fmt.Errorf("%w: unknown format version %d", ErrCorruptIndex, version)
	}
	if dim == 0 && count > 0 {
		return fmt.Errorf("%w: zero dimension with %d vectors", ErrCorruptIndex, count)
	}

	vectors := make([][]float32, 0, count)
	for i := uint32(0); i < count; i++ {
		vec := make([]float32, dim)
		if err := binary.Read(f, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("%w: truncated vector data", ErrCorruptIndex)
		}
		vectors = append(vectors, vec)
	}

	// Trailing bytes mean the header lied about the count.
	if _, err := f.Read(make([]byte, 1)); err != io.EOF {
		return fmt.Errorf("%w: trailing data", ErrCorruptIndex)
	}

	x.dim = int(dim)
	x.vectors = vectors
	return nil
}
