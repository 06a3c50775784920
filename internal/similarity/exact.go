package similarity

import (
	"github.com/ClaraUktar/pepti-map/internal/matrix"
)

// Exact computes Jaccard indexes from a precomputed intersection matrix
// whose diagonal holds each cluster's read count
type Exact struct {
	// Workers filling the matrix, GOMAXPROCS if < 1
	Workers int

	intersections *matrix.Square[uint32]
}

// NewExact returns an Exact calculator over intersections
func NewExact(intersections *matrix.Square[uint32]) *Exact {
	return &Exact{intersections: intersections}
}

// Similarity of clusters i and j
func (e *Exact) Similarity(i, j int) uint16 {
	if i == j {
		return Scale
	}
	in := e.intersections
	return exact(in.At(i, j), in.At(i, i), in.At(j, j))
}

// Matrix of all similarities. Each row is filled independently
func (e *Exact) Matrix() *matrix.Square[uint16] {
	n := e.intersections.Size()
	m := matrix.New[uint16](n)
	parallelRows(n, e.Workers, func(i int) {
		row := m.Row(i)
		inter := e.intersections.Row(i)
		sizeI := inter[i]
		for j := range row {
			if i == j {
				row[j] = Scale
				continue
			}
			row[j] = exact(inter[j], sizeI, e.intersections.At(j, j))
		}
	})
	return m
}
