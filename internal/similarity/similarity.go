// Package similarity computes pairwise Jaccard indexes between the read
// sets of peptide clusters, exactly or from MinHash sketches.
//
// Values are fixed point: a Jaccard index j is stored as uint16(j*Scale),
// so thresholds compare as integers and never suffer float rounding
package similarity

import (
	"math"
	"runtime"
	"sync"

	"github.com/ClaraUktar/pepti-map/internal/matrix"
	"github.com/fluhus/gostuff/sets"
)

// Scale is the fixed point factor of every similarity value
const Scale = 10000

// Calculator computes the similarity of clusters by their dense index
type Calculator interface {
	// Similarity of clusters i and j, scaled by Scale
	Similarity(i, j int) uint16

	// Matrix of all pairwise similarities, scaled by Scale
	Matrix() *matrix.Square[uint16]
}

// Jaccard is |a ∩ b| / |a ∪ b|, 0 if either set is empty
func Jaccard(a, b sets.Set[int]) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	inter := 0
	for x := range a {
		if _, ok := b[x]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

// ToFixed converts a Jaccard index in [0, 1] to its fixed point value
func ToFixed(j float64) uint16 {
	if j <= 0 {
		return 0
	}
	if j >= 1 {
		return Scale
	}
	return uint16(math.Round(j * Scale))
}

// exact is the fixed point Jaccard index from an intersection and set sizes.
// It truncates, so it never exceeds the true value
func exact(inter, sizeA, sizeB uint32) uint16 {
	union := uint64(sizeA) + uint64(sizeB) - uint64(inter)
	if union == 0 {
		return 0
	}
	return uint16(uint64(inter) * Scale / union)
}

// Intersections counts the common members of every pair of sets. The
// diagonal holds each set's size
func Intersections(readSets []sets.Set[int]) *matrix.Square[uint32] {
	m := matrix.New[uint32](len(readSets))
	parallelRows(len(readSets), 0, func(i int) {
		m.Set(i, i, uint32(len(readSets[i])))
		for j := i + 1; j < len(readSets); j++ {
			a, b := readSets[i], readSets[j]
			if len(b) < len(a) {
				a, b = b, a
			}
			var inter uint32
			for x := range a {
				if _, ok := b[x]; ok {
					inter++
				}
			}
			m.Set(i, j, inter)
			m.Set(j, i, inter)
		}
	})
	return m
}

// parallelRows calls fn for every row in [0, n) on up to workers
// goroutines (GOMAXPROCS if workers < 1). fn must only write cells it
// owns: row i, or the mirrored cells (j, i) for j > i
func parallelRows(n, workers int, fn func(i int)) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	rows := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rows {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		rows <- i
	}
	close(rows)
	wg.Wait()
}
