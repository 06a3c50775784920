// Package merge joins peptide clusters whose read sets are similar enough
// into groups that can be assembled together
package merge

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ClaraUktar/pepti-map/internal/match"
	"github.com/ClaraUktar/pepti-map/internal/matrix"
	"github.com/ClaraUktar/pepti-map/internal/similarity"
	"github.com/fluhus/gostuff/sets"
)

// ErrLengthMismatch is returned when cluster ids and read sets handed to a
// Merger are not index aligned
var ErrLengthMismatch = errors.New("peptide indexes and match sets differ in length")

// Method is a merge strategy
type Method int

const (
	// Agglomerative is single-linkage clustering cut at a distance threshold
	Agglomerative Method = iota

	// FullMatrix flood fills a boolean similarity indicator matrix
	FullMatrix
)

// String returns the name a Method is configured by
func (m Method) String() string {
	switch m {
	case FullMatrix:
		return "full-matrix"
	case Agglomerative:
		return "agglomerative-clustering"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod resolves a configured method name
func ParseMethod(name string) (Method, error) {
	switch name {
	case "full-matrix":
		return FullMatrix, nil
	case "agglomerative-clustering":
		return Agglomerative, nil
	default:
		return 0, fmt.Errorf("unknown merge method %q, use full-matrix or agglomerative-clustering", name)
	}
}

// Result is the outcome of a merge. Sets[k] is the union of the read ids
// of the clusters in Mappings[k]
type Result struct {
	Sets     []sets.Set[int]
	Mappings [][]int
}

// Len is the number of merged groups
func (r Result) Len() int {
	return len(r.Sets)
}

// Merger merges clusters. peptideIndexes[i] is the original cluster id
// of matches[i], and the Merger's similarity calculator must be indexed
// the same way
type Merger interface {
	GenerateMergedResult(peptideIndexes []int, matches []sets.Set[int]) (Result, error)
}

// New returns the Merger for method. Clusters are merged when their
// similarity is strictly greater than threshold
func New(method Method, calc similarity.Calculator, threshold uint16) (Merger, error) {
	switch method {
	case FullMatrix:
		return &fullMatrix{calc: calc, threshold: threshold}, nil
	case Agglomerative:
		return &agglomerative{calc: calc, threshold: threshold}, nil
	default:
		return nil, fmt.Errorf("unknown merge method %v", method)
	}
}

// Prepare drops the clusters of table that no read matched. It returns the
// original ids of the surviving clusters, ascending, and their read sets.
// If intersections is not nil, it is reduced to the surviving rows and
// columns in the same order
func Prepare(table *match.Table, intersections *matrix.Square[uint32]) ([]int, []sets.Set[int], *matrix.Square[uint32]) {
	ids := table.Present()
	readSets := make([]sets.Set[int], len(ids))
	for i, c := range ids {
		readSets[i], _ = table.Get(c)
	}
	if intersections != nil {
		intersections = intersections.Keep(ids)
	}
	return ids, readSets, intersections
}

func checkLengths(peptideIndexes []int, matches []sets.Set[int]) error {
	if len(peptideIndexes) != len(matches) {
		return fmt.Errorf("%w: %d peptide indexes, %d match sets", ErrLengthMismatch, len(peptideIndexes), len(matches))
	}
	return nil
}

// singletons is the result for fewer than two clusters: every cluster
// is its own group
func singletons(peptideIndexes []int, matches []sets.Set[int]) Result {
	var res Result
	for i, c := range peptideIndexes {
		res.Sets = append(res.Sets, matches[i])
		res.Mappings = append(res.Mappings, []int{c})
	}
	return res
}

// similarities returns calc's matrix, checking it covers n clusters
func similarities(calc similarity.Calculator, n int) (*matrix.Square[uint16], error) {
	sim := calc.Matrix()
	if sim.Size() != n {
		return nil, fmt.Errorf("%w: similarity matrix covers %d clusters, got %d match sets", ErrLengthMismatch, sim.Size(), n)
	}
	return sim, nil
}

// collect builds the result from groups of dense positions. Groups are
// ordered by their smallest member and each mapping is ascending
func collect(groups [][]int, peptideIndexes []int, matches []sets.Set[int]) Result {
	for _, g := range groups {
		sort.Ints(g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })

	res := Result{
		Sets:     make([]sets.Set[int], len(groups)),
		Mappings: make([][]int, len(groups)),
	}
	for k, g := range groups {
		union := sets.Set[int]{}
		mapping := make([]int, len(g))
		for i, pos := range g {
			for read := range matches[pos] {
				union.Add(read)
			}
			mapping[i] = peptideIndexes[pos]
		}
		sort.Ints(mapping)
		res.Sets[k] = union
		res.Mappings[k] = mapping
	}
	return res
}
