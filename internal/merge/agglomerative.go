package merge

import (
	"github.com/ClaraUktar/pepti-map/internal/matrix"
	"github.com/ClaraUktar/pepti-map/internal/similarity"
	"github.com/fluhus/gostuff/clustering"
	"github.com/fluhus/gostuff/sets"
)

// agglomerative is single-linkage hierarchical clustering on the
// distance Scale - similarity, cut at Scale - threshold
type agglomerative struct {
	calc      similarity.Calculator
	threshold uint16
}

func (a *agglomerative) GenerateMergedResult(peptideIndexes []int, matches []sets.Set[int]) (Result, error) {
	if err := checkLengths(peptideIndexes, matches); err != nil {
		return Result{}, err
	}
	n := len(matches)
	if n < 2 {
		return singletons(peptideIndexes, matches), nil
	}
	sim, err := similarities(a.calc, n)
	if err != nil {
		return Result{}, err
	}

	dist := distances(sim)
	tree := clustering.Agglo(n, clustering.AggloMin, func(i, j int) float64 {
		return float64(dist.At(i, j))
	})
	cut := float64(similarity.Scale - a.threshold)
	return collect(cutTree(tree, n, cut), peptideIndexes, matches), nil
}

// cutTree returns the clusters of tree formed by the steps below cut,
// ordered by their smallest member
func cutTree(tree *clustering.AggloResult, n int, cut float64) [][]int {
	// a step joins the cluster named by C1 into the one named by C2 > C1
	into := make([]int, n)
	for i := range into {
		into[i] = i
	}
	for i := 0; i < tree.Len(); i++ {
		step := tree.Step(i)
		if step.D >= cut {
			break
		}
		into[step.C1] = step.C2
	}

	root := make([]int, n)
	for i := n - 1; i >= 0; i-- {
		root[i] = i
		if into[i] != i {
			root[i] = root[into[i]]
		}
	}

	group := map[int]int{}
	var groups [][]int
	for i, r := range root {
		k, ok := group[r]
		if !ok {
			k = len(groups)
			group[r] = k
			groups = append(groups, nil)
		}
		groups[k] = append(groups[k], i)
	}
	return groups
}

// distances is Scale - sim for every cell
func distances(sim *matrix.Square[uint16]) *matrix.Square[uint16] {
	n := sim.Size()
	dist := matrix.New[uint16](n)
	for i := 0; i < n; i++ {
		row := dist.Row(i)
		for j, s := range sim.Row(i) {
			if s > similarity.Scale {
				s = similarity.Scale
			}
			row[j] = similarity.Scale - s
		}
	}
	return dist
}
