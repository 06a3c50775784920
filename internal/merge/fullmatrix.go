package merge

import (
	"github.com/ClaraUktar/pepti-map/internal/matrix"
	"github.com/ClaraUktar/pepti-map/internal/similarity"
	"github.com/fluhus/gostuff/sets"
)

// fullMatrix groups the connected components of the graph whose edges
// are the pairs with similarity > threshold
type fullMatrix struct {
	calc      similarity.Calculator
	threshold uint16
}

func (f *fullMatrix) GenerateMergedResult(peptideIndexes []int, matches []sets.Set[int]) (Result, error) {
	if err := checkLengths(peptideIndexes, matches); err != nil {
		return Result{}, err
	}
	n := len(matches)
	if n < 2 {
		return singletons(peptideIndexes, matches), nil
	}
	sim, err := similarities(f.calc, n)
	if err != nil {
		return Result{}, err
	}
	ind := indicator(sim, f.threshold)

	visited := make([]bool, n)
	var groups [][]int
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		var group []int
		stack := []int{i}
		for len(stack) > 0 {
			row := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			group = append(group, row)

			for j, linked := range ind.Row(row) {
				if linked && !visited[j] {
					visited[j] = true
					stack = append(stack, j)
				}
			}
		}
		groups = append(groups, group)
	}
	return collect(groups, peptideIndexes, matches), nil
}

// indicator marks the pairs to merge. The diagonal is always set
func indicator(sim *matrix.Square[uint16], threshold uint16) *matrix.Square[bool] {
	n := sim.Size()
	ind := matrix.New[bool](n)
	for i := 0; i < n; i++ {
		row := ind.Row(i)
		for j, s := range sim.Row(i) {
			row[j] = i == j || s > threshold
		}
	}
	return ind
}
