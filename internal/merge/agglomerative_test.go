package merge

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/ClaraUktar/pepti-map/internal/matrix"
	"github.com/ClaraUktar/pepti-map/internal/similarity"
	"github.com/fluhus/gostuff/clustering"
	"github.com/fluhus/gostuff/sets"
)

// fixedSimilarity serves a precomputed similarity matrix
type fixedSimilarity struct {
	m *matrix.Square[uint16]
}

func (f fixedSimilarity) Similarity(i, j int) uint16 { return f.m.At(i, j) }

func (f fixedSimilarity) Matrix() *matrix.Square[uint16] { return f.m }

// randomSimilarity is symmetric with a full diagonal. Values are coarse so
// that ties and values equal to a threshold are common
func randomSimilarity(rng *rand.Rand, n int) *matrix.Square[uint16] {
	m := matrix.New[uint16](n)
	for i := 0; i < n; i++ {
		m.Set(i, i, similarity.Scale)
		for j := i + 1; j < n; j++ {
			s := uint16(rng.Intn(21) * 500)
			m.Set(i, j, s)
			m.Set(j, i, s)
		}
	}
	return m
}

func TestAgglomerative_agreesWithFullMatrix(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 50; round++ {
		n := 2 + rng.Intn(15)
		sim := fixedSimilarity{randomSimilarity(rng, n)}
		matches := make([]sets.Set[int], n)
		for i := range matches {
			matches[i] = setOf(i)
		}

		for _, threshold := range []uint16{0, 4000, 7000, 8500, 9500, similarity.Scale} {
			full, err := New(FullMatrix, sim, threshold)
			if err != nil {
				t.Fatal(err)
			}
			agglo, err := New(Agglomerative, sim, threshold)
			if err != nil {
				t.Fatal(err)
			}
			want, err := full.GenerateMergedResult(positions(n), matches)
			if err != nil {
				t.Fatal(err)
			}
			got, err := agglo.GenerateMergedResult(positions(n), matches)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got.Mappings, want.Mappings) {
				t.Fatalf("round %d, threshold %d: agglomerative %v, full matrix %v", round, threshold, got.Mappings, want.Mappings)
			}
		}
	}
}

func TestCutTree(t *testing.T) {
	// 0-1 at distance 1, 2-3 at 2, and the two pairs at 5
	d := [][]float64{
		{0, 1, 5, 6},
		{1, 0, 7, 8},
		{5, 7, 0, 2},
		{6, 8, 2, 0},
	}
	tree := clustering.Agglo(4, clustering.AggloMin, func(i, j int) float64 { return d[i][j] })

	tests := []struct {
		cut  float64
		want [][]int
	}{
		{1, [][]int{{0}, {1}, {2}, {3}}},
		{2, [][]int{{0, 1}, {2}, {3}}},
		{3, [][]int{{0, 1}, {2, 3}}},
		{5, [][]int{{0, 1}, {2, 3}}},
		{5.5, [][]int{{0, 1, 2, 3}}},
	}
	for _, tt := range tests {
		if got := cutTree(tree, 4, tt.cut); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("cutTree(%v) = %v, want %v", tt.cut, got, tt.want)
		}
	}
}
