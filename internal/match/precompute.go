package match

import (
	"github.com/ClaraUktar/pepti-map/internal/index"
	"github.com/ClaraUktar/pepti-map/internal/matrix"
)

// PrecomputingMatcher is a Matcher that also counts, for every pair of
// clusters, the reads that hit both. This costs O(C^2) memory and makes
// exact Jaccard indexes free to compute later
type PrecomputingMatcher struct {
	*Matcher

	intersections *matrix.Square[uint32]
}

// NewPrecomputingMatcher returns a PrecomputingMatcher, see NewMatcher
func NewPrecomputingMatcher(idx *index.Index, mapping []int, replaceIsoleucine bool) (*PrecomputingMatcher, error) {
	m, err := NewMatcher(idx, mapping, replaceIsoleucine)
	if err != nil {
		return nil, err
	}
	return &PrecomputingMatcher{
		Matcher:       m,
		intersections: matrix.New[uint32](idx.NumClusters),
	}, nil
}

// AddMatches records the read's matches and adds one to the intersection
// count of every pair of distinct clusters it hit
func (m *PrecomputingMatcher) AddMatches(read int, seq string) {
	hit := m.addMatches(read, seq)
	for a := 0; a < len(hit); a++ {
		for b := a + 1; b < len(hit); b++ {
			matrix.Inc(m.intersections, hit[a], hit[b])
			matrix.Inc(m.intersections, hit[b], hit[a])
		}
	}
}

// Intersections returns the intersection matrix with its diagonal set to
// each cluster's current match count. The matrix aliases internal state
func (m *PrecomputingMatcher) Intersections() *matrix.Square[uint32] {
	for c := 0; c < m.intersections.Size(); c++ {
		m.intersections.Set(c, c, uint32(m.matches.Count(c)))
	}
	return m.intersections
}

// Reset drops all matches, counts and intersections
func (m *PrecomputingMatcher) Reset() {
	m.Matcher.Reset()
	m.intersections = matrix.New[uint32](m.idx.NumClusters)
}
