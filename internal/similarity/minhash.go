package similarity

import (
	"encoding/binary"

	"github.com/ClaraUktar/pepti-map/internal/matrix"
	"github.com/fluhus/gostuff/minhash"
	"github.com/fluhus/gostuff/sets"
	"github.com/spaolacci/murmur3"
)

// DefaultSketchSize is the number of hashes kept per sketch
const DefaultSketchSize = 128

// MinHash estimates Jaccard indexes from one bottom-k sketch per cluster
type MinHash struct {
	// Workers filling the matrix, GOMAXPROCS if < 1
	Workers int

	sketches []*minhash.MinHash[uint64]
}

// NewMinHash sketches every read set with size hashes
func NewMinHash(readSets []sets.Set[int], size int) *MinHash {
	if size < 1 {
		size = DefaultSketchSize
	}
	sketches := make([]*minhash.MinHash[uint64], len(readSets))
	parallelRows(len(readSets), 0, func(i int) {
		sketches[i] = sketch(readSets[i], size)
	})
	return &MinHash{sketches: sketches}
}

// sketch hashes each read id, as 8 big-endian bytes, into a sorted sketch
func sketch(reads sets.Set[int], size int) *minhash.MinHash[uint64] {
	mh := minhash.New[uint64](size)
	var buf [8]byte
	for read := range reads {
		binary.BigEndian.PutUint64(buf[:], uint64(read))
		mh.Push(murmur3.Sum64(buf[:]))
	}
	mh.Sort()
	return mh
}

// Similarity of clusters i and j. A cluster is always fully similar
// to itself
func (mh *MinHash) Similarity(i, j int) uint16 {
	if i == j {
		return Scale
	}
	return ToFixed(mh.sketches[i].Jaccard(mh.sketches[j]))
}

// Matrix of all similarities. The estimate is symmetric, so only the
// upper triangle is computed and then mirrored
func (mh *MinHash) Matrix() *matrix.Square[uint16] {
	n := len(mh.sketches)
	m := matrix.New[uint16](n)
	parallelRows(n, mh.Workers, func(i int) {
		m.Set(i, i, Scale)
		for j := i + 1; j < n; j++ {
			s := mh.Similarity(i, j)
			m.Set(i, j, s)
			m.Set(j, i, s)
		}
	})
	return m
}
