// Package index is an inverted index from amino acid k-mers to the ids of
// the peptide clusters that contain them
package index

// Index maps k-mers to ordered lists of peptide cluster ids
type Index struct {
	// KmerLength is the length of every k-mer in the index
	KmerLength int

	// NumClusters is the number of peptide clusters (ids 0..NumClusters-1)
	NumClusters int

	// Source identifies the input the index was built from. A cached
	// index is only reused for the same source
	Source string

	entries map[string][]int
}

// New returns an empty index for k-mers of length k
func New(k int) *Index {
	return &Index{
		KmerLength: k,
		entries:    make(map[string][]int),
	}
}

// Get returns the cluster ids stored for kmer, or nil if there are none
func (idx *Index) Get(kmer string) []int {
	return idx.entries[kmer]
}

// Append adds a cluster id to the entry for kmer. With dedupe, the id isn't
// added if it's already in the entry
func (idx *Index) Append(kmer string, id int, dedupe bool) {
	ids := idx.entries[kmer]
	if dedupe {
		for _, existing := range ids {
			if existing == id {
				return
			}
		}
	}
	idx.entries[kmer] = append(ids, id)
}

// Extend appends ids to the entry for kmer without deduplication
func (idx *Index) Extend(kmer string, ids []int) {
	idx.entries[kmer] = append(idx.entries[kmer], ids...)
}

// Clear removes every entry. KmerLength is kept
func (idx *Index) Clear() {
	idx.entries = make(map[string][]int)
	idx.NumClusters = 0
	idx.Source = ""
}

// Len is the number of distinct k-mers in the index
func (idx *Index) Len() int {
	return len(idx.entries)
}
