package match

import (
	"sort"

	"github.com/fluhus/gostuff/sets"
)

// Table holds, per peptide cluster, the set of read ids that matched it.
// A cluster no read has matched is absent, not empty
type Table struct {
	size int
	sets map[int]sets.Set[int]
}

// NewTable returns a table for clusters 0..size-1 with every entry absent
func NewTable(size int) *Table {
	return &Table{size: size, sets: make(map[int]sets.Set[int])}
}

// Len is the number of clusters the table covers, present or not
func (t *Table) Len() int {
	return t.size
}

// Get returns the read ids of cluster c and whether any read matched it
func (t *Table) Get(c int) (sets.Set[int], bool) {
	s, ok := t.sets[c]
	return s, ok
}

// Add records that read matched cluster c
func (t *Table) Add(c, read int) {
	s, ok := t.sets[c]
	if !ok {
		s = sets.Set[int]{}
		t.sets[c] = s
	}
	s.Add(read)
}

// Put replaces the entry of cluster c. An empty or nil set makes it absent
func (t *Table) Put(c int, reads sets.Set[int]) {
	if len(reads) == 0 {
		delete(t.sets, c)
		return
	}
	t.sets[c] = reads
}

// Count is the number of reads that matched cluster c, 0 if absent
func (t *Table) Count(c int) int {
	return len(t.sets[c])
}

// Present returns the ids of clusters with at least one match, ascending
func (t *Table) Present() []int {
	ids := make([]int, 0, len(t.sets))
	for c := range t.sets {
		ids = append(ids, c)
	}
	sort.Ints(ids)
	return ids
}

// Sorted returns the read ids of cluster c in ascending order
func (t *Table) Sorted(c int) []int {
	return SortedIDs(t.sets[c])
}

// SortedIDs returns the members of s in ascending order
func SortedIDs(s sets.Set[int]) []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
