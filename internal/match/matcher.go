// Package match finds the peptide clusters hit by translated RNA reads
package match

import (
	"errors"
	"fmt"
	"io"

	"github.com/ClaraUktar/pepti-map/internal/index"
	"github.com/ClaraUktar/pepti-map/internal/kmer"
)

// ErrLengthMismatch is returned when peptide sequences and the peptide to
// cluster mapping don't line up
var ErrLengthMismatch = errors.New("peptide sequences and cluster mapping differ in length")

// Matcher accumulates which reads match which peptide clusters. It is not
// safe for concurrent use
type Matcher struct {
	idx *index.Index

	// mapping is peptide line -> cluster id (-1 for excluded peptides)
	mapping []int

	// clusterPeptides is the inverse of mapping
	clusterPeptides [][]int

	// peptides maps k-mers to peptide lines, nil if every cluster is a
	// single peptide
	peptides *index.Index

	replaceIsoleucine bool

	matches *Table

	// perPeptide counts the distinct reads that hit each peptide
	perPeptide []int

	// scratch for one read: clusters and peptide lines hit, in order of
	// first hit
	hit         map[int]struct{}
	hitList     []int
	hitPeptide  map[int]struct{}
	hitPeptides []int
}

// NewMatcher returns a Matcher over an index and the peptide line to
// cluster mapping the index was built with
func NewMatcher(idx *index.Index, mapping []int, replaceIsoleucine bool) (*Matcher, error) {
	clusterPeptides := make([][]int, idx.NumClusters)
	for line, c := range mapping {
		if c < 0 {
			continue
		}
		if c >= idx.NumClusters {
			return nil, fmt.Errorf("peptide %d maps to cluster %d but the index has %d clusters", line, c, idx.NumClusters)
		}
		clusterPeptides[c] = append(clusterPeptides[c], line)
	}

	return &Matcher{
		idx:               idx,
		mapping:           mapping,
		clusterPeptides:   clusterPeptides,
		replaceIsoleucine: replaceIsoleucine,
		matches:           NewTable(idx.NumClusters),
		perPeptide:        make([]int, len(mapping)),
		hit:               make(map[int]struct{}),
		hitPeptide:        make(map[int]struct{}),
	}, nil
}

// SetPeptideIndex sets the k-mer to peptide line index used to count
// matches per peptide when clusters hold more than one peptide. Without
// it, every peptide of a hit cluster is counted
func (m *Matcher) SetPeptideIndex(peptides *index.Index) error {
	if peptides != nil && peptides.NumClusters != len(m.mapping) {
		return fmt.Errorf("%w: peptide index has %d peptides, mapping %d", ErrLengthMismatch, peptides.NumClusters, len(m.mapping))
	}
	m.peptides = peptides
	return nil
}

// AddMatches looks up every k-mer of the three frame translation of seq
// and records read against each cluster it hits
func (m *Matcher) AddMatches(read int, seq string) {
	m.addMatches(read, seq)
}

// addMatches returns the distinct clusters hit by the read. The slice
// is reused by the next call
func (m *Matcher) addMatches(read int, seq string) []int {
	clear(m.hit)
	m.hitList = m.hitList[:0]
	clear(m.hitPeptide)
	m.hitPeptides = m.hitPeptides[:0]

	for _, frame := range kmer.Translate(seq) {
		aa := frame.Seq
		if m.replaceIsoleucine {
			aa = kmer.ReplaceIsoleucine(aa)
		}
		kmer.ForEach(aa, m.idx.KmerLength, func(km string, _ int) {
			for _, c := range m.idx.Get(km) {
				m.matches.Add(c, read)
				if _, seen := m.hit[c]; !seen {
					m.hit[c] = struct{}{}
					m.hitList = append(m.hitList, c)
				}
			}
			if m.peptides == nil {
				return
			}
			for _, line := range m.peptides.Get(km) {
				if _, seen := m.hitPeptide[line]; !seen {
					m.hitPeptide[line] = struct{}{}
					m.hitPeptides = append(m.hitPeptides, line)
				}
			}
		})
	}

	if m.peptides != nil {
		for _, line := range m.hitPeptides {
			m.perPeptide[line]++
		}
		return m.hitList
	}
	for _, c := range m.hitList {
		for _, line := range m.clusterPeptides[c] {
			m.perPeptide[line]++
		}
	}
	return m.hitList
}

// Matches returns the match table. Callers must not modify it
func (m *Matcher) Matches() *Table {
	return m.matches
}

// PeptideCounts returns, per peptide line, the number of distinct reads
// that matched one of the peptide's own k-mers
func (m *Matcher) PeptideCounts() []int {
	return m.perPeptide
}

// Mapping returns the peptide line to cluster mapping
func (m *Matcher) Mapping() []int {
	return m.mapping
}

// Reset drops all matches and counts
func (m *Matcher) Reset() {
	m.matches = NewTable(m.idx.NumClusters)
	m.perPeptide = make([]int, len(m.mapping))
}

// WriteQuantReport writes one tab separated row per peptide line:
// sequence, cluster id, per-peptide read count, reads in the cluster
func (m *Matcher) WriteQuantReport(w io.Writer, peptides []string) error {
	if len(peptides) != len(m.mapping) {
		return fmt.Errorf("%w: %d sequences, %d mapped peptides", ErrLengthMismatch, len(peptides), len(m.mapping))
	}

	if _, err := fmt.Fprintln(w, "peptide\tcluster\tpeptide_matches\tcluster_matches"); err != nil {
		return err
	}
	for line, seq := range peptides {
		c := m.mapping[line]
		clusterMatches := 0
		if c >= 0 {
			clusterMatches = m.matches.Count(c)
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", seq, c, m.perPeptide[line], clusterMatches); err != nil {
			return err
		}
	}
	return nil
}
