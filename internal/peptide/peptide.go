// Package peptide reads peptide files and builds the k-mer index of their
// clusters.
//
// A peptide file has one peptide per line. If its first line contains a
// tab, every line is "peptide<TAB>protein group" and peptides of the same
// protein group form one cluster. Otherwise every peptide is its own
// cluster
package peptide

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ClaraUktar/pepti-map/internal/index"
	"github.com/ClaraUktar/pepti-map/internal/kmer"
)

// maxLine bounds the length of one peptide file line
const maxLine = 1 << 20

// Clusters is the result of indexing a peptide file
type Clusters struct {
	// Index from k-mers to cluster ids. Without an index built, it only
	// carries the cluster count and source
	Index *index.Index

	// Peptides maps k-mers to the peptide lines containing them. It is
	// only built for protein groups, otherwise cluster and line are
	// the same peptide
	Peptides *index.Index

	// Mapping is the cluster id of each peptide line, -1 for peptides
	// shorter than the k-mer length
	Mapping []int

	// ProteinGroups is true if the file had a protein group column
	ProteinGroups bool

	// Source fingerprints the peptide file contents together with the
	// settings that change the k-mers
	Source string
}

// NumClusters is the number of distinct clusters
func (c *Clusters) NumClusters() int {
	return c.Index.NumClusters
}

// Builder indexes peptide files
type Builder struct {
	// KmerLength of the index
	KmerLength int

	// ReplaceIsoleucine maps I to L before indexing
	ReplaceIsoleucine bool

	// MappingOnly skips the cluster k-mer index, for when it is loaded
	// from a cache
	MappingOnly bool
}

// Build reads the peptide file at path and indexes its clusters
func (b *Builder) Build(path string) (*Clusters, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open peptide file: %w", err)
	}
	defer f.Close()

	clusters, err := b.BuildFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read peptide file %s: %w", path, err)
	}
	return clusters, nil
}

// BuildFrom indexes the peptide lines read from r
func (b *Builder) BuildFrom(r io.Reader) (*Clusters, error) {
	if b.KmerLength < 1 {
		return nil, fmt.Errorf("invalid k-mer length %d", b.KmerLength)
	}

	c := &Clusters{Index: index.New(b.KmerLength)}
	groups := map[[sha256.Size]byte]int{}

	source := sha256.New()
	scanner := newScanner(io.TeeReader(r, source))
	for line := 0; scanner.Scan(); line++ {
		text := scanner.Text()
		if line == 0 {
			c.ProteinGroups = strings.Contains(text, "\t")
			if c.ProteinGroups {
				c.Peptides = index.New(b.KmerLength)
			}
		}

		seq := text
		var group string
		if c.ProteinGroups {
			var ok bool
			seq, group, ok = strings.Cut(text, "\t")
			if !ok {
				return nil, fmt.Errorf("line %d has no protein group: %q", line+1, text)
			}
		}
		seq = strings.TrimSpace(seq)
		if len(seq) < b.KmerLength {
			c.Mapping = append(c.Mapping, -1)
			continue
		}

		id := c.Index.NumClusters
		if c.ProteinGroups {
			key := sha256.Sum256([]byte(strings.TrimSpace(group)))
			if existing, ok := groups[key]; ok {
				id = existing
			} else {
				groups[key] = id
				c.Index.NumClusters++
			}
		} else {
			c.Index.NumClusters++
		}
		c.Mapping = append(c.Mapping, id)

		if b.ReplaceIsoleucine {
			seq = kmer.ReplaceIsoleucine(seq)
		}
		kmer.ForEach(seq, b.KmerLength, func(k string, _ int) {
			if !b.MappingOnly {
				c.Index.Append(k, id, true)
			}
			if c.Peptides != nil {
				c.Peptides.Append(k, line, true)
			}
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if c.Peptides != nil {
		c.Peptides.NumClusters = len(c.Mapping)
	}
	fmt.Fprintf(source, "\x00k=%d replace-isoleucine=%t", b.KmerLength, b.ReplaceIsoleucine)
	c.Source = hex.EncodeToString(source.Sum(nil))
	c.Index.Source = c.Source
	return c, nil
}

// Lines returns every line of the peptide file at path, unmodified
func Lines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open peptide file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := newScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read peptide file %s: %w", path, err)
	}
	return lines, nil
}

// ReadSequences returns the trimmed peptide sequence of every line of the
// file at path, without protein groups, in line order
func ReadSequences(path string) ([]string, error) {
	lines, err := Lines(path)
	if err != nil {
		return nil, err
	}
	seqs := make([]string, len(lines))
	for i, line := range lines {
		seq, _, _ := strings.Cut(line, "\t")
		seqs[i] = strings.TrimSpace(seq)
	}
	return seqs, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	return scanner
}
