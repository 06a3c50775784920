// Package kmer translates nucleotide reads into amino acids and splits
// amino acid sequences into fixed length k-mers
package kmer

import (
	"strings"
)

// Stop is the symbol emitted for a stop codon
const Stop = '*'

// DefaultLength is the k-mer length used when none is configured
const DefaultLength = 7

// Kmer is a single k-mer and its offset in the sequence it was cut from
type Kmer struct {
	// Seq of the k-mer
	Seq string

	// Offset is the zero-based start of Seq in its parent sequence
	Offset int
}

// ForEach calls fn with every k-mer of length k in seq. K-mers that
// contain a stop symbol are skipped
func ForEach(seq string, k int, fn func(kmer string, offset int)) {
	if k < 1 || len(seq) < k {
		return
	}

	// index of the last stop symbol seen at or before the window's end
	lastStop := -1
	for i := 0; i < k-1; i++ {
		if seq[i] == Stop {
			lastStop = i
		}
	}

	for end := k - 1; end < len(seq); end++ {
		if seq[end] == Stop {
			lastStop = end
		}
		start := end - k + 1
		if lastStop >= start {
			continue
		}
		fn(seq[start:end+1], start)
	}
}

// Split returns every stop-free k-mer of length k in seq
func Split(seq string, k int) (kmers []Kmer) {
	ForEach(seq, k, func(kmer string, offset int) {
		kmers = append(kmers, Kmer{Seq: kmer, Offset: offset})
	})
	return
}

// ReplaceIsoleucine maps I to L. The two have the same mass and
// can't be told apart by mass spectrometry
func ReplaceIsoleucine(seq string) string {
	return strings.ReplaceAll(seq, "I", "L")
}
