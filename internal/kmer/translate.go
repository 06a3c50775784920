package kmer

import "strings"

// Frame is an amino acid translation of a read in one reading frame
type Frame struct {
	// Seq is the translated amino acid sequence
	Seq string

	// Number of the reading frame: 0, 1 or 2
	Number int
}

// standard genetic code, indexed by codonIndex
var codonTable = func() [64]byte {
	bases := "TCAG"
	aminoAcids := "FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG"

	var table [64]byte
	i := 0
	for _, b1 := range bases {
		for _, b2 := range bases {
			for _, b3 := range bases {
				idx, _ := codonIndex(byte(b1), byte(b2), byte(b3))
				table[idx] = aminoAcids[i]
				i++
			}
		}
	}
	return table
}()

// baseIndex returns the 2-bit code of a nucleotide and false if it isn't one
func baseIndex(b byte) (int, bool) {
	switch b {
	case 'T', 't', 'U', 'u':
		return 0, true
	case 'C', 'c':
		return 1, true
	case 'A', 'a':
		return 2, true
	case 'G', 'g':
		return 3, true
	}
	return 0, false
}

func codonIndex(b1, b2, b3 byte) (int, bool) {
	i1, ok1 := baseIndex(b1)
	i2, ok2 := baseIndex(b2)
	i3, ok3 := baseIndex(b3)
	return i1<<4 | i2<<2 | i3, ok1 && ok2 && ok3
}

// TranslateFrame translates seq[frame:], trimmed to a multiple of three,
// with the standard genetic code. Codons with ambiguous bases become X
func TranslateFrame(seq string, frame int) string {
	if frame >= len(seq) {
		return ""
	}
	seq = seq[frame:]
	seq = seq[:len(seq)-len(seq)%3]

	var sb strings.Builder
	sb.Grow(len(seq) / 3)
	for i := 0; i < len(seq); i += 3 {
		idx, ok := codonIndex(seq[i], seq[i+1], seq[i+2])
		if !ok {
			sb.WriteByte('X')
			continue
		}
		sb.WriteByte(codonTable[idx])
	}
	return sb.String()
}

// Translate returns the translations of seq in its three forward frames
func Translate(seq string) [3]Frame {
	var frames [3]Frame
	for f := range frames {
		frames[f] = Frame{Seq: TranslateFrame(seq, f), Number: f}
	}
	return frames
}
