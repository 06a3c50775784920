// Package reads streams RNA-seq reads from FASTQ files and writes read
// sets as FASTA.
//
// Reads come from one file (single-end) or two (paired-end). The second
// file's reads are reverse complemented so both mates share a strand. A
// read's id encodes its 1-based record number and its file: number*10+file
package reads

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	gzip "github.com/klauspost/pgzip"
)

// ErrFileCount is returned for anything but one or two read files
var ErrFileCount = errors.New("expected one file (single-end) or two files (paired-end) of reads")

// maxLine bounds the length of a FASTQ line
const maxLine = 1 << 20

// Read is a single RNA-seq read
type Read struct {
	// ID from EncodeID
	ID int

	// Seq is the nucleotide sequence after cutoff and reverse complement
	Seq string
}

// EncodeID returns the id of the number'th record (1-based) of file 1 or 2
func EncodeID(number, file int) int {
	return number*10 + file
}

// DecodeID splits an id into its record number and file
func DecodeID(id int) (number, file int) {
	return id / 10, id % 10
}

// Options for reading
type Options struct {
	// Cutoff truncates every read to its first Cutoff bases if > 0
	Cutoff int

	// Wrap, if set, wraps each opened file before decompression. It's
	// meant for progress reporting
	Wrap func(r io.Reader) io.Reader
}

// Each calls fn with every read of paths, in file order. It stops at the
// first error returned by fn
func Each(paths []string, opts Options, fn func(Read) error) error {
	if len(paths) < 1 || len(paths) > 2 {
		return fmt.Errorf("%w, got %d", ErrFileCount, len(paths))
	}
	for i, path := range paths {
		file := i + 1
		err := eachRecord(path, opts.Wrap, func(number int, seq string) error {
			return fn(Read{ID: EncodeID(number, file), Seq: process(seq, opts.Cutoff, file == 2)})
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// process applies the cutoff, then the reverse complement for mates
func process(seq string, cutoff int, reverse bool) string {
	if cutoff > 0 && len(seq) > cutoff {
		seq = seq[:cutoff]
	}
	if reverse {
		seq = ReverseComplement(seq)
	}
	return seq
}

// eachRecord calls fn with the 1-based number and the sequence line of
// every 4 line FASTQ record in path
func eachRecord(path string, wrap func(io.Reader) io.Reader, fn func(number int, seq string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open reads: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if wrap != nil {
		r = wrap(r)
	}
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("failed to read gzipped reads %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	line, number := 0, 0
	var seq string
	for scanner.Scan() {
		text := scanner.Text()
		switch line % 4 {
		case 0:
			if strings.TrimSpace(text) == "" {
				// blank lines between records
				continue
			}
		case 1:
			seq = strings.TrimSpace(text)
		case 3:
			number++
			if err := fn(number, seq); err != nil {
				return err
			}
		}
		line++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if line%4 != 0 {
		return fmt.Errorf("truncated FASTQ record %d in %s", number+1, path)
	}
	return nil
}

var complements = func() [256]byte {
	var c [256]byte
	for i := range c {
		c[i] = byte(i)
	}
	pairs := []string{"AT", "CG", "UA", "RY", "KM", "BV", "DH", "SS", "WW", "NN"}
	for _, p := range pairs {
		a, b := p[0], p[1]
		c[a], c[a+'a'-'A'] = b, b+'a'-'A'
		if a != 'U' {
			c[b], c[b+'a'-'A'] = a, a+'a'-'A'
		}
	}
	return c
}()

// ReverseComplement of a nucleotide sequence. IUPAC codes are complemented,
// case is kept, and U complements to A
func ReverseComplement(seq string) string {
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		out[len(seq)-1-i] = complements[seq[i]]
	}
	return string(out)
}
