package index

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	gzip "github.com/klauspost/pgzip"
)

// header keys, each written as a "# key=value" line
const (
	clustersKey = "n_peptides"
	kmerKey     = "k"
	sourceKey   = "source"
)

// Dump writes the index to a gzip compressed text file: header lines with
// the cluster count, the k-mer length and the source, then one
// "kmer<TAB>id;id;..." line per k-mer
func (idx *Index) Dump(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	w := bufio.NewWriter(gz)

	_, err = fmt.Fprintf(
		w, "# %s=%d\n# %s=%d\n# %s=%s\n",
		clustersKey, idx.NumClusters, kmerKey, idx.KmerLength, sourceKey, idx.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to write index header: %w", err)
	}

	kmers := make([]string, 0, len(idx.entries))
	for kmer := range idx.entries {
		kmers = append(kmers, kmer)
	}
	sort.Strings(kmers)

	for _, kmer := range kmers {
		ids := idx.entries[kmer]
		if len(ids) == 0 {
			continue
		}
		w.WriteString(kmer)
		w.WriteByte('\t')
		for i, id := range ids {
			if i > 0 {
				w.WriteByte(';')
			}
			w.WriteString(strconv.Itoa(id))
		}
		if err = w.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write index entry: %w", err)
		}
	}

	if err = w.Flush(); err != nil {
		return fmt.Errorf("failed to flush index file: %w", err)
	}
	if err = gz.Close(); err != nil {
		return fmt.Errorf("failed to compress index file: %w", err)
	}
	return f.Close()
}

// Load reads an index written by Dump. Without a k header, the k-mer
// length is taken from the first entry, and an index without entries
// keeps defaultK
func Load(path string, defaultK int) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress index file %s: %w", path, err)
	}
	defer gz.Close()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	idx := New(defaultK)
	seen := map[string]bool{}
	lineNum := 0
	line := ""
	for scanner.Scan() {
		lineNum++
		line = scanner.Text()
		if !strings.HasPrefix(line, "# ") {
			break
		}
		key, value, _ := strings.Cut(strings.TrimPrefix(line, "# "), "=")
		seen[key] = true
		switch key {
		case clustersKey:
			idx.NumClusters, err = strconv.Atoi(value)
		case kmerKey:
			idx.KmerLength, err = strconv.Atoi(value)
		case sourceKey:
			idx.Source = value
		}
		if err != nil {
			return nil, fmt.Errorf("index file %s line %d: bad %s: %w", path, lineNum, key, err)
		}
		line = ""
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read index file %s: %w", path, err)
	}
	if !seen[clustersKey] {
		return nil, fmt.Errorf("index file %s has no %s header", path, clustersKey)
	}

	first := !seen[kmerKey]
	// the first entry line was read by the header loop
	pending := line != ""
	for pending || scanner.Scan() {
		if !pending {
			lineNum++
			line = scanner.Text()
		}
		pending = false
		if line == "" {
			continue
		}

		kmer, values, found := strings.Cut(line, "\t")
		if !found {
			return nil, fmt.Errorf("index file %s line %d: missing tab", path, lineNum)
		}
		if first {
			idx.KmerLength = len(kmer)
			first = false
		}

		fields := strings.Split(values, ";")
		ids := make([]int, len(fields))
		for i, field := range fields {
			if ids[i], err = strconv.Atoi(field); err != nil {
				return nil, fmt.Errorf("index file %s line %d: %w", path, lineNum, err)
			}
		}
		idx.Extend(kmer, ids)
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read index file %s: %w", path, err)
	}

	return idx, nil
}
