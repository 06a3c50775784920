package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ClaraUktar/pepti-map/internal/checkpoint"
	"github.com/ClaraUktar/pepti-map/internal/match"
	"github.com/ClaraUktar/pepti-map/internal/peptide"
	"github.com/ClaraUktar/pepti-map/internal/reads"
	"github.com/dustin/go-humanize"
	"github.com/fluhus/gostuff/sets"
)

const (
	// GroupReadsFile holds a group's reads as FASTA
	GroupReadsFile = "reads.fa"

	// GroupPeptidesFile holds the peptide lines of a group's clusters
	GroupPeptidesFile = "peptides.txt"
)

// group is the input of one merged group's output directory
type group struct {
	dir      string
	readIDs  []int
	peptides []string
}

// Groups writes a directory per merged group, <out>/<k>, with the group's
// reads and peptides. Directories are written by conf.Threads workers
func (p *Pipeline) Groups() error {
	if p.merged == nil {
		return fmt.Errorf("no merge result, run merge first")
	}
	start := time.Now()
	res := p.merged

	lines, err := peptide.Lines(p.PeptidePath)
	if err != nil {
		return err
	}
	mapping := p.Mapping()
	if len(lines) != len(mapping) {
		return fmt.Errorf("%w: %s has %d lines, the checkpointed mapping %d", match.ErrLengthMismatch, p.PeptidePath, len(lines), len(mapping))
	}
	clusterLines := map[int][]string{}
	for i, c := range mapping {
		if c >= 0 {
			clusterLines[c] = append(clusterLines[c], lines[i])
		}
	}

	// one pass over the read files for the reads of every group
	all := sets.Set[int]{}
	for _, s := range res.Sets {
		for id := range s {
			all.Add(id)
		}
	}
	found, err := reads.Retrieve(p.ReadPaths, p.conf.Cutoff, all)
	if err != nil {
		return err
	}
	seqs := make(map[int]string, len(found))
	for _, r := range found {
		seqs[r.ID] = r.Seq
	}

	groups := make(chan group)
	errs := make(chan error, p.conf.Threads)
	var wg sync.WaitGroup
	for w := 0; w < p.conf.Threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := range groups {
				if err := writeGroup(g, seqs); err != nil {
					select {
					case errs <- err:
					default:
					}
				}
			}
		}()
	}

	for k := range res.Sets {
		var peptides []string
		for _, c := range res.Mappings[k] {
			peptides = append(peptides, clusterLines[c]...)
		}
		groups <- group{
			dir:      p.outPath(strconv.Itoa(k)),
			readIDs:  match.SortedIDs(res.Sets[k]),
			peptides: peptides,
		}
	}
	close(groups)
	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return err
	}

	p.Log.Printf(
		"wrote %s groups with %s reads to %s in %s",
		humanize.Comma(int64(res.Len())),
		humanize.Comma(int64(len(found))),
		p.conf.Out,
		time.Since(start).Round(time.Millisecond),
	)
	return p.store.SaveStep(checkpoint.Grouped)
}

// writeGroup writes one group's directory. seqs is shared read-only
func writeGroup(g group, seqs map[int]string) error {
	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return fmt.Errorf("failed to create group dir: %w", err)
	}

	groupReads := make([]reads.Read, len(g.readIDs))
	for i, id := range g.readIDs {
		groupReads[i] = reads.Read{ID: id, Seq: seqs[id]}
	}
	if err := writeFile(filepath.Join(g.dir, GroupReadsFile), func(w *bufio.Writer) error {
		return reads.WriteFASTA(w, groupReads)
	}); err != nil {
		return err
	}

	return writeFile(filepath.Join(g.dir, GroupPeptidesFile), func(w *bufio.Writer) error {
		for _, line := range g.peptides {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeFile(path string, write func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
