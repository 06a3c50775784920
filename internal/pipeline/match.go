package pipeline

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ClaraUktar/pepti-map/internal/checkpoint"
	"github.com/ClaraUktar/pepti-map/internal/index"
	"github.com/ClaraUktar/pepti-map/internal/match"
	"github.com/ClaraUktar/pepti-map/internal/peptide"
	"github.com/ClaraUktar/pepti-map/internal/reads"
	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
)

// readMatcher is a match.Matcher with or without intersection counting
type readMatcher interface {
	AddMatches(read int, seq string)
	SetPeptideIndex(peptides *index.Index) error
	Matches() *match.Table
	WriteQuantReport(w io.Writer, peptides []string) error
}

// Match translates every read and matches its k-mers against the index,
// then writes the quant report and checkpoints the matches
func (p *Pipeline) Match() error {
	if p.clusters == nil || p.clusters.Index == nil {
		return fmt.Errorf("no peptide index, run index first")
	}
	start := time.Now()

	var m readMatcher
	var pm *match.PrecomputingMatcher
	var err error
	if p.conf.PrecomputeIntersections {
		pm, err = match.NewPrecomputingMatcher(p.clusters.Index, p.clusters.Mapping, p.conf.ReplaceIsoleucine)
		m = pm
	} else {
		m, err = match.NewMatcher(p.clusters.Index, p.clusters.Mapping, p.conf.ReplaceIsoleucine)
	}
	if err != nil {
		return err
	}
	if err := m.SetPeptideIndex(p.clusters.Peptides); err != nil {
		return err
	}

	opts := reads.Options{Cutoff: p.conf.Cutoff}
	var bar *pb.ProgressBar
	if p.Progress {
		total, err := totalSize(p.ReadPaths)
		if err != nil {
			return err
		}
		bar = pb.Full.Start64(total)
		bar.Set(pb.Bytes, true)
		bar.SetWriter(os.Stderr)
		opts.Wrap = func(r io.Reader) io.Reader { return bar.NewProxyReader(r) }
	}

	var count int64
	err = reads.Each(p.ReadPaths, opts, func(r reads.Read) error {
		m.AddMatches(r.ID, r.Seq)
		count++
		return nil
	})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	p.matches = m.Matches()
	if pm != nil {
		p.intersections = pm.Intersections()
	}
	p.Log.Printf(
		"matched %s reads to %s of %s clusters in %s",
		humanize.Comma(count),
		humanize.Comma(int64(len(p.matches.Present()))),
		humanize.Comma(int64(p.matches.Len())),
		time.Since(start).Round(time.Millisecond),
	)

	if err := p.writeQuant(m); err != nil {
		return err
	}
	if err := p.store.SaveMatches(p.matches); err != nil {
		return err
	}
	if p.intersections != nil {
		if err := p.store.SaveIntersections(p.intersections); err != nil {
			return err
		}
	}
	return p.store.SaveStep(checkpoint.Matched)
}

// writeQuant writes the per-peptide match counts to QuantFile
func (p *Pipeline) writeQuant(m readMatcher) error {
	seqs, err := peptide.ReadSequences(p.PeptidePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p.conf.Out, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	path := p.outPath(QuantFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create quant report: %w", err)
	}
	defer f.Close()

	if err := m.WriteQuantReport(f, seqs); err != nil {
		return fmt.Errorf("failed to write quant report %s: %w", path, err)
	}
	return f.Close()
}

// totalSize is the summed size in bytes of the files at paths
func totalSize(paths []string) (int64, error) {
	var total int64
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return 0, fmt.Errorf("failed to read reads: %w", err)
		}
		total += info.Size()
	}
	return total, nil
}
