// Package pipeline runs the steps of a pepti-map run: index the peptides,
// match reads against them, merge similar clusters and write each merged
// group's assembly inputs. Every step checkpoints its result so a run
// can resume after the last completed step
package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ClaraUktar/pepti-map/config"
	"github.com/ClaraUktar/pepti-map/internal/checkpoint"
	"github.com/ClaraUktar/pepti-map/internal/index"
	"github.com/ClaraUktar/pepti-map/internal/match"
	"github.com/ClaraUktar/pepti-map/internal/matrix"
	"github.com/ClaraUktar/pepti-map/internal/merge"
	"github.com/ClaraUktar/pepti-map/internal/peptide"
	"github.com/ClaraUktar/pepti-map/internal/similarity"
	"github.com/dustin/go-humanize"
)

// stderr is for logging to stderr without a timestamp
var stderr = log.New(os.Stderr, "", 0)

// QuantFile is the name of the per-peptide match report in the output dir
const QuantFile = "quant.tsv"

// Pipeline holds the state of one run. It is not safe for concurrent use
type Pipeline struct {
	// PeptidePath is the peptide file
	PeptidePath string

	// ReadPaths are one or two FASTQ files
	ReadPaths []string

	// Progress shows a progress bar while matching
	Progress bool

	// Log receives progress messages
	Log *log.Logger

	conf  *config.Config
	store *checkpoint.Store

	clusters      *peptide.Clusters
	matches       *match.Table
	intersections *matrix.Square[uint32]
	merged        *merge.Result
}

// New returns a Pipeline writing checkpoints to conf.TempDir
func New(conf *config.Config, peptidePath string, readPaths []string) (*Pipeline, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	store, err := checkpoint.New(conf.TempDir)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		PeptidePath: peptidePath,
		ReadPaths:   readPaths,
		Log:         stderr,
		conf:        conf,
		store:       store,
	}, nil
}

// Run executes every step. With resume, steps completed by an earlier run
// with the same settings are loaded from their checkpoints instead
func (p *Pipeline) Run(resume bool) error {
	last := checkpoint.None
	if resume {
		var err error
		if last, err = p.resumeFrom(); err != nil {
			return err
		}
	} else if _, err := p.store.Begin(p.conf.Settings()); err != nil {
		return err
	}

	// the index isn't checkpointed, so resuming before merge rebuilds it
	if last < checkpoint.Matched {
		if err := p.Index(); err != nil {
			return err
		}
		if err := p.Match(); err != nil {
			return err
		}
	}
	if last < checkpoint.Merged {
		if err := p.Merge(); err != nil {
			return err
		}
	}
	if last < checkpoint.Grouped {
		if err := p.Groups(); err != nil {
			return err
		}
	}
	if last == checkpoint.Grouped {
		p.Log.Printf("run in %s already completed", p.store.Dir())
	}
	return nil
}

// resumeFrom returns the last completed step of the checkpointed run and
// loads the state later steps need
func (p *Pipeline) resumeFrom() (checkpoint.Step, error) {
	manifest, err := p.store.Manifest()
	if errors.Is(err, fs.ErrNotExist) {
		p.Log.Printf("no run to resume in %s, starting a new one", p.store.Dir())
		_, err = p.store.Begin(p.conf.Settings())
		return checkpoint.None, err
	}
	if err != nil {
		return checkpoint.None, corrupt(p.store.Dir(), err)
	}
	if err := p.checkSettings(manifest); err != nil {
		return checkpoint.None, err
	}

	last := manifest.LastStep
	p.Log.Printf("resuming run %s after step %q", manifest.RunID, last)
	switch {
	case last >= checkpoint.Merged:
		err = p.loadMerged()
	case last >= checkpoint.Matched:
		err = p.loadMatched()
	}
	if err != nil {
		return checkpoint.None, corrupt(p.store.Dir(), err)
	}
	return last, nil
}

// matchSettings are the settings that change the checkpointed matches
var matchSettings = []string{"kmer-length", "replace-isoleucine", "precompute-intersections", "cutoff"}

// checkSettings fails if the checkpointed run used other values for keys,
// or for any setting if no keys are given
func (p *Pipeline) checkSettings(manifest *checkpoint.Manifest, keys ...string) error {
	settings := p.conf.Settings()
	if len(keys) == 0 {
		for key := range settings {
			keys = append(keys, key)
		}
		sort.Strings(keys)
	}
	for _, key := range keys {
		want := settings[key]
		if got, ok := manifest.Settings[key]; ok && got != want {
			return fmt.Errorf("run %s used %s=%s, not %s: start a new run or use the same settings", manifest.RunID, key, got, want)
		}
	}
	return nil
}

func corrupt(dir string, err error) error {
	return fmt.Errorf("failed to load checkpoint in %s, start a new run without resume: %w", dir, err)
}

// Index builds the peptide k-mer index, or loads it from the index cache,
// and checkpoints the peptide to cluster mapping
func (p *Pipeline) Index() error {
	start := time.Now()
	if p.loadCachedIndex() {
		p.Log.Printf("loaded index of %s k-mers from %s", humanize.Comma(int64(p.clusters.Index.Len())), p.conf.IndexCache)
	} else {
		b := &peptide.Builder{KmerLength: p.conf.KmerLength, ReplaceIsoleucine: p.conf.ReplaceIsoleucine}
		clusters, err := b.Build(p.PeptidePath)
		if err != nil {
			return err
		}
		p.clusters = clusters

		if p.conf.IndexCache != "" {
			if err := clusters.Index.Dump(p.conf.IndexCache); err != nil {
				return err
			}
		}
		p.Log.Printf(
			"indexed %s peptides in %s clusters, %s k-mers, in %s",
			humanize.Comma(int64(len(clusters.Mapping))),
			humanize.Comma(int64(clusters.NumClusters())),
			humanize.Comma(int64(clusters.Index.Len())),
			time.Since(start).Round(time.Millisecond),
		)
	}

	if err := p.store.SaveMapping(p.clusters.Mapping); err != nil {
		return err
	}
	return p.store.SaveStep(checkpoint.Indexed)
}

// loadCachedIndex reads the index cache. The peptide file is scanned
// anyway for its mapping, which the cache doesn't hold, and for the
// fingerprint of its contents and settings. A cache built from other
// peptides or settings is ignored
func (p *Pipeline) loadCachedIndex() bool {
	if p.conf.IndexCache == "" {
		return false
	}
	idx, err := index.Load(p.conf.IndexCache, p.conf.KmerLength)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			p.Log.Printf("ignoring index cache: %v", err)
		}
		return false
	}

	b := &peptide.Builder{
		KmerLength:        p.conf.KmerLength,
		ReplaceIsoleucine: p.conf.ReplaceIsoleucine,
		MappingOnly:       true,
	}
	clusters, err := b.Build(p.PeptidePath)
	if err != nil {
		return false
	}
	switch {
	case idx.Source != clusters.Source:
		p.Log.Printf("ignoring index cache %s built from other peptides or settings", p.conf.IndexCache)
		return false
	case idx.KmerLength != p.conf.KmerLength, idx.NumClusters != clusters.NumClusters():
		p.Log.Printf("ignoring index cache %s built for k=%d and %d clusters", p.conf.IndexCache, idx.KmerLength, idx.NumClusters)
		return false
	}
	clusters.Index = idx
	p.clusters = clusters
	return true
}

// Merge merges the clusters of the match table whose Jaccard index is
// above the threshold and checkpoints the result
func (p *Pipeline) Merge() error {
	if p.matches == nil {
		return fmt.Errorf("no matches to merge, run match first")
	}
	start := time.Now()

	ids, readSets, inter := merge.Prepare(p.matches, p.intersections)
	var calc similarity.Calculator
	if inter != nil {
		exact := similarity.NewExact(inter)
		exact.Workers = p.conf.Threads
		calc = exact
	} else {
		mh := similarity.NewMinHash(readSets, p.conf.SketchSize)
		mh.Workers = p.conf.Threads
		calc = mh
	}

	merger, err := merge.New(p.conf.Method(), calc, p.conf.Threshold())
	if err != nil {
		return err
	}
	res, err := merger.GenerateMergedResult(ids, readSets)
	if err != nil {
		return err
	}
	p.merged = &res

	p.Log.Printf(
		"merged %s matched clusters into %s groups with %s in %s",
		humanize.Comma(int64(len(ids))),
		humanize.Comma(int64(res.Len())),
		p.conf.Method(),
		time.Since(start).Round(time.Millisecond),
	)

	if err := p.store.SaveMergeResult(res); err != nil {
		return err
	}
	return p.store.SaveStep(checkpoint.Merged)
}

// Result is the merge result, nil before Merge
func (p *Pipeline) Result() *merge.Result {
	return p.merged
}

// Matches is the match table, nil before Match
func (p *Pipeline) Matches() *match.Table {
	return p.matches
}

// Mapping is the peptide line to cluster mapping, nil before Index
func (p *Pipeline) Mapping() []int {
	if p.clusters == nil {
		return nil
	}
	return p.clusters.Mapping
}

// LoadMatches restores the state the merge step needs from the checkpoint
// of a run whose matches were made with the same settings. The merge
// settings of the run are replaced with the current ones
func (p *Pipeline) LoadMatches() error {
	manifest, err := p.store.Manifest()
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no run in %s, run match first", p.store.Dir())
	}
	if err != nil {
		return corrupt(p.store.Dir(), err)
	}
	if err := p.checkSettings(manifest, matchSettings...); err != nil {
		return err
	}
	if manifest.LastStep < checkpoint.Matched {
		return fmt.Errorf("run %s has not completed match, run match first", manifest.RunID)
	}

	if err := p.loadMatched(); err != nil {
		return corrupt(p.store.Dir(), err)
	}
	return p.store.SaveSettings(p.conf.Settings())
}

func (p *Pipeline) loadMatched() error {
	mapping, err := p.store.LoadMapping()
	if err != nil {
		return err
	}
	p.clusters = &peptide.Clusters{Mapping: mapping}

	if p.matches, err = p.store.LoadMatches(); err != nil {
		return err
	}
	if p.conf.PrecomputeIntersections {
		if p.intersections, err = p.store.LoadIntersections(); err != nil {
			return err
		}
		if p.intersections.Size() != p.matches.Len() {
			return fmt.Errorf("intersection matrix covers %d clusters, matches %d", p.intersections.Size(), p.matches.Len())
		}
	}
	return nil
}

func (p *Pipeline) loadMerged() error {
	mapping, err := p.store.LoadMapping()
	if err != nil {
		return err
	}
	p.clusters = &peptide.Clusters{Mapping: mapping}

	res, err := p.store.LoadMergeResult()
	if err != nil {
		return err
	}
	p.merged = &res
	return nil
}

func (p *Pipeline) outPath(elem ...string) string {
	return filepath.Join(append([]string{p.conf.Out}, elem...)...)
}
