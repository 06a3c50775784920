package pipeline

import (
	"log"

	"github.com/ClaraUktar/pepti-map/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// IndexCmd builds the peptide k-mer index
func IndexCmd(cmd *cobra.Command, args []string) {
	p := setup(cmd, true, false)
	if err := p.Begin(); err != nil {
		log.Fatal(err)
	}
	if err := p.Index(); err != nil {
		log.Fatal(err)
	}
}

// MatchCmd indexes the peptides and matches the reads against them
func MatchCmd(cmd *cobra.Command, args []string) {
	p := setup(cmd, true, true)
	if err := p.Begin(); err != nil {
		log.Fatal(err)
	}
	if err := p.Index(); err != nil {
		log.Fatal(err)
	}
	if err := p.Match(); err != nil {
		log.Fatal(err)
	}
}

// MergeCmd merges the checkpointed matches of an earlier match command. If
// the peptides and reads are given, the groups' assembly inputs are
// written too
func MergeCmd(cmd *cobra.Command, args []string) {
	p := setup(cmd, false, false)
	if err := p.LoadMatches(); err != nil {
		log.Fatal(err)
	}
	if err := p.Merge(); err != nil {
		log.Fatal(err)
	}
	if p.PeptidePath == "" || len(p.ReadPaths) == 0 {
		return
	}
	if err := p.Groups(); err != nil {
		log.Fatal(err)
	}
}

// RunCmd runs every step, optionally resuming an earlier run
func RunCmd(cmd *cobra.Command, args []string) {
	f, err := parseCmdFlags(cmd, true, true)
	if err != nil {
		log.Fatal(err)
	}
	p := newFromViper(f)
	if err := p.Run(f.resume); err != nil {
		log.Fatal(err)
	}
}

// Begin starts a new checkpointed run with the pipeline's settings
func (p *Pipeline) Begin() error {
	_, err := p.store.Begin(p.conf.Settings())
	return err
}

func setup(cmd *cobra.Command, needPeptides, needReads bool) *Pipeline {
	f, err := parseCmdFlags(cmd, needPeptides, needReads)
	if err != nil {
		log.Fatal(err)
	}
	return newFromViper(f)
}

// newFromViper reads the settings file, if any, then builds the Pipeline
// from the resulting config
func newFromViper(f *flags) *Pipeline {
	if err := config.Init(viper.GetViper(), viper.GetString("settings")); err != nil {
		log.Fatal(err)
	}
	conf, err := config.New()
	if err != nil {
		log.Fatalf("invalid settings: %v", err)
	}

	p, err := New(conf, f.peptides, f.reads)
	if err != nil {
		log.Fatal(err)
	}
	p.Progress = true
	return p
}
