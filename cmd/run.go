package cmd

import (
	"github.com/ClaraUktar/pepti-map/internal/pipeline"
	"github.com/spf13/cobra"
)

// runCmd is for running every step
var runCmd = &cobra.Command{
	Use:                        "run",
	Short:                      "Index, match, merge and write groups for assembly",
	Run:                        pipeline.RunCmd,
	SuggestionsMinimumDistance: 3,
	Long: `
Run every step: index the peptides, match the reads, merge similar clusters
and write each merged group's reads and peptides to <out>/<group>/.

Each step is checkpointed in the temp dir. --resume continues the run found
there after its last completed step.`,
}

func init() {
	runCmd.Flags().StringP("peptides", "p", "", "peptide file")
	runCmd.Flags().StringSliceP("reads", "r", nil, "one FASTQ file, or two for paired-end reads (.gz is read compressed)")
	runCmd.Flags().Bool("resume", false, "resume the run in the temp dir")

	RootCmd.AddCommand(runCmd)
}
