package cmd

import (
	"github.com/ClaraUktar/pepti-map/internal/pipeline"
	"github.com/spf13/cobra"
)

// mergeCmd is for merging the clusters of checkpointed matches
var mergeCmd = &cobra.Command{
	Use:                        "merge",
	Short:                      "Merge clusters matched by similar sets of reads",
	Run:                        pipeline.MergeCmd,
	SuggestionsMinimumDistance: 3,
	Long: `
Merge the peptide clusters matched by "pepti-map match" whose read sets have
a Jaccard index above the threshold.

With --peptides and --reads, each merged group's reads and peptides are also
written to its own directory in the output dir.`,
}

func init() {
	mergeCmd.Flags().StringP("peptides", "p", "", "peptide file")
	mergeCmd.Flags().StringSliceP("reads", "r", nil, "one FASTQ file, or two for paired-end reads")

	RootCmd.AddCommand(mergeCmd)
}
