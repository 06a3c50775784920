package cmd

import (
	"github.com/ClaraUktar/pepti-map/internal/pipeline"
	"github.com/spf13/cobra"
)

// matchCmd is for matching reads against the peptide index
var matchCmd = &cobra.Command{
	Use:                        "match",
	Short:                      "Match RNA-seq reads against the peptide clusters",
	Run:                        pipeline.MatchCmd,
	SuggestionsMinimumDistance: 3,
	Long: `
Translate every read in three frames and look up each of its k-mers in the
peptide index. A read matches every cluster it shares a k-mer with.

Writes quant.tsv to the output dir and checkpoints the matches in the
temp dir for "pepti-map merge".`,
}

func init() {
	matchCmd.Flags().StringP("peptides", "p", "", "peptide file")
	matchCmd.Flags().StringSliceP("reads", "r", nil, "one FASTQ file, or two for paired-end reads (.gz is read compressed)")

	RootCmd.AddCommand(matchCmd)
}
