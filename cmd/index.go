package cmd

import (
	"github.com/ClaraUktar/pepti-map/internal/pipeline"
	"github.com/spf13/cobra"
)

// indexCmd is for building the peptide k-mer index
var indexCmd = &cobra.Command{
	Use:                        "index",
	Short:                      "Build the k-mer index of a peptide file",
	Run:                        pipeline.IndexCmd,
	SuggestionsMinimumDistance: 3,
	Long: `
Index every k-mer of the peptides in a peptide file. Lines are either a
peptide or "peptide<TAB>protein group". Peptides of one protein group form
one cluster, otherwise each peptide is its own cluster.

The peptide to cluster mapping is checkpointed in the temp dir. With
--index-cache the index is also written there for later runs.`,
}

func init() {
	indexCmd.Flags().StringP("peptides", "p", "", "peptide file")

	RootCmd.AddCommand(indexCmd)
}
