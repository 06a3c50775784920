// Package cmd is for command line interactions with the pepti-map application
package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "pepti-map",
	Short: `Map peptides to RNA-seq reads. Reads sharing similar peptide
clusters are grouped for assembly`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

// settings shared by every command. Each is bound to the viper key of the
// same name, see config.Config
func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringP("settings", "s", "", "YAML settings file")
	flags.IntP("kmer-length", "k", 7, "length of peptide and read k-mers")
	flags.Float64P("jaccard-threshold", "j", 0.7, "merge clusters with a Jaccard index above this")
	flags.StringP("merge-method", "m", "agglomerative-clustering", "full-matrix or agglomerative-clustering")
	flags.Bool("precompute-intersections", false, "count cluster intersections while matching (memory quadratic in clusters)")
	flags.Bool("replace-isoleucine", true, "treat I and L as the same amino acid")
	flags.Int("sketch-size", 128, "hashes per MinHash sketch when intersections aren't precomputed")
	flags.IntP("cutoff", "c", -1, "truncate reads to this many bases")
	flags.StringP("temp-dir", "t", "./temp", "checkpoint directory")
	flags.StringP("out", "o", "./out", "output directory")
	flags.IntP("threads", "n", 0, "workers, the number of CPUs if 0 (env PEPTIMAP_THREADS)")
	flags.String("index-cache", "", "path of a cached peptide k-mer index, written if missing")

	for _, key := range []string{
		"settings",
		"kmer-length",
		"jaccard-threshold",
		"merge-method",
		"precompute-intersections",
		"replace-isoleucine",
		"sketch-size",
		"cutoff",
		"temp-dir",
		"out",
		"index-cache",
	} {
		viper.BindPFlag(key, flags.Lookup(key))
	}
	RootCmd.PersistentPreRun = bindThreads
}

// bindThreads binds --threads only if it was set, so its 0 default
// doesn't override PEPTIMAP_THREADS or the CPU count
func bindThreads(cmd *cobra.Command, args []string) {
	if f := cmd.Flags().Lookup("threads"); f != nil && f.Changed {
		viper.BindPFlag("threads", f)
	}
}
