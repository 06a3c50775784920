package pipeline

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// flags contains the parsed cobra flags naming a run's inputs
type flags struct {
	peptides string
	reads    []string
	resume   bool
}

// parseCmdFlags gathers the peptide file, read files and resume flag from
// the cobra cmd object. Only the inputs a command needs must be set
func parseCmdFlags(cmd *cobra.Command, needPeptides, needReads bool) (*flags, error) {
	parsed := &flags{}
	var err error

	if cmd.Flags().Lookup("peptides") != nil {
		if parsed.peptides, err = cmd.Flags().GetString("peptides"); err != nil {
			return nil, fmt.Errorf("failed to parse peptides flag: %v", err)
		}
	}
	if needPeptides {
		if parsed.peptides == "" {
			return nil, fmt.Errorf("no peptide file set, use --peptides")
		}
		if err := exists(parsed.peptides); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Lookup("reads") != nil {
		if parsed.reads, err = cmd.Flags().GetStringSlice("reads"); err != nil {
			return nil, fmt.Errorf("failed to parse reads flag: %v", err)
		}
	}
	if needReads {
		if len(parsed.reads) < 1 || len(parsed.reads) > 2 {
			return nil, fmt.Errorf("expected one or two read files in --reads, got %d", len(parsed.reads))
		}
		for _, path := range parsed.reads {
			if err := exists(path); err != nil {
				return nil, err
			}
		}
	}

	if cmd.Flags().Lookup("resume") != nil {
		if parsed.resume, err = cmd.Flags().GetBool("resume"); err != nil {
			return nil, fmt.Errorf("failed to parse resume flag: %v", err)
		}
	}
	return parsed, nil
}

// exists fails early, before any step runs, on a missing input
func exists(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to find input: %w", err)
	}
	return nil
}
