package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/modulemd/internal/index"
	"github.com/cameronsjo/modulemd/internal/ui"
)

var mergeOutput string

// mergeCmd represents the merge command.
var mergeCmd = &cobra.Command{
	Use:   "merge FILE[:PRIORITY]...",
	Short: "Merge repositories by priority",
	Long: `Merge module metadata from several repositories.

Each file is one repository with an optional priority from 0 to 1000
(default 0). Files of equal priority are merged without override, so
conflicting default streams fail the merge. A higher priority replaces the
defaults of every module it carries defaults for.

Examples:
  modulemd merge fedora.yaml:10 updates.yaml:10 custom.yaml:50
  modulemd merge -o merged.yaml base.yaml overlay.yaml:1`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeYAMLFiles,
	RunE:              runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.ErrOrStderr())
	merger := index.NewMerger(indexOptions()...)

	failed := 0
	for _, arg := range args {
		file, priority, err := splitPriority(arg)
		if err != nil {
			return err
		}
		idx := index.New(indexOptions()...)
		failures, err := idx.UpdateFromFile(file)
		if err != nil {
			return err
		}
		reportFailures(p, file, failures)
		failed += len(failures)

		if err := merger.Associate(idx, priority); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		logger.Debug("associated repository", "file", file, "priority", priority, "modules", idx.Len())
	}

	merged, err := merger.Resolve()
	if err != nil {
		return err
	}
	text, err := merged.Dump()
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, mergeOutput, text); err != nil {
		return err
	}
	return failedError(failed)
}
