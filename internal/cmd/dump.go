package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cameronsjo/modulemd/internal/ui"
)

var dumpOutput string

// dumpCmd represents the dump command.
var dumpCmd = &cobra.Command{
	Use:   "dump FILE...",
	Short: "Merge files into one index and emit it",
	Long: `Merge every document of the given files into one module index and emit
it in canonical order: modules by name, and within a module its streams,
then its defaults, then its translations.

Documents that fail to parse are reported and left out; the command then
exits non-zero after writing the rest.

Examples:
  modulemd dump a.yaml b.yaml
  modulemd dump -o index.yaml repo/*.yaml`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeYAMLFiles,
	RunE:              runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.ErrOrStderr())
	idx, failed, err := loadFiles(p, args)
	if err != nil {
		return err
	}
	text, err := idx.Dump()
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, dumpOutput, text); err != nil {
		return err
	}
	return failedError(failed)
}
