package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/modulemd/internal/index"
	"github.com/cameronsjo/modulemd/internal/ui"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Parse and validate module metadata files",
	Long: `Parse and validate module metadata files without writing anything.

Every document of every file is checked. Documents that fail to parse or
validate are reported individually, and the files are then merged into one
index to catch conflicting defaults across files.

Examples:
  modulemd validate nodejs.yaml
  modulemd validate --permissive repo/*.yaml`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeYAMLFiles,
	RunE:              runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())
	parser := newParser()

	problems := 0
	for _, file := range args {
		data, err := os.ReadFile(file)
		if err != nil {
			p.Error("%s: %v", file, err)
			problems++
			continue
		}
		res := parser.ParseString(string(data))
		reportFailures(p, file, res.Failures)
		problems += len(res.Failures)
		if len(res.Failures) == 0 {
			p.Success("%s: %d documents", file, len(res.Documents))
		}
	}

	idx := index.New(indexOptions()...)
	for _, file := range args {
		if _, err := idx.UpdateFromFile(file); err != nil {
			p.Error("%v", err)
			problems++
		}
	}

	if problems > 0 {
		return fmt.Errorf("%d problems found", problems)
	}
	p.Info("%d modules", idx.Len())
	return nil
}
