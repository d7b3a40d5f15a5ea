package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/modulemd/internal/codec"
	"github.com/cameronsjo/modulemd/internal/fileutil"
	"github.com/cameronsjo/modulemd/internal/modulemd"
	"github.com/cameronsjo/modulemd/internal/ui"
)

var upgradeWrite bool

// upgradeCmd represents the upgrade command.
var upgradeCmd = &cobra.Command{
	Use:   "upgrade FILE...",
	Short: "Convert version 1 module streams to version 2",
	Long: `Upgrade version 1 module streams to metadata version 2.

The eol date becomes the "rawhide" service level, and the flat buildrequires
and requires maps become a single dependencies entry. Other documents are
emitted unchanged. By default the upgraded files are written to stdout;
with --write they are rewritten in place.

Files with documents that fail to parse are reported and left untouched.

Examples:
  # Show the upgraded documents
  modulemd upgrade python.yaml

  # Rewrite the files
  modulemd upgrade --write repo/*.yaml`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeYAMLFiles,
	RunE:              runUpgrade,
}

func init() {
	upgradeCmd.Flags().BoolVarP(&upgradeWrite, "write", "w", false, "Rewrite files in place (default writes to stdout)")
	rootCmd.AddCommand(upgradeCmd)
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.ErrOrStderr())
	parser := newParser()

	failed := 0
	for _, file := range args {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		res := parser.ParseString(string(data))
		if len(res.Failures) > 0 {
			reportFailures(p, file, res.Failures)
			failed += len(res.Failures)
			continue
		}

		docs, upgraded, err := upgradeDocuments(res.Documents)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		text, err := codec.EmitString(docs...)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		if !upgradeWrite {
			if _, err := fmt.Fprint(cmd.OutOrStdout(), text); err != nil {
				return err
			}
			continue
		}
		if upgraded == 0 {
			p.Info("%s: already current", file)
			continue
		}
		if err := fileutil.WriteFile(file, []byte(text), 0644); err != nil {
			return err
		}
		p.Success("%s: upgraded %d streams", file, upgraded)
	}
	return failedError(failed)
}

// upgradeDocuments upgrades every version 1 stream of docs in place of the
// original and counts them.
func upgradeDocuments(docs []modulemd.Document) ([]modulemd.Document, int, error) {
	out := make([]modulemd.Document, len(docs))
	upgraded := 0
	for i, doc := range docs {
		s, ok := doc.(*modulemd.ModuleStream)
		if !ok || s.MDVersion() != modulemd.MDVersion1 {
			out[i] = doc
			continue
		}
		v2, err := s.Upgrade()
		if err != nil {
			return nil, 0, fmt.Errorf("upgrade %s: %w", s.NSVCA(), err)
		}
		out[i] = v2
		upgraded++
	}
	return out, upgraded, nil
}
