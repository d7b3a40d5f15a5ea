package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/modulemd/internal/store"
	"github.com/cameronsjo/modulemd/internal/ui"
)

var storeExportOutput string

// storeCmd groups the catalog commands.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the SQLite catalog of imported metadata",
	Long: `Manage the catalog of imported module metadata.

Every import is stored as a batch of canonical documents with a unique id.
The catalog path comes from --store, MODULEMD_STORE_PATH or store.path in
the config file.`,
}

var storeImportCmd = &cobra.Command{
	Use:               "import FILE...",
	Short:             "Save files as one new batch",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeYAMLFiles,
	RunE:              runStoreImport,
}

var storeExportCmd = &cobra.Command{
	Use:               "export [BATCH]",
	Short:             "Emit a stored batch (latest by default)",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeBatchIDs,
	RunE:              runStoreExport,
}

var storeBatchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List stored batches, newest first",
	Args:  cobra.NoArgs,
	RunE:  runStoreBatches,
}

var storeDeleteCmd = &cobra.Command{
	Use:               "delete BATCH",
	Short:             "Remove a stored batch",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeBatchIDs,
	RunE:              runStoreDelete,
}

func init() {
	storeCmd.PersistentFlags().String("store", "", "Catalog database path")
	storeExportCmd.Flags().StringVarP(&storeExportOutput, "output", "o", "", "Write to file instead of stdout")

	storeCmd.AddCommand(storeImportCmd, storeExportCmd, storeBatchesCmd, storeDeleteCmd)
	rootCmd.AddCommand(storeCmd)
}

// withStore opens the configured catalog for the duration of fn.
func withStore(ctx context.Context, fn func(s *store.Store) error) error {
	s, err := store.Open(ctx, appConfig.Store.Path, store.WithLogger(logger))
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(s)
}

func runStoreImport(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())
	idx, failed, err := loadFiles(p, args)
	if err != nil {
		return err
	}
	if err := failedError(failed); err != nil {
		return err
	}

	return withStore(cmd.Context(), func(s *store.Store) error {
		id, err := s.Import(cmd.Context(), strings.Join(args, ","), idx)
		if err != nil {
			return err
		}
		p.Success("imported %d modules as batch %s", idx.Len(), id)
		return nil
	})
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	id := ""
	if len(args) == 1 {
		id = args[0]
	}
	return withStore(cmd.Context(), func(s *store.Store) error {
		text, err := s.Export(cmd.Context(), id)
		if err != nil {
			return err
		}
		return writeOutput(cmd, storeExportOutput, text)
	})
}

func runStoreBatches(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())
	return withStore(cmd.Context(), func(s *store.Store) error {
		batches, err := s.Batches(cmd.Context())
		if err != nil {
			return err
		}
		if len(batches) == 0 {
			p.Info("no batches")
			return nil
		}
		for _, b := range batches {
			p.Item(b.ID, "%s  %d documents  %s", b.CreatedAt.Format(time.RFC3339), b.Documents, b.Source)
		}
		return nil
	})
}

func runStoreDelete(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())
	return withStore(cmd.Context(), func(s *store.Store) error {
		if err := s.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		p.Success("deleted batch %s", args[0])
		return nil
	})
}
