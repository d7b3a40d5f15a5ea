package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/modulemd/internal/codec"
	"github.com/cameronsjo/modulemd/internal/fileutil"
	"github.com/cameronsjo/modulemd/internal/index"
	"github.com/cameronsjo/modulemd/internal/ui"
)

// indexOptions returns the index options for the current configuration.
func indexOptions() []index.Option {
	return []index.Option{
		index.WithLogger(logger),
		index.WithStrictMode(appConfig.Strict),
	}
}

// newParser returns a parser for the current configuration.
func newParser() *codec.Parser {
	return codec.NewParser().WithStrictMode(appConfig.Strict).WithLogger(logger)
}

// loadFiles reads files into one index. Failed documents are reported to p
// and counted; an error means an addition conflicted.
func loadFiles(p *ui.Printer, files []string) (*index.Index, int, error) {
	idx := index.New(indexOptions()...)
	failed := 0
	for _, file := range files {
		failures, err := idx.UpdateFromFile(file)
		if err != nil {
			return nil, failed, err
		}
		reportFailures(p, file, failures)
		failed += len(failures)
	}
	return idx, failed, nil
}

func reportFailures(p *ui.Printer, file string, failures []*codec.Subdocument) {
	for _, f := range failures {
		p.Error("%s: %v", file, f.Err)
	}
}

// writeOutput writes text to path, or to the command output when path is
// empty or "-".
func writeOutput(cmd *cobra.Command, path, text string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	}
	return fileutil.WriteFile(path, []byte(text), 0644)
}

// splitPriority splits FILE[:PRIORITY]. A suffix that is not a number is
// part of the file name.
func splitPriority(arg string) (string, int, error) {
	i := strings.LastIndex(arg, ":")
	if i < 0 || strings.ContainsRune(arg[i+1:], filepath.Separator) {
		return arg, 0, nil
	}
	priority, err := strconv.Atoi(arg[i+1:])
	if err != nil {
		return arg, 0, nil
	}
	if arg[:i] == "" {
		return "", 0, fmt.Errorf("missing file name in %q", arg)
	}
	return arg[:i], priority, nil
}

// failedError summarizes failed documents as a command error.
func failedError(n int) error {
	if n == 0 {
		return nil
	}
	if n == 1 {
		return fmt.Errorf("1 document failed")
	}
	return fmt.Errorf("%d documents failed", n)
}
