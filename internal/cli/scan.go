package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mvp-joe/codelens/internal/scan"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scanQuietFlag  bool
	scanFormatFlag string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Parse every matching source file under a directory",
	Long: `Scan walks a directory (the project directory by default), parses every file
matching paths.include and not matching paths.ignore, and reports per-file
summaries with project totals.

Files larger than parser.max_file_bytes are skipped. Unreadable files are
reported and do not stop the scan.

Examples:
  # Scan the current project
  codelens scan

  # Scan a subdirectory and emit YAML without a progress bar
  codelens scan --quiet --format yaml src/
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVarP(&scanQuietFlag, "quiet", "q", false, "disable the progress bar")
	scanCmd.Flags().StringVarP(&scanFormatFlag, "format", "f", formatText, "output format: text, json or yaml")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	dir := env.rootDir
	if len(args) == 1 {
		dir = args[0]
	}

	return executeScan(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), env, dir, scanFormatFlag, scanQuietFlag)
}

// executeScan contains the scan logic without cobra wiring. Progress goes to progressOut.
func executeScan(ctx context.Context, w, progressOut io.Writer, env *environment, dir, format string, quiet bool) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	d, err := env.discovery(absDir)
	if err != nil {
		return err
	}
	files, err := d.Discover()
	if err != nil {
		return fmt.Errorf("failed to discover files: %w", err)
	}
	env.logger.Debug("discovered files", zap.String("root", absDir), zap.Int("count", len(files)))

	progress := newScanProgress(progressOut, quiet)
	progress.Start(len(files))
	report, err := env.scanner(scan.WithProgress(progress.OnFile)).ScanFiles(ctx, files)
	progress.Finish()
	if err != nil {
		return err
	}

	return writeReport(w, format, absDir, report)
}
