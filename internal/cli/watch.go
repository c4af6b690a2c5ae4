package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mvp-joe/codelens/internal/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchFormatFlag   string
	watchDebounceFlag time.Duration
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-parse source files as they change",
	Long: `Watch monitors a directory tree and re-parses matching files whenever they are
written, created or renamed. Changes are batched after a quiet period. Deleted
files are reported as removed.

Press Ctrl+C to stop.

Examples:
  # Watch the current project
  codelens watch

  # Watch a subdirectory, reporting JSON after one second of quiet
  codelens watch --format json --debounce 1s src/
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchFormatFlag, "format", "f", formatText, "output format: text, json or yaml")
	watchCmd.Flags().DurationVar(&watchDebounceFlag, "debounce", watcher.DefaultDebounce, "quiet period before a batch is parsed")
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", dir)
	return executeWatch(ctx, cmd.OutOrStdout(), env, dir, watchFormatFlag, watchDebounceFlag)
}

// executeWatch blocks until ctx is cancelled, writing a report for every batch of changes.
func executeWatch(ctx context.Context, w io.Writer, env *environment, dir, format string, debounce time.Duration) error {
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

	fw, err := watcher.New(absDir, d,
		watcher.WithDebounce(debounce),
		watcher.WithLogger(env.logger))
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", absDir, err)
	}
	defer fw.Stop()

	scanner := env.scanner()
	fw.Start(ctx, func(files []string) {
		var changed []string
		for _, path := range files {
			if watcher.Exists(path) {
				changed = append(changed, path)
				continue
			}
			fmt.Fprintf(w, "removed %s\n", relPath(absDir, path))
		}
		if len(changed) == 0 {
			return
		}

		report, err := scanner.ScanFiles(ctx, changed)
		if err != nil {
			if ctx.Err() != nil {
				env.logger.Debug("watch batch abandoned", zap.Error(err))
			} else {
				env.logger.Warn("watch batch failed", zap.Error(err))
			}
			return
		}
		if err := writeReport(w, format, absDir, report); err != nil {
			env.logger.Warn("failed to write report", zap.Error(err))
		}
	})

	<-ctx.Done()
	return nil
}
