package cli

import (
	"fmt"
	"os"

	"github.com/mvp-joe/codelens/internal/cache"
	"github.com/mvp-joe/codelens/internal/config"
	"github.com/mvp-joe/codelens/internal/logging"
	"github.com/mvp-joe/codelens/internal/parsers"
	"github.com/mvp-joe/codelens/internal/scan"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rootDirFlag  string
	logLevelFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codelens",
	Short: "Structural analysis of Python, Java and C++ source",
	Long: `codelens extracts the structure of source code: functions, classes, loops,
conditionals, exception and context blocks, imports, variables and comments,
together with a heuristic complexity score.

Python is parsed with a full grammar. Java and C/C++ are recognized line by line.

Configuration is read from .codelens/config.yml in the project directory and
can be overridden with CODELENS_* environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDirFlag, "dir", "C", "", "project directory holding .codelens/config.yml (default is the working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "override the configured log level (debug, info, warn, error)")
}

// environment is everything a command needs, built from configuration.
type environment struct {
	rootDir string
	cfg     *config.Config
	logger  *zap.Logger
	parser  scan.Parser
	cache   *cache.ParseCache // nil when caching is disabled
}

// loadEnvironment reads configuration for the project directory and wires the parser stack.
func loadEnvironment() (*environment, error) {
	rootDir := rootDirFlag
	if rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		rootDir = wd
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}

	return newEnvironment(rootDir, cfg)
}

func newEnvironment(rootDir string, cfg *config.Config) (*environment, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}

	env := &environment{
		rootDir: rootDir,
		cfg:     cfg,
		logger:  logger,
		parser:  parsers.NewParser(parsers.WithLogger(logger)),
	}

	if cfg.Cache.Enabled {
		c, err := cache.New(env.parser, cfg.Cache.Capacity, logger)
		if err != nil {
			return nil, err
		}
		env.cache = c
		env.parser = c
	}

	return env, nil
}

// discovery builds file discovery for dir using the configured patterns.
func (e *environment) discovery(dir string) (*scan.Discovery, error) {
	return scan.NewDiscovery(dir, e.cfg.Paths.Include, e.cfg.Paths.Ignore)
}

// scanner builds a scanner honoring the configured limits.
func (e *environment) scanner(opts ...scan.Option) *scan.Scanner {
	base := []scan.Option{
		scan.WithLanguage(e.cfg.Language()),
		scan.WithMaxFileBytes(e.cfg.Parser.MaxFileBytes),
		scan.WithWorkers(e.cfg.Scan.Workers),
		scan.WithLogger(e.logger),
	}
	return scan.NewScanner(e.parser, append(base, opts...)...)
}

func (e *environment) Close() {
	if e.cache != nil {
		stats := e.cache.Stats()
		e.logger.Debug("parse cache",
			zap.Int64("hits", stats.Hits),
			zap.Int64("misses", stats.Misses),
			zap.Int("size", stats.Size))
		e.cache.Close()
	}
	_ = e.logger.Sync()
}
