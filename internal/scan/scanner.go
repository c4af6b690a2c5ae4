package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/mvp-joe/codelens/internal/extraction"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrTooLarge marks files skipped because they exceed the size limit.
var ErrTooLarge = errors.New("file exceeds size limit")

// Parser is the parse operation the scanner drives. Both *parsers.Parser and
// *cache.ParseCache satisfy it.
type Parser interface {
	Parse(code string, lang extraction.Language, filename string) *extraction.ParsedCode
}

// FileResult is the outcome for one file. Exactly one of Result and Err is set.
type FileResult struct {
	Path   string
	Result *extraction.ParsedCode
	Err    error
}

// Skipped reports whether the file was left out because of its size.
func (r FileResult) Skipped() bool {
	return errors.Is(r.Err, ErrTooLarge)
}

// Totals aggregates the results of a scan.
type Totals struct {
	Files           int                         `json:"files" yaml:"files"`
	Parsed          int                         `json:"parsed" yaml:"parsed"`
	Skipped         int                         `json:"skipped" yaml:"skipped"`
	Failed          int                         `json:"failed" yaml:"failed"`
	Lines           int                         `json:"lines" yaml:"lines"`
	Elements        int                         `json:"elements" yaml:"elements"`
	Functions       int                         `json:"functions" yaml:"functions"`
	Classes         int                         `json:"classes" yaml:"classes"`
	Imports         int                         `json:"imports" yaml:"imports"`
	ComplexityScore int                         `json:"complexity_score" yaml:"complexity_score"`
	Languages       map[extraction.Language]int `json:"languages" yaml:"languages"`
}

// Report holds per-file results in input order plus their totals.
type Report struct {
	Files  []FileResult
	Totals Totals
}

// Scanner parses many files concurrently.
type Scanner struct {
	parser   Parser
	language extraction.Language
	maxBytes int64
	workers  int
	logger   *zap.Logger
	onFile   func(FileResult)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLanguage forces a language instead of detecting it per file.
func WithLanguage(lang extraction.Language) Option {
	return func(s *Scanner) { s.language = lang }
}

// WithMaxFileBytes skips files larger than n bytes. Zero or less disables the limit.
func WithMaxFileBytes(n int64) Option {
	return func(s *Scanner) { s.maxBytes = n }
}

// WithWorkers sets how many files are parsed at once.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the logger for skipped and unreadable files.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProgress registers a callback invoked once per finished file.
// It is called from worker goroutines and must be safe for concurrent use.
func WithProgress(fn func(FileResult)) Option {
	return func(s *Scanner) { s.onFile = fn }
}

// NewScanner creates a scanner around parser.
func NewScanner(parser Parser, opts ...Option) *Scanner {
	s := &Scanner{
		parser:  parser,
		workers: runtime.NumCPU(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan discovers files with d and parses them.
func (s *Scanner) Scan(ctx context.Context, d *Discovery) (*Report, error) {
	files, err := d.Discover()
	if err != nil {
		return nil, err
	}
	return s.ScanFiles(ctx, files)
}

// ScanFiles parses every file. Unreadable and oversized files are reported per file and
// do not stop the scan; only context cancellation does.
func (s *Scanner) ScanFiles(ctx context.Context, files []string) (*Report, error) {
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.ParseFile(path)
			if s.onFile != nil {
				s.onFile(results[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}
	// gctx is always cancelled once Wait returns; only the caller's context counts here.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}

	return &Report{Files: results, Totals: Summarize(results)}, nil
}

// ParseFile reads and parses a single file.
func (s *Scanner) ParseFile(path string) FileResult {
	info, err := os.Stat(path)
	if err != nil {
		s.logger.Warn("cannot stat file", zap.String("path", path), zap.Error(err))
		return FileResult{Path: path, Err: fmt.Errorf("failed to stat file: %w", err)}
	}
	if s.maxBytes > 0 && info.Size() > s.maxBytes {
		s.logger.Warn("skipping oversized file",
			zap.String("path", path),
			zap.Int64("size", info.Size()),
			zap.Int64("limit", s.maxBytes))
		return FileResult{Path: path, Err: fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, info.Size(), s.maxBytes)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("cannot read file", zap.String("path", path), zap.Error(err))
		return FileResult{Path: path, Err: fmt.Errorf("failed to read file: %w", err)}
	}

	return FileResult{Path: path, Result: s.parser.Parse(string(data), s.language, path)}
}

// Summarize totals a set of file results.
func Summarize(results []FileResult) Totals {
	t := Totals{Files: len(results), Languages: map[extraction.Language]int{}}
	for _, r := range results {
		switch {
		case r.Skipped():
			t.Skipped++
		case r.Err != nil:
			t.Failed++
		case r.Result != nil:
			t.Parsed++
			t.Lines += r.Result.TotalLines()
			t.Elements += len(r.Result.Elements)
			t.Functions += len(r.Result.Functions)
			t.Classes += len(r.Result.Classes)
			t.Imports += len(r.Result.Imports)
			t.ComplexityScore += r.Result.ComplexityScore
			t.Languages[r.Result.Language]++
		}
	}
	return t
}
