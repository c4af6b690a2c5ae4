package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery selects source files under a root directory with include and ignore globs.
// Patterns match slash-separated paths relative to the root.
type Discovery struct {
	rootDir        string
	includes       []compiledPattern
	ignorePatterns []compiledPattern
}

// NewDiscovery compiles the include and ignore patterns for rootDir.
func NewDiscovery(rootDir string, includes, ignores []string) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	var err error
	if d.includes, err = compilePatterns(includes); err != nil {
		return nil, err
	}
	if d.ignorePatterns, err = compilePatterns(ignores); err != nil {
		return nil, err
	}
	return d, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

// Root returns the directory being searched.
func (d *Discovery) Root() string {
	return d.rootDir
}

// Discover walks the root and returns matching file paths in lexical order.
// Ignored directories are not descended into.
func (d *Discovery) Discover() ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(d.rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			if relPath != "." && d.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		if d.matchesRel(relPath) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", d.rootDir, err)
	}

	sort.Strings(files)
	return files, nil
}

// Matches reports whether path (absolute, or relative to the root) would be discovered.
func (d *Discovery) Matches(path string) bool {
	relPath, ok := d.rel(path)
	if !ok {
		return false
	}

	// Ignoring a directory ignores everything below it.
	parts := strings.Split(relPath, "/")
	for i := 1; i < len(parts); i++ {
		if d.shouldIgnore(strings.Join(parts[:i], "/")) {
			return false
		}
	}
	return d.matchesRel(relPath)
}

// IgnoresDir reports whether the directory at path is excluded from discovery.
// Paths outside the root are always excluded.
func (d *Discovery) IgnoresDir(path string) bool {
	relPath, ok := d.rel(path)
	if !ok {
		return true
	}
	return relPath != "." && d.shouldIgnore(relPath)
}

// rel converts path to a clean slash-separated path relative to the root.
func (d *Discovery) rel(path string) (string, bool) {
	relPath := path
	if filepath.IsAbs(path) {
		root, err := filepath.Abs(d.rootDir)
		if err != nil {
			return "", false
		}
		if relPath, err = filepath.Rel(root, path); err != nil {
			return "", false
		}
	}
	relPath = filepath.ToSlash(filepath.Clean(relPath))
	if relPath == ".." || strings.HasPrefix(relPath, "../") {
		return "", false
	}
	return relPath, true
}

func (d *Discovery) matchesRel(relPath string) bool {
	return !d.shouldIgnore(relPath) && matchesAnyPattern(relPath, d.includes)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (d *Discovery) shouldIgnore(relPath string) bool {
	// Always ignore the configuration directory
	if strings.HasPrefix(relPath, ".codelens/") || relPath == ".codelens" {
		return true
	}

	if matchesAnyPattern(relPath, d.ignorePatterns) {
		return true
	}

	// Also check if this is a directory that would match with /** suffix
	// For example, "node_modules" should match pattern "node_modules/**"
	return matchesAnyPattern(relPath+"/**", d.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Special handling: if path is in root (no slash), also try matching against
	// patterns with **/ prefix removed. This makes "**/*.py" match both "main.py"
	// and "pkg/main.py" as users would expect.
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
					if simplifiedGlob.Match(path) {
						return true
					}
				}
			}
		}
	}

	return false
}
