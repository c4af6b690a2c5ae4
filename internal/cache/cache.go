package cache

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/maypok86/otter"
	"github.com/mvp-joe/codelens/internal/extraction"
	"go.uber.org/zap"
)

// Parser is the parse operation the cache sits in front of.
type Parser interface {
	Parse(code string, lang extraction.Language, filename string) *extraction.ParsedCode
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// entry keeps the full inputs next to the result so hash collisions are detected on hit.
type entry struct {
	lang   extraction.Language
	ext    string
	code   string
	result *extraction.ParsedCode
}

// ParseCache memoizes parse results by source content.
//
// Results are shared between callers and must be treated as read-only.
// ParseCache is safe for concurrent use. Close releases the cache's background resources.
type ParseCache struct {
	parser Parser
	cache  otter.Cache[uint64, entry]
	logger *zap.Logger
}

// New creates a cache holding at most capacity parse results.
func New(parser Parser, capacity int, logger *zap.Logger) (*ParseCache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c, err := otter.MustBuilder[uint64, entry](capacity).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build parse cache: %w", err)
	}

	return &ParseCache{parser: parser, cache: c, logger: logger}, nil
}

// Parse returns the cached result for identical input, parsing on a miss.
func (c *ParseCache) Parse(code string, lang extraction.Language, filename string) *extraction.ParsedCode {
	ext := keyExtension(lang, filename)
	key := Key(code, lang, ext)

	if e, ok := c.cache.Get(key); ok {
		if e.lang == lang && e.ext == ext && e.code == code {
			return e.result
		}
		c.logger.Debug("parse cache key collision", zap.Uint64("key", key))
	}

	result := c.parser.Parse(code, lang, filename)
	c.cache.Set(key, entry{lang: lang, ext: ext, code: code, result: result})
	return result
}

// Stats returns hit and miss counters and the current number of entries.
func (c *ParseCache) Stats() Stats {
	s := c.cache.Stats()
	return Stats{
		Hits:   s.Hits(),
		Misses: s.Misses(),
		Size:   c.cache.Size(),
	}
}

// Clear drops every cached result.
func (c *ParseCache) Clear() {
	c.cache.Clear()
}

// Close stops the cache. It must not be used afterwards.
func (c *ParseCache) Close() {
	c.cache.Close()
}

// Key hashes the inputs that determine a parse result.
func Key(code string, lang extraction.Language, ext string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(string(lang))
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(ext)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(code)
	return d.Sum64()
}

// keyExtension returns the part of filename that can influence the result:
// its extension, and only when the language is left to detection.
func keyExtension(lang extraction.Language, filename string) string {
	if lang != "" {
		return ""
	}
	return strings.ToLower(filepath.Ext(filename))
}
