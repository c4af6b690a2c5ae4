package cache

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mvp-joe/codelens/internal/extraction"
	"github.com/mvp-joe/codelens/internal/parsers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// Test Plan for ParseCache:
// - Identical input is parsed once and the same result is returned
// - Language, detection extension and content all separate entries
// - The filename only matters when the language is detected
// - A colliding entry with different inputs is re-parsed, not returned
// - Stats count hits and misses; Clear empties the cache
// - Non-positive capacity is rejected
// - Concurrent callers get consistent results
// - Closing the cache leaves no goroutines behind

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingParser struct {
	calls atomic.Int64
	inner *parsers.Parser
}

func (p *countingParser) Parse(code string, lang extraction.Language, filename string) *extraction.ParsedCode {
	p.calls.Add(1)
	return p.inner.Parse(code, lang, filename)
}

func newTestCache(t *testing.T) (*ParseCache, *countingParser) {
	t.Helper()
	parser := &countingParser{inner: parsers.NewParser()}
	c, err := New(parser, 64, nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, parser
}

func TestParseCache_Hit(t *testing.T) {
	t.Parallel()

	c, parser := newTestCache(t)
	code := "def f():\n    pass\n"

	first := c.Parse(code, extraction.Python, "a.py")
	second := c.Parse(code, extraction.Python, "b.py")

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), parser.calls.Load())
	assert.Equal(t, extraction.Python, first.Language)
}

func TestParseCache_SeparatesInputs(t *testing.T) {
	t.Parallel()

	c, parser := newTestCache(t)
	code := "def f():\n    pass\n"

	c.Parse(code, extraction.Python, "")
	c.Parse(code, extraction.Java, "")
	c.Parse(code+"\n", extraction.Python, "")
	c.Parse(code, "", "f.py")
	c.Parse(code, "", "f.hpp")
	c.Parse(code, "", "other.PY")

	// The last call shares the detection extension of "f.py".
	assert.Equal(t, int64(5), parser.calls.Load())
	assert.Equal(t, extraction.Cpp, c.Parse(code, "", "g.hpp").Language)
	assert.Equal(t, int64(5), parser.calls.Load())
}

func TestParseCache_Collision(t *testing.T) {
	t.Parallel()

	c, parser := newTestCache(t)
	code := "x = 1\n"

	stale := &extraction.ParsedCode{Language: extraction.Java}
	c.cache.Set(Key(code, extraction.Python, ""), entry{lang: extraction.Python, code: "y = 2\n", result: stale})

	result := c.Parse(code, extraction.Python, "")
	assert.NotSame(t, stale, result)
	assert.Equal(t, []string{"x"}, result.Variables)
	assert.Equal(t, int64(1), parser.calls.Load())
}

func TestParseCache_StatsAndClear(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)
	c.Parse("a = 1", extraction.Python, "")
	c.Parse("a = 1", extraction.Python, "")
	c.Parse("b = 1", extraction.Python, "")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 2, stats.Size)

	c.Clear()
	assert.Equal(t, 0, c.Stats().Size)
}

func TestParseCache_InvalidCapacity(t *testing.T) {
	t.Parallel()

	_, err := New(parsers.NewParser(), 0, nil)
	assert.ErrorContains(t, err, "capacity must be positive")
}

func TestParseCache_Concurrent(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)
	code := "class A:\n    def m(self):\n        pass\n"
	want := parsers.NewParser().Parse(code, extraction.Python, "")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, c.Parse(code, extraction.Python, ""))
		}()
	}
	wg.Wait()
}

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Key("x", extraction.Python, ""), Key("x", extraction.Python, ""))
	assert.NotEqual(t, Key("x", extraction.Python, ""), Key("x", extraction.Java, ""))
	// Field separators keep boundaries distinct.
	assert.NotEqual(t, Key("py", "", ".x"), Key("", "", ".xpy"))
}
