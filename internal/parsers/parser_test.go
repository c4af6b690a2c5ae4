package parsers

import (
	"sync"
	"testing"

	"github.com/mvp-joe/codelens/internal/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Test Plan for Parser:
// - Unknown or unsupported languages produce an empty model tagged unknown
// - An empty language triggers detection
// - Parsing is deterministic: the same input twice yields equal models
// - Every element satisfies 1 <= line_start <= line_end <= total lines
// - Adding a construct never lowers the complexity score
// - GetLine is bounds-checked
// - Grammar failures are logged at debug level and fall back to line patterns
// - Binary garbage never panics and still satisfies the line invariant in every language
// - A single Parser is safe for concurrent use

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixtures = map[string]string{
	"inventory.py": "../../testdata/code/python/inventory.py",
	"broken.py":    "../../testdata/code/python/broken.py",
	"Greeter.java": "../../testdata/code/java/Greeter.java",
	"counter.cpp":  "../../testdata/code/cpp/counter.cpp",
}

func TestParser_UnknownLanguage(t *testing.T) {
	t.Parallel()

	p := NewParser()

	result := p.Parse("fn main() {}", extraction.Language("rust"), "main.rs")
	assert.Equal(t, extraction.Unknown, result.Language)
	assert.Empty(t, result.Elements)
	assert.Empty(t, result.Imports)
	assert.Empty(t, result.Comments)
	assert.Equal(t, 0, result.ComplexityScore)
	assert.Equal(t, "fn main() {}", result.RawCode)

	detected := p.Parse("nothing to see", "", "")
	assert.Equal(t, extraction.Unknown, detected.Language)
	assert.Equal(t, 1, detected.TotalLines())
}

func TestParser_DetectsWhenLanguageEmpty(t *testing.T) {
	t.Parallel()

	p := NewParser()
	assert.Equal(t, extraction.Python, p.Parse("def f():\n    pass\n", "", "").Language)
	assert.Equal(t, extraction.Cpp, p.Parse("def f():\n    pass\n", "", "f.hpp").Language)
	assert.Equal(t, extraction.Java, p.Detect("public class A {}", ""))
}

func TestParser_Deterministic(t *testing.T) {
	t.Parallel()

	p := NewParser()
	for name, path := range fixtures {
		code := readFixture(t, path)
		first := p.Parse(code, "", name)
		second := p.Parse(code, "", name)
		assert.Equal(t, first, second, name)
	}
}

func TestParser_LineInvariant(t *testing.T) {
	t.Parallel()

	p := NewParser()
	for name, path := range fixtures {
		result := p.Parse(readFixture(t, path), "", name)
		require.NotEmpty(t, result.Elements, name)

		for _, el := range result.Elements {
			assert.GreaterOrEqual(t, el.LineStart, 1, "%s %s", name, el.Name)
			assert.LessOrEqual(t, el.LineStart, el.LineEnd, "%s %s", name, el.Name)
			assert.LessOrEqual(t, el.LineEnd, result.TotalLines(), "%s %s", name, el.Name)
			assert.Equal(t, result.GetLine(el.LineStart), firstLine(el.CodeSnippet), "%s %s", name, el.Name)
		}
		assert.GreaterOrEqual(t, result.ComplexityScore, 0)
		assert.Subset(t, result.Elements, result.Functions)
		assert.Subset(t, result.Elements, result.Classes)
	}
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}

func TestParser_ScoreMonotonic(t *testing.T) {
	t.Parallel()

	p := NewParser()
	base := "def f(x):\n    return x\n"
	extended := base + "while True:\n    break\n"

	before := p.Parse(base, extraction.Python, "")
	after := p.Parse(extended, extraction.Python, "")
	assert.Equal(t, before.ComplexityScore+2, after.ComplexityScore)

	javaBase := "public class A {\n}\n"
	javaExtended := javaBase + "void g() {\n    for (;;) {}\n}\n"
	assert.Greater(t,
		p.Parse(javaExtended, extraction.Java, "").ComplexityScore,
		p.Parse(javaBase, extraction.Java, "").ComplexityScore)
}

func TestParser_GetLine(t *testing.T) {
	t.Parallel()

	result := NewParser().Parse("a = 1\nb = 2", extraction.Python, "")

	assert.Equal(t, 2, result.TotalLines())
	assert.Equal(t, "a = 1", result.GetLine(1))
	assert.Equal(t, "b = 2", result.GetLine(2))
	assert.Equal(t, "", result.GetLine(0))
	assert.Equal(t, "", result.GetLine(3))
	assert.Equal(t, "", result.GetLine(-1))
}

func TestParser_FallbackIsLogged(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	p := NewParser(WithLogger(zap.New(core)))

	result := p.Parse("def broken(:\n", extraction.Python, "")
	require.Len(t, result.Functions, 1)
	assert.Equal(t, "broken", result.Functions[0].Name)

	entries := logs.FilterMessage("python grammar parse failed, using line patterns").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "python syntax error")
}

func TestParser_NilLoggerIgnored(t *testing.T) {
	t.Parallel()

	p := NewParser(WithLogger(nil))
	assert.NotPanics(t, func() {
		p.Parse("def broken(:\n", extraction.Python, "")
	})
}

func TestParser_BinaryGarbage(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"\xff\xfe\x00 ((( def",
		"\x00\x00\x00",
		"def \xff(\x00:\n\tclass \xc3\x28 {{{\n}}}}\n\x80\x81",
		"\"\"\"\xff\x00\nfor (;;) { while ( if (\n#include \xfe\n",
	}
	langs := []extraction.Language{"", extraction.Python, extraction.Java, extraction.Cpp}

	p := NewParser()
	for _, code := range inputs {
		for _, lang := range langs {
			var result *extraction.ParsedCode
			require.NotPanics(t, func() {
				result = p.Parse(code, lang, "")
			}, "%q as %q", code, lang)
			require.NotNil(t, result)

			assert.Equal(t, code, result.RawCode)
			assert.GreaterOrEqual(t, result.ComplexityScore, 0)
			for _, el := range result.Elements {
				assert.GreaterOrEqual(t, el.LineStart, 1, "%q as %q", code, lang)
				assert.LessOrEqual(t, el.LineStart, el.LineEnd, "%q as %q", code, lang)
				assert.LessOrEqual(t, el.LineEnd, result.TotalLines(), "%q as %q", code, lang)
			}
		}
	}
}

func TestParser_Concurrent(t *testing.T) {
	t.Parallel()

	p := NewParser()
	codes := make(map[string]string, len(fixtures))
	expected := make(map[string]*extraction.ParsedCode, len(fixtures))
	for name, path := range fixtures {
		codes[name] = readFixture(t, path)
		expected[name] = p.Parse(codes[name], "", name)
	}

	var wg sync.WaitGroup
	results := make(chan struct {
		name   string
		result *extraction.ParsedCode
	}, 8*len(fixtures))

	for i := 0; i < 8; i++ {
		for name, code := range codes {
			wg.Add(1)
			go func(name, code string) {
				defer wg.Done()
				results <- struct {
					name   string
					result *extraction.ParsedCode
				}{name, p.Parse(code, "", name)}
			}(name, code)
		}
	}
	wg.Wait()
	close(results)

	for r := range results {
		assert.Equal(t, expected[r.name], r.result, r.name)
	}
}
