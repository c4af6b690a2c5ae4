package parsers

import (
	"sort"
	"testing"

	"github.com/mvp-joe/codelens/internal/extraction"
	"github.com/stretchr/testify/assert"
)

// Test Plan for Detector:
// - A recognized extension wins regardless of content (case-insensitive)
// - Unrecognized extensions fall through to content scoring
// - Each signature counts once however often it matches
// - Ties go to Python, then Java, then C++
// - No matching signature yields unknown
// - Fixture files are detected from content alone

func TestDetector_ExtensionWins(t *testing.T) {
	t.Parallel()

	d := NewDetector()
	javaCode := "public class Foo { public static void main(String[] a) {} }"

	tests := []struct {
		filename string
		want     extraction.Language
	}{
		{"script.py", extraction.Python},
		{"Main.JAVA", extraction.Java},
		{"lib.cc", extraction.Cpp},
		{"lib.cxx", extraction.Cpp},
		{"legacy.c", extraction.Cpp},
		{"header.h", extraction.Cpp},
		{"header.hpp", extraction.Cpp},
		{"dir.py/main.cpp", extraction.Cpp},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Detect(javaCode, tt.filename), tt.filename)
	}
}

func TestDetector_UnknownExtensionUsesContent(t *testing.T) {
	t.Parallel()

	d := NewDetector()
	assert.Equal(t, extraction.Java, d.Detect("public class Foo {}", "notes.txt"))
	assert.Equal(t, extraction.Java, d.Detect("public class Foo {}", "Makefile"))
	assert.Equal(t, extraction.Java, d.Detect("public class Foo {}", ""))
}

func TestDetector_Scores(t *testing.T) {
	t.Parallel()

	d := NewDetector()
	code := "def a():\n    print(1)\ndef b():\n    print(2)\n"

	scores := d.Scores(code)
	// def, print and the trailing colon each count once.
	assert.Equal(t, 3, scores[extraction.Python])
	assert.Equal(t, 0, scores[extraction.Java])
	assert.Equal(t, 0, scores[extraction.Cpp])
	assert.Equal(t, extraction.Python, d.Detect(code, ""))
}

func TestDetector_TieOrder(t *testing.T) {
	t.Parallel()

	d := NewDetector()

	// Python (print) and Java (System.out.println) score 1 each.
	assert.Equal(t, extraction.Python, d.Detect("print(x)\nSystem.out.println(x);", ""))
	// Java (@Override) and C++ (std::) score 1 each.
	assert.Equal(t, extraction.Java, d.Detect("@Override std::string", ""))
}

func TestDetector_Unknown(t *testing.T) {
	t.Parallel()

	d := NewDetector()
	assert.Equal(t, extraction.Unknown, d.Detect("", ""))
	assert.Equal(t, extraction.Unknown, d.Detect("just some prose", "README"))
}

func TestDetector_Fixtures(t *testing.T) {
	t.Parallel()

	d := NewDetector()
	tests := []struct {
		path string
		want extraction.Language
	}{
		{"../../testdata/code/python/inventory.py", extraction.Python},
		{"../../testdata/code/java/Greeter.java", extraction.Java},
		{"../../testdata/code/cpp/counter.cpp", extraction.Cpp},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Detect(readFixture(t, tt.path), ""), tt.path)
	}
}

func TestLanguageForFilename(t *testing.T) {
	t.Parallel()

	lang, ok := LanguageForFilename("x.Py")
	assert.True(t, ok)
	assert.Equal(t, extraction.Python, lang)

	_, ok = LanguageForFilename("x.rs")
	assert.False(t, ok)

	_, ok = LanguageForFilename("")
	assert.False(t, ok)

	exts := Extensions()
	sort.Strings(exts)
	assert.Equal(t, []string{".c", ".cc", ".cpp", ".cxx", ".h", ".hpp", ".java", ".py"}, exts)
}
