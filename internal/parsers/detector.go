package parsers

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mvp-joe/codelens/internal/extraction"
)

// extensionLanguages maps lowercase file extensions to languages.
// An extension hit is authoritative and skips content scoring.
var extensionLanguages = map[string]extraction.Language{
	".py":   extraction.Python,
	".java": extraction.Java,
	".cpp":  extraction.Cpp,
	".cc":   extraction.Cpp,
	".cxx":  extraction.Cpp,
	".c":    extraction.Cpp,
	".h":    extraction.Cpp,
	".hpp":  extraction.Cpp,
}

// languageSignature is a set of patterns whose matches vote for one language.
type languageSignature struct {
	language extraction.Language
	patterns []*regexp.Regexp
}

// signatures are scored in this order; the first language reaching the maximum wins ties.
var signatures = []languageSignature{
	{
		language: extraction.Python,
		patterns: compileAll(
			`(?m)^\s*def\s+\w+\s*\(`,
			`(?m)^\s*class\s+\w+.*:`,
			`(?m)^\s*import\s+\w+`,
			`(?m)^\s*from\s+\w+\s+import`,
			`print\s*\(`,
			`(?m):\s*$`,
		),
	},
	{
		language: extraction.Java,
		patterns: compileAll(
			`public\s+class\s+\w+`,
			`public\s+static\s+void\s+main`,
			`private\s+\w+\s+\w+;`,
			`System\.out\.println`,
			`import\s+java\.`,
			`@Override`,
		),
	},
	{
		language: extraction.Cpp,
		patterns: compileAll(
			`#include\s*<`,
			`#include\s*"`,
			`using\s+namespace\s+std`,
			`int\s+main\s*\(`,
			`std::`,
			`cout\s*<<`,
			`cin\s*>>`,
		),
	},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

// Detector infers the language of source text.
type Detector struct{}

// NewDetector creates a language detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the language for code. A recognized filename extension wins outright;
// otherwise each language scores one point per signature that matches anywhere in the text.
// A zero best score yields extraction.Unknown.
func (d *Detector) Detect(code, filename string) extraction.Language {
	if lang, ok := LanguageForFilename(filename); ok {
		return lang
	}

	best := extraction.Unknown
	bestScore := 0
	for _, sig := range signatures {
		score := sig.score(code)
		if score > bestScore {
			best = sig.language
			bestScore = score
		}
	}
	return best
}

// Scores reports the per-language signature score for code.
func (d *Detector) Scores(code string) map[extraction.Language]int {
	scores := make(map[extraction.Language]int, len(signatures))
	for _, sig := range signatures {
		scores[sig.language] = sig.score(code)
	}
	return scores
}

func (s languageSignature) score(code string) int {
	score := 0
	for _, p := range s.patterns {
		if p.MatchString(code) {
			score++
		}
	}
	return score
}

// LanguageForFilename maps a filename's extension to a language.
func LanguageForFilename(filename string) (extraction.Language, bool) {
	if filename == "" {
		return "", false
	}
	lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(filename))]
	return lang, ok
}

// Extensions returns every file extension with a language mapping.
func Extensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}
	return exts
}
