package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/codelens/internal/extraction"
)

var (
	fallbackFunctionPattern = regexp.MustCompile(`^def\s+(\w+)\s*\(`)
	fallbackClassPattern    = regexp.MustCompile(`^class\s+(\w+)`)
)

// extractPythonFallback scans Python lines independently when the grammar parse fails.
// Each header found becomes a single-line element worth one point. It never fails.
func extractPythonFallback(lines []string) *extractResult {
	result := newExtractResult()

	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		lineNum := i + 1

		if m := fallbackFunctionPattern.FindStringSubmatch(stripped); m != nil {
			result.add(singleLineElement(extraction.ElementFunction, m[1], lineNum, line), 1)
		}
		if m := fallbackClassPattern.FindStringSubmatch(stripped); m != nil {
			result.add(singleLineElement(extraction.ElementClass, m[1], lineNum, line), 1)
		}

		if strings.HasPrefix(stripped, "import ") || strings.HasPrefix(stripped, "from ") {
			result.Imports = append(result.Imports, stripped)
		}
		if idx := strings.Index(line, "#"); idx >= 0 {
			result.Comments = append(result.Comments, line[idx:])
		}
	}

	return result
}

func singleLineElement(typ extraction.ElementType, name string, lineNum int, line string) *extraction.CodeElement {
	return &extraction.CodeElement{
		Type:        typ,
		Name:        name,
		LineStart:   lineNum,
		LineEnd:     lineNum,
		CodeSnippet: line,
	}
}
