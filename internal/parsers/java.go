package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/codelens/internal/extraction"
)

var (
	javaClassPattern  = regexp.MustCompile(`(?:public|private|protected)?\s*(?:abstract|final)?\s*class\s+(\w+)`)
	javaMethodPattern = regexp.MustCompile(`(?:public|private|protected)?\s*(?:static)?\s*(?:\w+)\s+(\w+)\s*\([^)]*\)\s*(?:throws\s+\w+)?\s*\{?`)
)

// newJavaExtractor creates the line-pattern extractor for Java.
func newJavaExtractor() *patternExtractor {
	classifiers := []lineClassifier{
		classHeader(javaClassPattern),
		functionHeader(javaMethodPattern, javaClassPattern, nil),
		javaImport,
		slashComment,
	}
	return &patternExtractor{
		language:    extraction.Java,
		classifiers: append(classifiers, controlFlow()...),
	}
}

// javaImport records the imported name without the keyword and trailing semicolons.
func javaImport(ln sourceLine, x *patternExtraction) {
	if !strings.HasPrefix(ln.stripped, "import ") {
		return
	}
	name := strings.TrimRight(strings.TrimPrefix(ln.stripped, "import "), ";")
	x.result.Imports = append(x.result.Imports, name)
}
