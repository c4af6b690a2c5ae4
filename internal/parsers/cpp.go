package parsers

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/codelens/internal/extraction"
)

var (
	cppClassPattern    = regexp.MustCompile(`class\s+(\w+)`)
	cppFunctionPattern = regexp.MustCompile(`(?:void|int|float|double|char|bool|string|auto|\w+)\s+(\w+)\s*\([^)]*\)\s*(?:const)?\s*\{?`)
)

// newCppExtractor creates the line-pattern extractor for C and C++.
func newCppExtractor() *patternExtractor {
	classifiers := []lineClassifier{
		cppInclude,
		classHeader(cppClassPattern),
		functionHeader(cppFunctionPattern, cppClassPattern, isPreprocessor),
		slashComment,
	}
	return &patternExtractor{
		language:    extraction.Cpp,
		classifiers: append(classifiers, controlFlow()...),
	}
}

// cppInclude records #include directives verbatim.
func cppInclude(ln sourceLine, x *patternExtraction) {
	if strings.HasPrefix(ln.stripped, "#include") {
		x.result.Imports = append(x.result.Imports, ln.stripped)
	}
}

func isPreprocessor(stripped string) bool {
	return strings.HasPrefix(stripped, "#")
}
