package parsers

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/codelens/internal/extraction"
	"go.uber.org/zap"
)

// Parser turns source text into an extraction.ParsedCode.
//
// A Parser holds no per-call state and is safe for concurrent use. Parse never fails:
// unknown languages yield an empty model and invalid Python falls back to line patterns.
type Parser struct {
	logger   *zap.Logger
	detector *Detector
	python   *pythonExtractor
	java     *patternExtractor
	cpp      *patternExtractor
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for debug output. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewParser creates a parser for every supported language.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		logger:   zap.NewNop(),
		detector: NewDetector(),
		python:   newPythonExtractor(),
		java:     newJavaExtractor(),
		cpp:      newCppExtractor(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Detect infers the language of code, honoring the filename extension first.
func (p *Parser) Detect(code, filename string) extraction.Language {
	return p.detector.Detect(code, filename)
}

// Parse extracts the structure of code. An empty lang asks for detection from the
// filename extension and then the content.
func (p *Parser) Parse(code string, lang extraction.Language, filename string) *extraction.ParsedCode {
	if lang == "" {
		lang = p.detector.Detect(code, filename)
	}

	lines := strings.Split(code, "\n")

	var result *extractResult
	switch lang {
	case extraction.Python:
		result = p.parsePython(code, lines)
	case extraction.Java:
		result = p.parsePattern(p.java, lines)
	case extraction.Cpp:
		result = p.parsePattern(p.cpp, lines)
	default:
		lang = extraction.Unknown
		result = newExtractResult()
	}

	return result.toParsedCode(lang, code, lines)
}

// parsePython runs the grammar extractor and falls back to line patterns on any failure.
func (p *Parser) parsePython(code string, lines []string) (result *extractResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("python extraction panicked, using line patterns",
				zap.String("panic", fmt.Sprint(r)))
			result = extractPythonFallback(lines)
		}
	}()

	result, err := p.python.Extract(code, lines)
	if err != nil {
		p.logger.Debug("python grammar parse failed, using line patterns", zap.Error(err))
		return extractPythonFallback(lines)
	}
	return result
}

func (p *Parser) parsePattern(ext *patternExtractor, lines []string) *extractResult {
	result := ext.Extract(lines)
	p.logger.Debug("pattern extraction complete",
		zap.String("language", string(ext.language)),
		zap.Int("elements", len(result.Elements)))
	return result
}
