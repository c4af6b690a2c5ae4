package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/mvp-joe/codelens/internal/extraction"
	"github.com/mvp-joe/codelens/internal/scan"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q (valid: text, json, yaml)", format)
	}
}

// parseOutput is the structured form of a single parse.
type parseOutput struct {
	Summary               extraction.Summary `json:"summary" yaml:"summary"`
	extraction.ParsedCode `yaml:",inline"`
	Annotations           map[int][]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// fileOutput is the structured form of one scanned file.
type fileOutput struct {
	Path    string              `json:"path" yaml:"path"`
	Summary *extraction.Summary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Skipped bool                `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Error   string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// reportOutput is the structured form of a scan.
type reportOutput struct {
	Files  []fileOutput `json:"files" yaml:"files"`
	Totals scan.Totals  `json:"totals" yaml:"totals"`
}

func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// writeParsed renders a single parse result.
func writeParsed(w io.Writer, format string, result *extraction.ParsedCode, annotations bool) error {
	if format != formatText {
		out := parseOutput{Summary: result.Summary(), ParsedCode: *result}
		if annotations {
			out.Annotations = result.LineAnnotations()
		}
		return writeStructured(w, format, out)
	}

	writeSummaryText(w, result.Summary())

	if len(result.Elements) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ELEMENT\tNAME\tLINES")
		for _, el := range rootElements(result.Elements) {
			writeElementRow(tw, el, 0)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	writeList(w, "Imports", result.Imports)
	writeList(w, "Variables", result.Variables)
	writeList(w, "Comments", result.Comments)

	if annotations {
		writeAnnotatedSource(w, result)
	}
	return nil
}

func writeSummaryText(w io.Writer, s extraction.Summary) {
	fmt.Fprintf(w, "Language:         %s\n", s.Language)
	fmt.Fprintf(w, "Lines:            %s\n", formatNumber(s.TotalLines))
	fmt.Fprintf(w, "Functions:        %d\n", s.NumFunctions)
	fmt.Fprintf(w, "Classes:          %d\n", s.NumClasses)
	fmt.Fprintf(w, "Imports:          %d\n", s.NumImports)
	fmt.Fprintf(w, "Variables:        %d\n", s.NumVariables)
	fmt.Fprintf(w, "Complexity score: %d\n", s.ComplexityScore)
}

// rootElements returns the elements no other element lists as a child.
func rootElements(elements []*extraction.CodeElement) []*extraction.CodeElement {
	nested := make(map[*extraction.CodeElement]bool)
	for _, el := range elements {
		for _, child := range el.Children {
			nested[child] = true
		}
	}
	roots := make([]*extraction.CodeElement, 0, len(elements))
	for _, el := range elements {
		if !nested[el] {
			roots = append(roots, el)
		}
	}
	return roots
}

func writeElementRow(w io.Writer, el *extraction.CodeElement, depth int) {
	lines := fmt.Sprintf("%d", el.LineStart)
	if el.LineEnd != el.LineStart {
		lines = fmt.Sprintf("%d-%d", el.LineStart, el.LineEnd)
	}
	fmt.Fprintf(w, "%s%s\t%s\t%s\n", strings.Repeat("  ", depth), el.Type, el.Name, lines)
	for _, child := range el.Children {
		writeElementRow(w, child, depth+1)
	}
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  %s\n", item)
	}
}

// writeAnnotatedSource prints the source with element labels beside their first line.
func writeAnnotatedSource(w io.Writer, result *extraction.ParsedCode) {
	annotations := result.LineAnnotations()
	width := len(fmt.Sprintf("%d", result.TotalLines()))

	fmt.Fprintln(w, "\nSource:")
	for n := 1; n <= result.TotalLines(); n++ {
		line := result.GetLine(n)
		if labels, ok := annotations[n]; ok {
			fmt.Fprintf(w, "%*d | %s    <- %s\n", width, n, line, strings.Join(labels, ", "))
			continue
		}
		fmt.Fprintf(w, "%*d | %s\n", width, n, line)
	}
}

// writeReport renders a scan report. Paths are shown relative to root when possible.
func writeReport(w io.Writer, format, root string, report *scan.Report) error {
	if format != formatText {
		out := reportOutput{Files: make([]fileOutput, 0, len(report.Files)), Totals: report.Totals}
		for _, f := range report.Files {
			out.Files = append(out.Files, newFileOutput(root, f))
		}
		return writeStructured(w, format, out)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tLANGUAGE\tLINES\tFUNCTIONS\tCLASSES\tSCORE\tSTATUS")
	for _, f := range report.Files {
		path := relPath(root, f.Path)
		switch {
		case f.Skipped():
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\tskipped\n", path)
		case f.Err != nil:
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\terror: %v\n", path, f.Err)
		default:
			s := f.Result.Summary()
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\tok\n",
				path, s.Language, s.TotalLines, s.NumFunctions, s.NumClasses, s.ComplexityScore)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	writeTotalsText(w, report.Totals)
	return nil
}

func writeTotalsText(w io.Writer, t scan.Totals) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files:            %s (%d parsed, %d skipped, %d failed)\n",
		formatNumber(t.Files), t.Parsed, t.Skipped, t.Failed)
	fmt.Fprintf(w, "Lines:            %s\n", formatNumber(t.Lines))
	fmt.Fprintf(w, "Elements:         %s\n", formatNumber(t.Elements))
	fmt.Fprintf(w, "Functions:        %s\n", formatNumber(t.Functions))
	fmt.Fprintf(w, "Classes:          %s\n", formatNumber(t.Classes))
	fmt.Fprintf(w, "Complexity score: %s\n", formatNumber(t.ComplexityScore))

	if len(t.Languages) > 0 {
		langs := make([]string, 0, len(t.Languages))
		for lang, n := range t.Languages {
			langs = append(langs, fmt.Sprintf("%s=%d", lang, n))
		}
		sort.Strings(langs)
		fmt.Fprintf(w, "Languages:        %s\n", strings.Join(langs, " "))
	}
}

func newFileOutput(root string, f scan.FileResult) fileOutput {
	out := fileOutput{Path: relPath(root, f.Path)}
	switch {
	case f.Skipped():
		out.Skipped = true
	case f.Err != nil:
		out.Error = f.Err.Error()
	default:
		s := f.Result.Summary()
		out.Summary = &s
	}
	return out
}

func relPath(root, path string) string {
	if root == "" {
		return path
	}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

// formatNumber adds thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
