package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mvp-joe/codelens/internal/extraction"
	"github.com/spf13/cobra"
)

var (
	parseLanguageFlag    string
	parseFilenameFlag    string
	parseFormatFlag      string
	parseAnnotationsFlag bool
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Extract the structure of a single source file",
	Long: `Parse reads one source file (or standard input when the argument is "-" or
omitted) and prints its functions, classes, control structures, imports,
variables, comments and complexity score.

The language is taken from --language, then from parser.default_language in
the configuration, and is otherwise detected from the file extension and
content.

Examples:
  # Parse a file and print a table
  codelens parse app.py

  # Emit JSON with per-line element labels
  codelens parse --format json --annotations Main.java

  # Parse standard input, using a filename hint for detection
  cat util.hpp | codelens parse --filename util.hpp
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseLanguageFlag, "language", "l", "", "force a language (python, java, cpp)")
	parseCmd.Flags().StringVar(&parseFilenameFlag, "filename", "", "filename used for language detection (defaults to the file argument)")
	parseCmd.Flags().StringVarP(&parseFormatFlag, "format", "f", formatText, "output format: text, json or yaml")
	parseCmd.Flags().BoolVar(&parseAnnotationsFlag, "annotations", false, "include per-line element labels")
}

// parseOptions holds the resolved inputs of a parse invocation.
type parseOptions struct {
	path        string // "" or "-" reads stdin
	language    string
	filename    string
	format      string
	annotations bool
}

func runParse(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	opts := parseOptions{
		language:    parseLanguageFlag,
		filename:    parseFilenameFlag,
		format:      parseFormatFlag,
		annotations: parseAnnotationsFlag,
	}
	if len(args) == 1 {
		opts.path = args[0]
	}

	return executeParse(cmd.InOrStdin(), cmd.OutOrStdout(), env, opts)
}

// executeParse contains the parse logic without cobra wiring.
func executeParse(stdin io.Reader, w io.Writer, env *environment, opts parseOptions) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}

	lang := env.cfg.Language()
	if opts.language != "" {
		lang = extraction.ParseLanguage(opts.language)
		if lang == "" {
			return fmt.Errorf("unknown language %q (valid: python, java, cpp)", opts.language)
		}
	}

	var data []byte
	var err error
	if opts.path == "" || opts.path == "-" {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("failed to read standard input: %w", err)
		}
	} else {
		info, statErr := os.Stat(opts.path)
		if statErr != nil {
			return fmt.Errorf("failed to stat %s: %w", opts.path, statErr)
		}
		if limit := env.cfg.Parser.MaxFileBytes; limit > 0 && info.Size() > limit {
			return fmt.Errorf("%s is %d bytes, above the %d byte limit", opts.path, info.Size(), limit)
		}
		data, err = os.ReadFile(opts.path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", opts.path, err)
		}
	}

	filename := opts.filename
	if filename == "" && opts.path != "-" {
		filename = opts.path
	}

	result := env.parser.Parse(string(data), lang, filename)
	return writeParsed(w, opts.format, result, opts.annotations)
}
