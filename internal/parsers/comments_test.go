package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for extractPythonComments:
// - Full-line and trailing "#" comments are kept from the marker onward
// - "#" after an odd number of quotes is inside a string and ignored
// - Lines inside a multi-line string are skipped
// - Single-line triple-quoted literals are recorded verbatim (stripped)
// - Output is empty, never nil, when nothing matches

func TestExtractPythonComments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			name:  "full line and trailing",
			lines: []string{"# header", "x = 1  # note"},
			want:  []string{"# header", "# note"},
		},
		{
			name:  "hash inside string",
			lines: []string{`s = "a # b"`, `t = 'it''s # fine'`, `u = "x" # real`},
			want:  []string{"# real"},
		},
		{
			name: "multi-line string skipped",
			lines: []string{
				`doc = """`,
				`# not a comment`,
				`"""`,
				`# after`,
			},
			want: []string{"# after"},
		},
		{
			name:  "single-line triple quotes",
			lines: []string{`    """Docstring."""`, `x = '''raw'''`},
			want:  []string{`"""Docstring."""`, `x = '''raw'''`},
		},
		{
			name:  "nothing",
			lines: []string{"x = 1", ""},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractPythonComments(tt.lines))
		})
	}
}
