package parsers

import "strings"

// extractPythonComments recovers "#" comments and single-line triple-quoted literals.
//
// A "#" counts as a comment only outside a multi-line string and when the text before it
// holds an even number of each quote character. A line with exactly one triple-quote
// delimiter opens or closes a multi-line string; two or more on one line is a
// self-contained literal and is recorded as a comment.
func extractPythonComments(lines []string) []string {
	comments := []string{}
	inMultiline := false

	for _, line := range lines {
		stripped := strings.TrimSpace(line)

		if !inMultiline {
			if idx := strings.Index(line, "#"); idx >= 0 {
				before := line[:idx]
				if strings.Count(before, `"`)%2 == 0 && strings.Count(before, "'")%2 == 0 {
					comments = append(comments, strings.TrimSpace(line[idx:]))
				}
			}
		}

		delimiter := ""
		switch {
		case strings.Contains(stripped, `"""`):
			delimiter = `"""`
		case strings.Contains(stripped, `'''`):
			delimiter = `'''`
		}
		if delimiter == "" {
			continue
		}

		if n := strings.Count(stripped, delimiter); n == 1 {
			inMultiline = !inMultiline
		} else if !inMultiline {
			comments = append(comments, stripped)
		}
	}

	return comments
}
