// Package parser turns diagram source text into the models in package diagram.
//
// Parsing is line oriented. Structural problems with the header abort the
// parse with an error wrapping one of the sentinels in errors.go; statements
// that match no rule are logged at debug level and skipped.
package parser

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Line is a trimmed, non-empty source line with its 1-based line number.
type Line struct {
	No   int
	Text string
}

// SplitLines trims every line and drops blank lines, %% comments and a
// leading --- front matter block.
func SplitLines(source string) []Line {
	raw := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	var out []Line
	inFrontMatter := false
	for i, text := range raw {
		text = strings.TrimSpace(text)
		if text == "---" && (inFrontMatter || len(out) == 0) {
			inFrontMatter = !inFrontMatter
			continue
		}
		if inFrontMatter || text == "" || strings.HasPrefix(text, "%%") {
			continue
		}
		out = append(out, Line{No: i + 1, Text: text})
	}
	return out
}

func discard() *log.Logger {
	return log.New(io.Discard)
}

// skip records an unrecognised statement.
func skip(logger *log.Logger, l Line, reason string) {
	logger.Debug("skipping line", "line", l.No, "text", l.Text, "reason", reason)
}

// unquote strips one pair of surrounding double quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

var brReplacer = strings.NewReplacer(
	"<br>", "\n", "<br/>", "\n", "<br />", "\n",
	"<BR>", "\n", "<BR/>", "\n", "<BR />", "\n",
)

// label normalises a display label: quotes are stripped and <br> tags
// become line breaks.
func label(s string) string {
	return brReplacer.Replace(unquote(s))
}
