package cli

import (
	"strings"
)

// Glyphs picks the glyph set used when neither a flag nor the config file
// chose one.
type Glyphs int

const (
	GlyphsUnicode Glyphs = iota
	GlyphsASCII
)

// DetectGlyphs inspects the environment through getenv and reports which
// glyph set the terminal can display. TERMAID_GLYPHS=ascii|unicode wins
// over detection.
func DetectGlyphs(getenv func(string) string) Glyphs {
	switch strings.ToLower(getenv("TERMAID_GLYPHS")) {
	case "ascii":
		return GlyphsASCII
	case "unicode":
		return GlyphsUnicode
	}

	// Terminals known to draw box characters regardless of locale.
	if getenv("WT_SESSION") != "" || getenv("VTE_VERSION") != "" || getenv("KONSOLE_VERSION") != "" ||
		getenv("WEZTERM_EXECUTABLE") != "" {
		return GlyphsUnicode
	}
	switch getenv("TERM_PROGRAM") {
	case "iTerm.app", "Apple_Terminal", "vscode":
		return GlyphsUnicode
	}

	term := getenv("TERM")
	if term == "linux" || term == "dumb" {
		return GlyphsASCII
	}
	if !utf8Locale(getenv) {
		return GlyphsASCII
	}
	return GlyphsUnicode
}

// utf8Locale reports whether the first set locale variable names UTF-8,
// e.g. "en_US.UTF-8" or "C.utf8@euro".
func utf8Locale(getenv func(string) string) bool {
	for _, env := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		value := getenv(env)
		if value == "" {
			continue
		}
		upper := strings.ToUpper(value)
		return strings.Contains(upper, "UTF-8") || strings.Contains(upper, "UTF8")
	}
	return false
}
