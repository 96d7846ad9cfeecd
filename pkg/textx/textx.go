// Package textx provides small text utilities used across the project.
//
// The model's markdown-flavored output is scrubbed here before any
// line-oriented parsing happens, so the extraction rules never have to
// know about emphasis markers or bullet glyph variants.
package textx

import (
	"regexp"
	"strings"
)

// NotAvailable is the marker for a single-value field that could not be found.
const NotAvailable = "N/A"

var (
	// Emphasis pairs never span lines; a lone "*" bullet glyph must not be
	// eaten by a match starting on the next list item.
	boldRe      = regexp.MustCompile(`\*\*([^*\n]*)\*\*`)
	italicRe    = regexp.MustCompile(`\*([^*\n]+)\*`)
	underlineRe = regexp.MustCompile(`__([^_\n]*)__`)
	backtickRe  = regexp.MustCompile("`([^`\n]*)`")
	bulletRe    = regexp.MustCompile(`^[\s]*[•◦‣·∙*+]+[\s]+`)
	spaceRe     = regexp.MustCompile(`[ \t]{2,}`)
)

// edgeCutset lists structural punctuation trimmed from field value edges.
// Periods are kept; sentences keep their terminators.
const edgeCutset = " \t\r\n[]{}()\"',:;-*_`"

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// StripEmphasis removes markdown emphasis and code markers, keeping the
// wrapped text.
func StripEmphasis(s string) string {
	s = boldRe.ReplaceAllString(s, "$1")
	s = italicRe.ReplaceAllString(s, "$1")
	s = underlineRe.ReplaceAllString(s, "$1")
	s = backtickRe.ReplaceAllString(s, "$1")
	return s
}

// CleanValue cleans a single-value field: emphasis stripped, structural
// punctuation trimmed from both edges, inner runs of whitespace collapsed.
// An empty result degrades to NotAvailable so callers always hold a
// printable value.
func CleanValue(s string) string {
	s = StripEmphasis(SanitizeText(s))
	s = strings.Trim(s, edgeCutset)
	s = spaceRe.ReplaceAllString(s, " ")
	if s == "" {
		return NotAvailable
	}
	return s
}

// CleanBlock cleans a multi-line field: each line is emphasis-stripped and
// bullet-normalized, blank lines are dropped, and the result joins with
// newlines. An empty result stays empty; block callers treat "" as absent.
func CleanBlock(s string) string {
	s = StripEmphasis(SanitizeText(s))
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		ln = NormalizeBullet(ln)
		ln = strings.TrimRight(ln, " \t")
		if strings.TrimSpace(ln) == "" {
			continue
		}
		out = append(out, ln)
	}
	return strings.Join(out, "\n")
}

// NormalizeBullet rewrites a leading bullet glyph ("•", "◦", "*", "o ", ...)
// to the canonical "- " form. Lines without a bullet pass through with
// leading whitespace trimmed.
func NormalizeBullet(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if bulletRe.MatchString(line) {
		return "- " + strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
	}
	if strings.HasPrefix(trimmed, "- ") {
		return "- " + strings.TrimSpace(trimmed[2:])
	}
	// "o " is a common OCR bullet artifact
	if strings.HasPrefix(trimmed, "o ") && len(trimmed) > 2 {
		return "- " + strings.TrimSpace(trimmed[2:])
	}
	return trimmed
}
