// Package extract turns unstructured model responses into typed fields.
//
// The model's output format is not contractually guaranteed, so every
// extraction is a best-effort parse: label matching is case-insensitive,
// tolerates optional emphasis wrappers and ":"/"-" separators, and each
// field recognizes a list of label synonyms. The synonym/pattern list is
// data (rules.yaml), not code.
package extract

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/logictrix/resume-screener/internal/domain"
	"github.com/logictrix/resume-screener/pkg/textx"
)

//go:embed rules.yaml
var rulesYAML []byte

type kind int

const (
	kindValue kind = iota
	kindBlock
	kindList
	kindParagraph
	kindEmail
	kindPhone
	kindPercent
)

var kindNames = map[string]kind{
	"value":     kindValue,
	"block":     kindBlock,
	"list":      kindList,
	"paragraph": kindParagraph,
	"email":     kindEmail,
	"phone":     kindPhone,
	"percent":   kindPercent,
}

type ruleSpec struct {
	Field  string   `yaml:"field"`
	Kind   string   `yaml:"kind"`
	Labels []string `yaml:"labels"`
}

type rulesFile struct {
	Summary []ruleSpec `yaml:"summary"`
	Match   []ruleSpec `yaml:"match"`
}

type rule struct {
	field   string
	kind    kind
	labelRe *regexp.Regexp
}

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	// Accepted phone shapes: 10 contiguous digits; grouped 5-5, 4-3-3,
	// 4-4-2; optional "+CC" or "(CC)" country-code prefix. Anything else
	// numeric-looking is no match, never a guess.
	phoneRe = regexp.MustCompile(`(?:^|[^0-9+(])((?:\(\+?\d{1,3}\)[\s-]?|\+\d{1,3}[\s-]?)?(?:\d{10}\b|\d{5}[\s-]\d{5}\b|\d{4}[\s-]\d{3}[\s-]\d{3}\b|\d{4}[\s-]\d{4}[\s-]\d{2}\b))`)
	percentRe = regexp.MustCompile(`(\d{1,3})\s*%`)
	bareNumRe = regexp.MustCompile(`^\s*(\d{1,3})\s*$`)
	bulletish = regexp.MustCompile(`^\s*[-•◦‣·∙*+]\s`)
)

// Extractor parses raw model text into a flat field map per mode.
type Extractor struct {
	rules map[domain.Mode][]rule
}

// New compiles the embedded rule table.
func New() (*Extractor, error) {
	var rf rulesFile
	if err := yaml.Unmarshal(rulesYAML, &rf); err != nil {
		return nil, fmt.Errorf("op=extract.rules: %w", err)
	}
	e := &Extractor{rules: make(map[domain.Mode][]rule, 2)}
	for mode, specs := range map[domain.Mode][]ruleSpec{domain.ModeSummary: rf.Summary, domain.ModeMatch: rf.Match} {
		compiled := make([]rule, 0, len(specs))
		for _, sp := range specs {
			k, ok := kindNames[sp.Kind]
			if !ok {
				return nil, fmt.Errorf("op=extract.rules: field %s: unknown kind %q", sp.Field, sp.Kind)
			}
			re, err := compileLabelRe(sp.Labels)
			if err != nil {
				return nil, fmt.Errorf("op=extract.rules: field %s: %w", sp.Field, err)
			}
			compiled = append(compiled, rule{field: sp.Field, kind: k, labelRe: re})
		}
		e.rules[mode] = compiled
	}
	return e, nil
}

// MustNew is New for wiring paths where the embedded table is known good.
func MustNew() *Extractor {
	e, err := New()
	if err != nil {
		panic(err)
	}
	return e
}

func compileLabelRe(labels []string) (*regexp.Regexp, error) {
	quoted := make([]string, 0, len(labels))
	for _, l := range labels {
		quoted = append(quoted, regexp.QuoteMeta(l))
	}
	// line prefix junk -> optional emphasis -> label synonym -> optional
	// emphasis -> optional separator -> remainder capture
	pat := `(?i)^[\s>#*-]*(?:\*\*|__|\*|_)?\s*(?:` + strings.Join(quoted, "|") + `)\b\s*(?:\*\*|__|\*|_)?\s*[:\-–]?\s*(?:\*\*|__|\*|_)?\s*(.*)$`
	return regexp.Compile(pat)
}

// Fields lists every field defined for the mode, in rule order.
func (e *Extractor) Fields(mode domain.Mode) []string {
	rules := e.rules[mode]
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.field)
	}
	return out
}

// Parse extracts every field defined for mode from the raw text. The
// returned map always contains every field: single-value kinds degrade to
// "N/A", multi-line kinds to "". A failure inside one field's pattern
// degrades that field alone.
func (e *Extractor) Parse(text string, mode domain.Mode) map[string]string {
	lines := splitLines(text)
	rules := e.rules[mode]
	out := make(map[string]string, len(rules))
	for _, r := range rules {
		out[r.field] = e.extractField(lines, rules, r, text)
	}
	return out
}

func missingMarker(k kind) string {
	if k == kindBlock || k == kindList {
		return ""
	}
	return textx.NotAvailable
}

func (e *Extractor) extractField(lines []string, all []rule, r rule, whole string) (val string) {
	// One malformed section must not blank the record.
	defer func() {
		if rec := recover(); rec != nil {
			val = missingMarker(r.kind)
		}
	}()

	idx, rest := findLabel(lines, r.labelRe)
	switch r.kind {
	case kindValue:
		if idx < 0 {
			return textx.NotAvailable
		}
		if strings.TrimSpace(rest) == "" && idx+1 < len(lines) && !isSectionStart(all, lines[idx+1]) {
			rest = lines[idx+1]
		}
		return textx.CleanValue(rest)
	case kindEmail:
		source := whole
		if idx >= 0 {
			source = rest
		}
		m := emailRe.FindString(source)
		if m == "" {
			return textx.NotAvailable
		}
		return m
	case kindPhone:
		source := whole
		if idx >= 0 {
			source = rest
		}
		// Returned verbatim: CleanValue would trim a leading "(91)"
		// country-code group; the phone normalizer owns reshaping.
		m := phoneRe.FindStringSubmatch(textx.StripEmphasis(source))
		if m == nil {
			return textx.NotAvailable
		}
		return strings.TrimSpace(m[1])
	case kindPercent:
		if idx >= 0 {
			if m := percentRe.FindStringSubmatch(rest); m != nil {
				return m[1]
			}
			if m := bareNumRe.FindStringSubmatch(rest); m != nil {
				return m[1]
			}
			return textx.NotAvailable
		}
		if m := percentRe.FindStringSubmatch(whole); m != nil {
			return m[1]
		}
		return textx.NotAvailable
	case kindParagraph:
		if idx < 0 {
			return textx.NotAvailable
		}
		chunk := collect(lines, idx, rest, all, true)
		return textx.CleanValue(strings.Join(chunk, " "))
	case kindList:
		if idx < 0 {
			return ""
		}
		chunk := collect(lines, idx, rest, all, true)
		return textx.CleanBlock(strings.Join(chunk, "\n"))
	case kindBlock:
		if idx < 0 {
			return ""
		}
		chunk := collect(lines, idx, rest, all, false)
		return textx.CleanBlock(strings.Join(chunk, "\n"))
	}
	return missingMarker(r.kind)
}

// collect gathers the value lines of a section starting at the label line.
// The same-line remainder, if any, is the first value line. Collection
// stops at the next recognized section label; when stopAtBlank is set a
// blank line ends the section too.
func collect(lines []string, idx int, rest string, all []rule, stopAtBlank bool) []string {
	out := make([]string, 0, 8)
	if strings.TrimSpace(rest) != "" {
		out = append(out, rest)
	}
	for i := idx + 1; i < len(lines); i++ {
		ln := lines[i]
		if strings.TrimSpace(ln) == "" {
			if stopAtBlank && len(out) > 0 {
				break
			}
			continue
		}
		if isSectionStart(all, ln) {
			break
		}
		out = append(out, ln)
	}
	return out
}

// findLabel returns the first line index matching the rule's label pattern
// and the same-line remainder after the separator.
func findLabel(lines []string, re *regexp.Regexp) (int, string) {
	for i, ln := range lines {
		if m := re.FindStringSubmatch(ln); m != nil {
			return i, m[1]
		}
	}
	return -1, ""
}

// isSectionStart reports whether the line opens another labeled section.
// Bulleted lines never do: a "- Role: ..." item inside an experience block
// belongs to the block, not to the primary_role field's section.
func isSectionStart(all []rule, line string) bool {
	if bulletish.MatchString(line) {
		return false
	}
	for _, r := range all {
		if r.labelRe.MatchString(line) {
			return true
		}
	}
	return false
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
