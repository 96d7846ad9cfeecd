// Package taxonomy classifies candidates into a fixed job-function taxonomy.
//
// Classification runs in three tiers: direct keyword rules on the primary
// role, a weighted scoring fallback over role plus skills, and a late
// justification-driven recovery pass for high-match records the first two
// tiers could not place. The keyword tables are data (keywords.yaml), not
// code.
package taxonomy

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/logictrix/resume-screener/internal/domain"
	"github.com/logictrix/resume-screener/pkg/textx"
)

//go:embed keywords.yaml
var keywordsYAML []byte

// ReclassifyThreshold is the minimum percentage match that lets the
// tier-3 pass inspect justification text.
const ReclassifyThreshold = 70

type ruleSpec struct {
	Category string   `yaml:"category"`
	Role     string   `yaml:"role"`
	Keywords []string `yaml:"keywords"`
}

type keywordsFile struct {
	Tier1 []ruleSpec `yaml:"tier1"`
	Tier2 []ruleSpec `yaml:"tier2"`
	Tier3 []ruleSpec `yaml:"tier3"`
}

type rule struct {
	category domain.Category
	role     string
	patterns []*regexp.Regexp
}

func (r rule) hits(text string) int {
	n := 0
	for _, p := range r.patterns {
		if p.MatchString(text) {
			n++
		}
	}
	return n
}

// Classifier holds the compiled keyword tables.
type Classifier struct {
	tier1 []rule
	tier2 []rule
	tier3 []rule
}

// New compiles the embedded keyword tables.
func New() (*Classifier, error) {
	var kf keywordsFile
	if err := yaml.Unmarshal(keywordsYAML, &kf); err != nil {
		return nil, fmt.Errorf("op=taxonomy.keywords: %w", err)
	}
	c := &Classifier{}
	for _, pair := range []struct {
		specs []ruleSpec
		dst   *[]rule
	}{{kf.Tier1, &c.tier1}, {kf.Tier2, &c.tier2}, {kf.Tier3, &c.tier3}} {
		for _, sp := range pair.specs {
			r := rule{category: domain.Category(sp.Category), role: sp.Role}
			for _, kw := range sp.Keywords {
				p, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
				if err != nil {
					return nil, fmt.Errorf("op=taxonomy.keywords: %q: %w", kw, err)
				}
				r.patterns = append(r.patterns, p)
			}
			*pair.dst = append(*pair.dst, r)
		}
	}
	return c, nil
}

// MustNew is New for wiring paths where the embedded table is known good.
func MustNew() *Classifier {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

// Categorize maps a free-text primary role and skills list to categories.
// The result is never empty; records no rule can place come back as
// Uncategorized.
func (c *Classifier) Categorize(primaryRole, skills string) []domain.Category {
	role := normalizeInput(primaryRole)
	sk := normalizeInput(skills)

	// Tier 1: direct rules on the role string, fixed priority order.
	if role != "" {
		for _, r := range c.tier1 {
			if r.hits(role) > 0 {
				return []domain.Category{r.category}
			}
		}
	}

	// Tier 2: weighted scoring over role and skills. Ties keep the
	// tier-1 priority order; a zero top score stays Uncategorized.
	best := domain.CategoryUncategorized
	bestScore := 0
	for _, r := range c.tier2 {
		score := 2*r.hits(role) + r.hits(sk)
		if score > bestScore {
			bestScore = score
			best = r.category
		}
	}
	return []domain.Category{best}
}

// Reclassify is the late tier-3 pass: once a match run has produced a
// percentage of at least ReclassifyThreshold and the record is still
// uncategorized or roleless, the justification text sometimes names the
// actual discipline. A hit assigns both the role label and the category.
// It never overrides a category tier 1 or 2 already assigned; best-effort
// recovery is not authoritative. Reports whether the record changed.
func (c *Classifier) Reclassify(rec *domain.ResumeSummary, m domain.MatchResult) bool {
	pct, err := strconv.Atoi(strings.TrimSpace(m.Percentage))
	if err != nil || pct < ReclassifyThreshold {
		return false
	}
	if !isUncategorized(rec.Categories) && roleKnown(rec.PrimaryRole) {
		return false
	}
	just := normalizeInput(m.Justification)
	if just == "" {
		return false
	}
	for _, r := range c.tier3 {
		if r.hits(just) == 0 {
			continue
		}
		changed := false
		if !roleKnown(rec.PrimaryRole) {
			rec.PrimaryRole = r.role
			changed = true
		}
		if isUncategorized(rec.Categories) {
			rec.Categories = []domain.Category{r.category}
			changed = true
		}
		return changed
	}
	return false
}

func isUncategorized(cats []domain.Category) bool {
	if len(cats) == 0 {
		return true
	}
	for _, c := range cats {
		if c != domain.CategoryUncategorized {
			return false
		}
	}
	return true
}

func roleKnown(role string) bool {
	return role != "" && role != textx.NotAvailable
}

func normalizeInput(s string) string {
	s = strings.TrimSpace(s)
	if s == textx.NotAvailable {
		return ""
	}
	return strings.ToLower(s)
}
