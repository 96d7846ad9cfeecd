// Package experience reconciles overlapping employment periods into a
// single tenure figure.
//
// Period strings come straight out of the extracted Experience field and
// arrive in mixed formats: "Jan 2020 - Jun 2021", "01/2020 - 06/2021",
// "2019 - 2021", "Jan 2022 - present". Everything is parsed at month
// precision; unparseable periods are skipped, never fatal.
package experience

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	sidePat = `(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s*(?:19|20)\d{2}|\d{1,2}/(?:19|20)\d{2}|(?:19|20)\d{2})`
	// "date" alone covers "till date"/"to date", where the till/to is
	// consumed as the range separator.
	endPat = sidePat + `|present|till\s*date|ongoing|current|now|today|date`
)

var (
	rangeRe     = regexp.MustCompile(`(?i)(` + sidePat + `)\s*(?:-|–|—|to|till|until)\s*(` + endPat + `)`)
	monthYearRe = regexp.MustCompile(`(?i)^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s*((?:19|20)\d{2})$`)
	numericRe   = regexp.MustCompile(`^(\d{1,2})/((?:19|20)\d{2})$`)
	yearRe      = regexp.MustCompile(`^((?:19|20)\d{2})$`)
	presentRe   = regexp.MustCompile(`(?i)^(?:present|till\s*date|ongoing|current|now|today|date)$`)
	looseYearRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
)

var monthIndex = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// interval is a half-open month range: start inclusive, end exclusive,
// both as absolute month ordinals (year*12 + month-1).
type interval struct {
	start int
	end   int
}

// Calculator computes total tenure. Ref anchors open-ended "present"
// periods; a zero Ref falls back to wall-clock now, so tests inject a
// fixed date for determinism.
type Calculator struct {
	Ref time.Time
}

// TotalYears parses every period in the experience text, merges overlaps,
// and returns the cumulative non-overlapping tenure in years rounded to
// two decimals. Empty or unparseable input yields 0.
func (c Calculator) TotalYears(text string) float64 {
	ref := c.Ref
	if ref.IsZero() {
		ref = time.Now().UTC()
	}
	refOrd := ref.Year()*12 + int(ref.Month()) - 1

	intervals := make([]interval, 0, 8)
	for _, seg := range splitPeriods(text) {
		if iv, ok := parsePeriod(seg, refOrd); ok {
			intervals = append(intervals, iv)
		}
	}
	months := mergedMonths(intervals)
	return math.Round(float64(months)/12*100) / 100
}

// splitPeriods breaks the experience text into candidate period substrings
// on line breaks and the " | " role delimiter.
func splitPeriods(text string) []string {
	out := make([]string, 0, 8)
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		for _, seg := range strings.Split(line, " | ") {
			seg = strings.TrimSpace(seg)
			if seg != "" {
				out = append(out, seg)
			}
		}
	}
	return out
}

// parsePeriod locates a "start - end" range token in one segment. Segments
// without a range fall back to a single 4-digit year read as a Jan-Dec
// placeholder; that is a lossy approximation for malformed input, not an
// error. Pairs with start after end are discarded.
func parsePeriod(seg string, refOrd int) (interval, bool) {
	if m := rangeRe.FindStringSubmatch(seg); m != nil {
		start, okStart := parseSide(m[1])
		end, open, okEnd := parseEnd(m[2], refOrd)
		if okStart && okEnd {
			ex := end + 1
			if open {
				ex = end
			}
			if ex <= start {
				// start after end: discarded, no placeholder
				return interval{}, false
			}
			return interval{start: start, end: ex}, true
		}
		// malformed side: fall through to the year placeholder
	}
	if m := looseYearRe.FindStringSubmatch(seg); m != nil {
		y, _ := strconv.Atoi(m[1])
		return interval{start: y * 12, end: y*12 + 12}, true
	}
	return interval{}, false
}

// parseSide parses one side of a range to an absolute month ordinal.
// Month-name and MM/YYYY sides resolve to their month; a bare year
// resolves to January.
func parseSide(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if m := monthYearRe.FindStringSubmatch(s); m != nil {
		mon := monthIndex[strings.ToLower(m[1])[:3]]
		y, _ := strconv.Atoi(m[2])
		return y*12 + mon - 1, true
	}
	if m := numericRe.FindStringSubmatch(s); m != nil {
		mon, _ := strconv.Atoi(m[1])
		if mon < 1 || mon > 12 {
			return 0, false
		}
		y, _ := strconv.Atoi(m[2])
		return y*12 + mon - 1, true
	}
	if m := yearRe.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y * 12, true
	}
	return 0, false
}

// parseEnd parses the end side. Open-ended markers anchor to the reference
// month (exclusive, so "Jan 2022 - present" at ref Apr 2025 spans 39
// months). A bare-year end means through December of that year.
func parseEnd(s string, refOrd int) (end int, open bool, ok bool) {
	s = strings.TrimSpace(s)
	if presentRe.MatchString(s) {
		return refOrd, true, true
	}
	if m := yearRe.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y*12 + 11, false, true
	}
	ord, ok := parseSide(s)
	return ord, false, ok
}

// mergedMonths sorts intervals by start and sweeps, merging overlapping or
// touching ranges so concurrent roles are not double-counted.
func mergedMonths(ivs []interval) int {
	if len(ivs) == 0 {
		return 0
	}
	sortIntervals(ivs)
	total := 0
	cur := ivs[0]
	for _, iv := range ivs[1:] {
		if iv.start <= cur.end {
			if iv.end > cur.end {
				cur.end = iv.end
			}
			continue
		}
		total += cur.end - cur.start
		cur = iv
	}
	total += cur.end - cur.start
	return total
}

func sortIntervals(ivs []interval) {
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].start < ivs[j].start })
}
