package experience_test

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/logictrix/resume-screener/internal/screening/experience"
)

func fixedCalc() experience.Calculator {
	return experience.Calculator{Ref: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)}
}

func TestTotalYears_EmptyInput(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, fixedCalc().TotalYears(""))
	assert.Equal(t, 0.0, fixedCalc().TotalYears("no dates here at all"))
}

func TestTotalYears_OverlappingPeriodsMerge(t *testing.T) {
	t.Parallel()
	text := "Engineer, Acme | Jan 2020 - Jun 2021\nSenior Engineer, Globex | Mar 2021 - Dec 2022"
	assert.Equal(t, 3.0, fixedCalc().TotalYears(text))
}

func TestTotalYears_DisjointBareYearsNotMerged(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 2.0, fixedCalc().TotalYears("2018\n2021"))
}

func TestTotalYears_OpenEndedAnchorsToReferenceDate(t *testing.T) {
	t.Parallel()
	// Jan 2022 through March 2025 is 39 months.
	assert.Equal(t, 3.25, fixedCalc().TotalYears("Jan 2022 - present"))
}

func TestTotalYears_OpenEndedSynonyms(t *testing.T) {
	t.Parallel()
	for _, text := range []string{
		"Jan 2022 - present",
		"Jan 2022 to ongoing",
		"Jan 2022 till date",
		"Jan 2022 - current",
	} {
		assert.Equal(t, 3.25, fixedCalc().TotalYears(text), "text %q", text)
	}
}

func TestTotalYears_MixedFormats(t *testing.T) {
	t.Parallel()
	// 01/2020 - 06/2021 is 18 months.
	assert.Equal(t, 1.5, fixedCalc().TotalYears("Developer | 01/2020 - 06/2021"))
	// 2019 - 2021 reads as Jan 2019 through Dec 2021.
	assert.Equal(t, 3.0, fixedCalc().TotalYears("2019 - 2021"))
}

func TestTotalYears_StartAfterEndDiscarded(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, fixedCalc().TotalYears("Jun 2022 - Jan 2020"))
}

func TestTotalYears_InvalidMonthSkipped(t *testing.T) {
	t.Parallel()
	// 13/2020 is not a month; the segment degrades to its bare-year
	// placeholder instead of failing.
	assert.Equal(t, 1.0, fixedCalc().TotalYears("13/2020 - 14/2020"))
}

func TestTotalYears_OrderInvariant(t *testing.T) {
	t.Parallel()
	periods := []string{
		"Jan 2015 - Dec 2016",
		"Mar 2016 - Jun 2017",
		"2019",
		"Jan 2021 - present",
	}
	want := fixedCalc().TotalYears(strings.Join(periods, "\n"))
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]string(nil), periods...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, fixedCalc().TotalYears(strings.Join(shuffled, "\n")))
	}
}

func TestTotalYears_TouchingIntervalsMerge(t *testing.T) {
	t.Parallel()
	// Jun 2021 ends the first span; Jul 2021 starts the second; no gap.
	assert.Equal(t, 2.0, fixedCalc().TotalYears("Jan 2020 - Jun 2021\nJul 2021 - Dec 2021"))
}

func TestTotalYears_SingleOpenEndedIsValid(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.25, fixedCalc().TotalYears("Jan 2025 - present"))
}

func TestTotalYears_FullMonthNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1.0, fixedCalc().TotalYears("January 2020 - December 2020"))
	assert.Equal(t, 0.5, fixedCalc().TotalYears("Sept 2020 - Feb 2021"))
}
