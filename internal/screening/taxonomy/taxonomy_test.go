package taxonomy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/logictrix/resume-screener/internal/domain"
	"github.com/logictrix/resume-screener/internal/screening/taxonomy"
)

func TestCategorize_Tier1FirstMatchWins(t *testing.T) {
	t.Parallel()
	c := taxonomy.MustNew()
	cases := []struct {
		role   string
		skills string
		want   domain.Category
	}{
		// Testing outranks every other plausible keyword in the role.
		{"Quality Assurance Engineer", "selenium, pytest", domain.CategoryTesting},
		{"QA Automation Engineer with React experience", "react", domain.CategoryTesting},
		{"Full Stack Developer", "", domain.CategoryFullStack},
		{"Machine Learning Engineer", "", domain.CategoryAIML},
		{"React Developer", "", domain.CategoryFrontend},
		{"Java Developer", "", domain.CategoryBackend},
		{"Android Developer", "", domain.CategoryMobile},
		{"AWS Cloud Engineer", "", domain.CategoryCloudEngineer},
		{"DevOps Engineer", "", domain.CategoryDevOps},
		{"HR Manager", "", domain.CategoryHR},
	}
	for _, tc := range cases {
		got := c.Categorize(tc.role, tc.skills)
		assert.Equal(t, []domain.Category{tc.want}, got, "role %q", tc.role)
	}
}

func TestCategorize_Deterministic(t *testing.T) {
	t.Parallel()
	c := taxonomy.MustNew()
	for i := 0; i < 20; i++ {
		got := c.Categorize("Quality Assurance Engineer", "selenium, pytest")
		assert.Equal(t, []domain.Category{domain.CategoryTesting}, got)
	}
}

func TestCategorize_Tier2ScoringFallback(t *testing.T) {
	t.Parallel()
	c := taxonomy.MustNew()
	got := c.Categorize("", "react, redux, css")
	assert.Equal(t, []domain.Category{domain.CategoryFrontend}, got)
}

func TestCategorize_Tier2RoleHitsWeighHeavier(t *testing.T) {
	t.Parallel()
	c := taxonomy.MustNew()
	// "selenium" in the role (+2) beats a single skills hit (+1).
	got := c.Categorize("selenium specialist", "css")
	assert.Equal(t, []domain.Category{domain.CategoryTesting}, got)
}

func TestCategorize_NoSignalIsUncategorized(t *testing.T) {
	t.Parallel()
	c := taxonomy.MustNew()
	assert.Equal(t, []domain.Category{domain.CategoryUncategorized}, c.Categorize("", ""))
	assert.Equal(t, []domain.Category{domain.CategoryUncategorized}, c.Categorize("N/A", "N/A"))
	assert.Equal(t, []domain.Category{domain.CategoryUncategorized}, c.Categorize("Ship Captain", "navigation"))
}

func TestReclassify_AssignsRoleAndCategory(t *testing.T) {
	t.Parallel()
	c := taxonomy.MustNew()
	rec := domain.ResumeSummary{
		PrimaryRole: "N/A",
		Categories:  []domain.Category{domain.CategoryUncategorized},
	}
	m := domain.MatchResult{
		Percentage:    "85",
		Justification: "Strong hands-on testing and automation background with Selenium.",
	}
	assert.True(t, c.Reclassify(&rec, m))
	assert.Equal(t, "QA Engineer", rec.PrimaryRole)
	assert.Equal(t, []domain.Category{domain.CategoryTesting}, rec.Categories)
}

func TestReclassify_BelowThresholdDoesNothing(t *testing.T) {
	t.Parallel()
	c := taxonomy.MustNew()
	rec := domain.ResumeSummary{Categories: []domain.Category{domain.CategoryUncategorized}}
	m := domain.MatchResult{Percentage: "69", Justification: "testing and automation"}
	assert.False(t, c.Reclassify(&rec, m))
	assert.Equal(t, []domain.Category{domain.CategoryUncategorized}, rec.Categories)
}

func TestReclassify_NeverOverridesAssignedCategory(t *testing.T) {
	t.Parallel()
	c := taxonomy.MustNew()
	rec := domain.ResumeSummary{
		PrimaryRole: "N/A",
		Categories:  []domain.Category{domain.CategoryBackend},
	}
	m := domain.MatchResult{Percentage: "90", Justification: "deep react and frontend work"}
	c.Reclassify(&rec, m)
	assert.Equal(t, []domain.Category{domain.CategoryBackend}, rec.Categories)
	// The empty role may still be filled in.
	assert.Equal(t, "Frontend Developer", rec.PrimaryRole)
}

func TestReclassify_CompleteRecordUntouched(t *testing.T) {
	t.Parallel()
	c := taxonomy.MustNew()
	rec := domain.ResumeSummary{
		PrimaryRole: "Backend Developer",
		Categories:  []domain.Category{domain.CategoryBackend},
	}
	m := domain.MatchResult{Percentage: "95", Justification: "testing automation selenium"}
	assert.False(t, c.Reclassify(&rec, m))
	assert.Equal(t, "Backend Developer", rec.PrimaryRole)
}

func TestReclassify_NonNumericPercentage(t *testing.T) {
	t.Parallel()
	c := taxonomy.MustNew()
	rec := domain.ResumeSummary{Categories: []domain.Category{domain.CategoryUncategorized}}
	assert.False(t, c.Reclassify(&rec, domain.MatchResult{Percentage: "N/A", Justification: "python flask"}))
}
