package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryComplete(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		role string
		want bool
	}{
		{"role present", "Backend Developer", true},
		{"empty role", "", false},
		{"marker role", "N/A", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := ResumeSummary{PrimaryRole: tt.role}
			assert.Equal(t, tt.want, s.Complete())
		})
	}
}

func TestMatchComplete(t *testing.T) {
	t.Parallel()
	assert.True(t, MatchResult{Percentage: "85"}.Complete())
	assert.False(t, MatchResult{Percentage: ""}.Complete())
	assert.False(t, MatchResult{Percentage: "N/A"}.Complete())
}

func TestCategoryConstants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		constant Category
		expected string
	}{
		{CategoryFrontend, "Frontend"},
		{CategoryBackend, "Backend"},
		{CategoryFullStack, "Full Stack"},
		{CategoryMobile, "Mobile"},
		{CategoryAIML, "AIML"},
		{CategoryTesting, "Testing"},
		{CategoryCloudEngineer, "Cloud Engineer"},
		{CategoryDevOps, "DevOps"},
		{CategoryHR, "HR"},
		{CategoryUncategorized, "Uncategorized"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, string(tt.constant))
	}
}

func TestModeConstants(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "summary", string(ModeSummary))
	assert.Equal(t, "match", string(ModeMatch))
}
