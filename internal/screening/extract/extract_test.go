package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logictrix/resume-screener/internal/domain"
	"github.com/logictrix/resume-screener/internal/screening/extract"
)

const summaryText = `Here is the requested summary.

**Name:** John A. Doe
Email: john.doe@example.com
Mobile Number - (91) 72858 68035
Qualification: *B.Tech in Computer Science*
Experience:
- Software Engineer, Acme Corp | Jan 2020 - Jun 2021
- Senior Engineer, Globex | Mar 2021 - Dec 2022
Skills: React, Redux, CSS, Go
Professional Evaluation: Strong fundamentals with steady growth
across two product teams.
Personal Evaluation: Communicates clearly.
Primary Role: Backend Developer
`

const matchText = `**Percentage Match:** 85%
Justification: The resume covers most of the required stack and
shows relevant project depth.
Missing Keywords:
- Kubernetes
- Terraform

Unrelated closing remark.
`

func TestParse_SummaryMode(t *testing.T) {
	t.Parallel()
	e := extract.MustNew()
	got := e.Parse(summaryText, domain.ModeSummary)

	assert.Equal(t, "John A. Doe", got["name"])
	assert.Equal(t, "john.doe@example.com", got["email"])
	assert.Equal(t, "(91) 72858 68035", got["phone"])
	assert.Equal(t, "B.Tech in Computer Science", got["qualification"])
	assert.Equal(t,
		"- Software Engineer, Acme Corp | Jan 2020 - Jun 2021\n- Senior Engineer, Globex | Mar 2021 - Dec 2022",
		got["experience"])
	assert.Equal(t, "React, Redux, CSS, Go", got["skills"])
	assert.Equal(t, "Strong fundamentals with steady growth across two product teams.", got["professional_evaluation"])
	assert.Equal(t, "Communicates clearly.", got["personal_evaluation"])
	assert.Equal(t, "Backend Developer", got["primary_role"])
}

func TestParse_MatchMode(t *testing.T) {
	t.Parallel()
	e := extract.MustNew()
	got := e.Parse(matchText, domain.ModeMatch)

	assert.Equal(t, "85", got["percentage_match"])
	assert.Equal(t, "The resume covers most of the required stack and shows relevant project depth.", got["justification"])
	assert.Equal(t, "- Kubernetes\n- Terraform", got["lacking"])
}

func TestParse_AllFieldsAlwaysPresent(t *testing.T) {
	t.Parallel()
	e := extract.MustNew()
	for _, mode := range []domain.Mode{domain.ModeSummary, domain.ModeMatch} {
		got := e.Parse("completely unrelated text with no labels at all", mode)
		require.Len(t, got, len(e.Fields(mode)))
		for _, f := range e.Fields(mode) {
			_, ok := got[f]
			assert.True(t, ok, "mode %s missing field %s", mode, f)
		}
	}
}

func TestParse_MissingFieldsDegradeToMarkers(t *testing.T) {
	t.Parallel()
	e := extract.MustNew()
	got := e.Parse("", domain.ModeSummary)
	assert.Equal(t, "N/A", got["name"])
	assert.Equal(t, "N/A", got["email"])
	assert.Equal(t, "N/A", got["phone"])
	assert.Equal(t, "", got["experience"])

	got = e.Parse("", domain.ModeMatch)
	assert.Equal(t, "N/A", got["percentage_match"])
	assert.Equal(t, "N/A", got["justification"])
	assert.Equal(t, "", got["lacking"])
}

func TestParse_LabelSynonyms(t *testing.T) {
	t.Parallel()
	e := extract.MustNew()
	cases := []struct {
		text  string
		field string
		want  string
	}{
		{"Contact: 7285868035", "phone", "7285868035"},
		{"Cell - 72858 68035", "phone", "72858 68035"},
		{"M No: 7285 868 035", "phone", "7285 868 035"},
		{"Education: MSc Data Science", "qualification", "MSc Data Science"},
		{"Designation: QA Lead", "primary_role", "QA Lead"},
	}
	for _, tc := range cases {
		got := e.Parse(tc.text, domain.ModeSummary)
		assert.Equal(t, tc.want, got[tc.field], "text %q", tc.text)
	}
}

func TestParse_PhoneRejectsUnboundedDigits(t *testing.T) {
	t.Parallel()
	e := extract.MustNew()
	// 9 digits, 11 digits, and word-adjacent runs are no match, not a guess.
	for _, text := range []string{"Phone: 123456789", "Phone: 12345678901", "Phone: id987654321x"} {
		got := e.Parse(text, domain.ModeSummary)
		assert.Equal(t, "N/A", got["phone"], "text %q", text)
	}
}

func TestParse_EmailRequiresSingleToken(t *testing.T) {
	t.Parallel()
	e := extract.MustNew()
	got := e.Parse("Email: not-an-address at example dot com", domain.ModeSummary)
	assert.Equal(t, "N/A", got["email"])
}

func TestParse_UnlabeledEmailFoundByScan(t *testing.T) {
	t.Parallel()
	e := extract.MustNew()
	got := e.Parse("Reach the candidate via jane_r@corp.io for follow-ups.", domain.ModeSummary)
	assert.Equal(t, "jane_r@corp.io", got["email"])
}

func TestParse_ValueOnFollowingLine(t *testing.T) {
	t.Parallel()
	e := extract.MustNew()
	got := e.Parse("Name:\nJane Roe\nEmail: jane@x.io", domain.ModeSummary)
	assert.Equal(t, "Jane Roe", got["name"])
}

func TestParse_BulletedLabelDoesNotCutBlock(t *testing.T) {
	t.Parallel()
	text := "Experience:\n- Role: Lead Dev, Initech | 2019 - 2021\n- Intern, Hooli | 2018\nSkills: Go"
	e := extract.MustNew()
	got := e.Parse(text, domain.ModeSummary)
	assert.Equal(t, "- Role: Lead Dev, Initech | 2019 - 2021\n- Intern, Hooli | 2018", got["experience"])
}

func TestParse_PercentWithoutSign(t *testing.T) {
	t.Parallel()
	e := extract.MustNew()
	got := e.Parse("Percentage Match: 72", domain.ModeMatch)
	assert.Equal(t, "72", got["percentage_match"])
}
