package textx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/logictrix/resume-screener/pkg/textx"
)

func TestSanitizeText_StripsControlChars(t *testing.T) {
	t.Parallel()
	in := "hello\x00world\n\tok\x7f"
	assert.Equal(t, "helloworld\n\tok", textx.SanitizeText(in))
}

func TestCleanValue(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "**John Doe**", "John Doe"},
		{"italic", "*B.Tech in CS*", "B.Tech in CS"},
		{"brackets", "[john@example.com]", "john@example.com"},
		{"trailing colon and comma", "Senior Engineer:,", "Senior Engineer"},
		{"inner spaces collapsed", "Java   Developer", "Java Developer"},
		{"empty degrades to marker", "", "N/A"},
		{"punct only degrades to marker", "-- :: --", "N/A"},
		{"keeps periods", "Led a team of 4.", "Led a team of 4."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, textx.CleanValue(tc.in))
		})
	}
}

func TestCleanValue_Idempotent(t *testing.T) {
	t.Parallel()
	inputs := []string{"**bold**", "  [x] ", "", "plain", "N/A", "* item *"}
	for _, in := range inputs {
		once := textx.CleanValue(in)
		assert.Equal(t, once, textx.CleanValue(once), "input %q", in)
	}
}

func TestCleanBlock_NormalizesBullets(t *testing.T) {
	t.Parallel()
	in := "• Python\n◦ Go\n* Docker\n\no Kubernetes\n   - AWS  "
	want := "- Python\n- Go\n- Docker\n- Kubernetes\n- AWS"
	assert.Equal(t, want, textx.CleanBlock(in))
}

func TestCleanBlock_EmptyStaysEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", textx.CleanBlock(""))
	assert.Equal(t, "", textx.CleanBlock("\n \n\t\n"))
}

func TestCleanBlock_Idempotent(t *testing.T) {
	t.Parallel()
	inputs := []string{"• a\n• b", "**x**\ny", "", "- kept"}
	for _, in := range inputs {
		once := textx.CleanBlock(in)
		assert.Equal(t, once, textx.CleanBlock(once), "input %q", in)
	}
}
