package phone_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/logictrix/resume-screener/internal/screening/phone"
)

func TestStandardize(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare ten digits", "7285868035", "+91-7285868035"},
		{"plus prefixed", "+917285868035", "+91-7285868035"},
		{"bare code prefixed", "917285868035", "+91-7285868035"},
		{"grouped five five", "72858 68035", "+91-7285868035"},
		{"parenthesized code", "(91) 72858 68035", "+91-7285868035"},
		{"plus with hyphen groups", "+91-7285-868-035", "+91-7285868035"},
		{"too short passes through", "12345", "12345"},
		{"too long passes through", "728586803512345", "728586803512345"},
		{"marker passes through", "N/A", "N/A"},
		{"empty passes through", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, phone.Standardize(tc.in))
		})
	}
}

func TestStandardize_CustomCountryCode(t *testing.T) {
	t.Parallel()
	n := phone.Normalizer{CountryCode: "44"}
	assert.Equal(t, "+44-7285868035", n.Standardize("7285868035"))
	assert.Equal(t, "+44-7285868035", n.Standardize("+447285868035"))
	// A +91 token does not match a +44 normalizer and passes through.
	assert.Equal(t, "+917285868035", n.Standardize("+917285868035"))
}
