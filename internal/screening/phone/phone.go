// Package phone canonicalizes extracted phone strings into a national format.
package phone

import "strings"

// DefaultCountryCode is the national dialing code assumed for bare numbers.
const DefaultCountryCode = "91"

// Normalizer reshapes phone strings around one country code. The zero
// value uses DefaultCountryCode.
type Normalizer struct {
	CountryCode string
}

func (n Normalizer) code() string {
	if n.CountryCode == "" {
		return DefaultCountryCode
	}
	return n.CountryCode
}

// Standardize strips grouping characters and reshapes recognized national
// forms to "+CC-NNNNNNNNNN". Unrecognized shapes pass through unchanged;
// digits are never fabricated and the function never fails.
func Standardize(s string) string {
	return Normalizer{}.Standardize(s)
}

// Standardize reshapes one phone string.
func (n Normalizer) Standardize(s string) string {
	cc := n.code()
	digits := keepDigitsAndPlus(s)
	switch {
	case len(digits) == len(cc)+11 && strings.HasPrefix(digits, "+"+cc):
		// "+917285868035" -> "+91-7285868035"
		return "+" + cc + "-" + digits[len(cc)+1:]
	case len(digits) == 10 && !strings.ContainsRune(digits, '+'):
		return "+" + cc + "-" + digits
	case len(digits) == len(cc)+10 && strings.HasPrefix(digits, cc):
		// "917285868035" -> "+91-7285868035"
		return "+" + cc + "-" + digits[len(cc):]
	default:
		return s
	}
}

func keepDigitsAndPlus(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
