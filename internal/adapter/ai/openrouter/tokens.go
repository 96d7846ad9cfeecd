package openrouter

import (
	"log/slog"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

func encoding() *tiktoken.Tiktoken {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err != nil {
			slog.Warn("tiktoken encoding unavailable, using rune fallback", slog.Any("error", err))
			return
		}
		enc = e
	})
	return enc
}

// CountTokens reports how many tokens the text consumes under the
// cl100k_base encoding. Falls back to a rune estimate when the encoder
// cannot be loaded.
func CountTokens(text string) int {
	e := encoding()
	if e == nil {
		return len([]rune(text)) / 4
	}
	return len(e.Encode(text, nil, nil))
}

// TruncateToTokens trims text to at most budget tokens. A budget <= 0
// disables truncation.
func TruncateToTokens(text string, budget int) string {
	if budget <= 0 {
		return text
	}
	e := encoding()
	if e == nil {
		runes := []rune(text)
		if len(runes) <= budget*4 {
			return text
		}
		return string(runes[:budget*4])
	}
	ids := e.Encode(text, nil, nil)
	if len(ids) <= budget {
		return text
	}
	return e.Decode(ids[:budget])
}
