// Package lang detects resume language and translates non-English text
// ahead of parsing.
package lang

import (
	"fmt"
	"strings"

	"github.com/RadhiFadlillah/whatlanggo"

	"github.com/logictrix/resume-screener/internal/domain"
)

// iso3to1 maps the detector's ISO 639-3 output to 639-1 for the
// languages we expect in uploads. Unmapped codes pass through.
var iso3to1 = map[string]string{
	"eng": "en", "hin": "hi", "spa": "es", "fra": "fr", "deu": "de",
	"por": "pt", "rus": "ru", "ara": "ar", "zho": "zh", "jpn": "ja",
	"kor": "ko", "ita": "it", "nld": "nl", "tur": "tr", "vie": "vi",
	"ind": "id", "ben": "bn", "tam": "ta", "tel": "te", "mar": "mr",
	"urd": "ur",
}

// Detector reports the dominant language of a text.
type Detector struct{}

// NewDetector constructs a Detector.
func NewDetector() *Detector { return &Detector{} }

// Detect returns an ISO 639-1 code for the text. Short or ambiguous
// inputs default to English so parsing proceeds untranslated.
func (d *Detector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "en"
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "en"
	}
	code := whatlanggo.LangToString(info.Lang)
	if iso1, ok := iso3to1[code]; ok {
		return iso1
	}
	return code
}

const translatePrompt = `You are a professional translator. Translate the following document to English. Preserve the line structure, bullet points, and any section labels exactly. Output only the translated text with no commentary.`

// ModelTranslator translates text to English through the hosted model.
type ModelTranslator struct {
	AI domain.AIClient
}

// NewModelTranslator constructs a ModelTranslator over the given client.
func NewModelTranslator(ai domain.AIClient) *ModelTranslator {
	return &ModelTranslator{AI: ai}
}

// Translate converts text to English. English input passes through
// unchanged without a model call.
func (t *ModelTranslator) Translate(ctx domain.Context, text, fromLang string) (string, error) {
	if fromLang == "" || fromLang == "en" {
		return text, nil
	}
	out, err := t.AI.Invoke(ctx, text, translatePrompt)
	if err != nil {
		return "", fmt.Errorf("op=lang.Translate from=%s: %w", fromLang, err)
	}
	return out, nil
}
