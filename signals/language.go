package signals

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LanguageDetector detects the language of a text sample, returning a
// lowercase ISO 639-1 code or "unknown" when detection is not confident.
type LanguageDetector struct {
	detector lingua.LanguageDetector
}

func NewLanguageDetector() *LanguageDetector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Spanish,
			lingua.French,
			lingua.German,
			lingua.Portuguese,
			lingua.Hindi,
		).
		Build()
	return &LanguageDetector{detector: detector}
}

func (d *LanguageDetector) Detect(text string) string {
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "unknown"
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
