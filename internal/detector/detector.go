// Package detector wraps lingua-go language detection behind a small API
// returning ISO 639-1 codes. Building the detector is expensive; construct
// it once and reuse it.
package detector

import (
	lingua "github.com/pemistahl/lingua-go"
)

type Detector struct {
	det lingua.LanguageDetector
}

// New builds a detector over all languages lingua supports.
func New() *Detector {
	return &Detector{
		det: lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build(),
	}
}

// DetectISO returns the ISO 639-1 code of the most likely language of text,
// or false when the text is empty or the language cannot be determined.
func (d *Detector) DetectISO(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	lang, ok := d.det.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}
