// Package validator sanity-checks machine translation output: a result that
// is empty or detectably written in the wrong language is rejected, which
// lets the pipeline treat it like any other translation failure.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/transflow/internal/detector"
)

// minCheckRunes is the minimum length at which language detection is
// attempted; shorter texts give unreliable results and pass unchecked.
const minCheckRunes = 20

type Validator struct {
	det *detector.Detector
}

func New() *Validator {
	return &Validator{det: detector.New()}
}

// Check returns nil when target appears to be written in targetLang.
// Empty results are always rejected. Texts too short to detect, and texts
// whose language is ambiguous, pass.
func (v *Validator) Check(target, targetLang string) error {
	if targetLang == "" {
		return nil
	}

	text := strings.TrimSpace(target)
	if text == "" {
		return fmt.Errorf("translation is empty")
	}
	if len([]rune(text)) < minCheckRunes {
		return nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return nil
	}
	if !strings.EqualFold(detected, targetLang) {
		return fmt.Errorf("expected %s but detected %s", targetLang, detected)
	}
	return nil
}
