package placeholder_test

import (
	"strings"
	"testing"

	"github.com/valpere/transflow/internal/placeholder"
)

func TestProtectRestore_RoundTrip(t *testing.T) {
	texts := []string{
		"Click <b>Save</b> to continue.",
		"Use `go build` then run %s with {count} items.",
		"Plain text without any markup.",
		"Nested {{ .User.Name }} template.",
	}
	for _, text := range texts {
		protected, captured := placeholder.Protect(text)
		restored := placeholder.Restore(protected, captured)
		if restored != text {
			t.Errorf("round trip changed text:\n in  %q\n out %q", text, restored)
		}
	}
}

func TestProtect_ReplacesMarkup(t *testing.T) {
	protected, captured := placeholder.Protect("Press <kbd>Enter</kbd> now.")
	if strings.Contains(protected, "<kbd>") {
		t.Errorf("tag not protected: %q", protected)
	}
	if len(captured) != 2 {
		t.Errorf("expected 2 captured spans, got %d: %v", len(captured), captured)
	}
}

func TestProtect_NoMarkup(t *testing.T) {
	text := "Nothing to protect here."
	protected, captured := placeholder.Protect(text)
	if protected != text {
		t.Errorf("text without markup must be unchanged, got %q", protected)
	}
	if len(captured) != 0 {
		t.Errorf("expected no captured spans, got %v", captured)
	}
}

func TestRestore_UnknownTokenKept(t *testing.T) {
	restored := placeholder.Restore("text [[7]] more", []string{"<b>"})
	if restored != "text [[7]] more" {
		t.Errorf("out-of-range token must stay as-is, got %q", restored)
	}
}

func TestLost(t *testing.T) {
	protected, captured := placeholder.Protect("Press <b>Save</b> now.")
	if len(captured) != 2 {
		t.Fatalf("expected 2 captured spans, got %d", len(captured))
	}

	// Backend dropped the second token.
	mangled := strings.Replace(protected, "[[1]]", "", 1)
	lost := placeholder.Lost(mangled, captured)
	if len(lost) != 1 || lost[0] != "</b>" {
		t.Errorf("expected </b> reported lost, got %v", lost)
	}

	if lost := placeholder.Lost(protected, captured); len(lost) != 0 {
		t.Errorf("expected nothing lost in intact text, got %v", lost)
	}
}
