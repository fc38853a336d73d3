package segmenter_test

import (
	"strings"
	"testing"

	"github.com/valpere/transflow/internal/segmenter"
)

func TestSegment_TwoSentences(t *testing.T) {
	units := segmenter.Segment("First sentence. Second sentence.")
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d: %v", len(units), units)
	}
	if units[0] != "First sentence." {
		t.Errorf("unit 0: expected %q, got %q", "First sentence.", units[0])
	}
	if units[1] != "Second sentence." {
		t.Errorf("unit 1: expected %q, got %q", "Second sentence.", units[1])
	}
}

func TestSegment_NoTerminalPunctuation(t *testing.T) {
	text := "a heading without punctuation"
	units := segmenter.Segment(text)
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0] != text {
		t.Errorf("expected %q, got %q", text, units[0])
	}
}

func TestSegment_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n  \n"} {
		units := segmenter.Segment(input)
		if len(units) != 1 {
			t.Fatalf("Segment(%q): expected 1 unit, got %d", input, len(units))
		}
		if units[0] != "" {
			t.Errorf("Segment(%q): expected empty unit, got %q", input, units[0])
		}
	}
}

func TestSegment_LinesNeverMerge(t *testing.T) {
	text := "Chapter One\nIt was a dark night. The wind howled"
	units := segmenter.Segment(text)
	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %d: %v", len(units), units)
	}
	if units[0] != "Chapter One" {
		t.Errorf("heading should be its own unit, got %q", units[0])
	}
	if units[2] != "The wind howled" {
		t.Errorf("trailing fragment should be its own unit, got %q", units[2])
	}
}

func TestSegment_ConsecutivePunctuation(t *testing.T) {
	units := segmenter.Segment("Really?! Yes... Fine.")
	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %d: %v", len(units), units)
	}
	if units[0] != "Really?!" {
		t.Errorf("expected %q, got %q", "Really?!", units[0])
	}
	if units[1] != "Yes..." {
		t.Errorf("expected %q, got %q", "Yes...", units[1])
	}
}

func TestSegment_QuestionAndExclamation(t *testing.T) {
	units := segmenter.Segment("Is it done? It is! Good.")
	want := []string{"Is it done?", "It is!", "Good."}
	if len(units) != len(want) {
		t.Fatalf("expected %d units, got %d: %v", len(want), len(units), units)
	}
	for i := range want {
		if units[i] != want[i] {
			t.Errorf("unit %d: expected %q, got %q", i, want[i], units[i])
		}
	}
}

// Concatenating the units must preserve every non-whitespace character of
// the input, in order.
func TestSegment_Lossless(t *testing.T) {
	texts := []string{
		"First sentence. Second one! A third? Trailing fragment",
		"Line one\nLine two. With more.\n\nLine three",
		"No punctuation at all",
		"Ends mid... sentence? Yes",
	}
	strip := func(s string) string {
		return strings.Join(strings.Fields(s), "")
	}
	for _, text := range texts {
		units := segmenter.Segment(text)
		if len(units) == 0 {
			t.Fatalf("Segment(%q) returned no units", text)
		}
		got := strip(strings.Join(units, " "))
		want := strip(text)
		if got != want {
			t.Errorf("Segment(%q) lost characters:\n got %q\nwant %q", text, got, want)
		}
	}
}

func TestSegment_Deterministic(t *testing.T) {
	text := "One. Two. Three."
	first := segmenter.Segment(text)
	second := segmenter.Segment(text)
	if len(first) != len(second) {
		t.Fatalf("non-deterministic length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("unit %d differs between runs: %q vs %q", i, first[i], second[i])
		}
	}
}
