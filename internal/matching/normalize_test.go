package matching

import (
	"reflect"
	"testing"
)

func TestProcessStripsPunctuationAndStopWords(t *testing.T) {
	n := NewNormalizer(nil)

	got := n.Process("Will Trump win the 2024 Election?")
	want := map[string]struct{}{
		"trump":    {},
		"win":      {},
		"2024":     {},
		"election": {},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Process mismatch got=%v want=%v", got, want)
	}
}

func TestProcessCollapsesDuplicates(t *testing.T) {
	n := NewNormalizer(nil)

	got := n.Process("rate rate RATE rates")
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct words, got %v", got)
	}
	if _, ok := got["rate"]; !ok {
		t.Fatalf("missing 'rate' in %v", got)
	}
	if _, ok := got["rates"]; !ok {
		t.Fatalf("missing 'rates' in %v", got)
	}
}

func TestProcessEmptyAndStopOnlyTitles(t *testing.T) {
	n := NewNormalizer(nil)

	for _, title := range []string{"", "   ", "the of and will be"} {
		if got := n.Process(title); len(got) != 0 {
			t.Errorf("Process(%q) = %v, want empty set", title, got)
		}
	}
}

func TestProcessCustomStopWords(t *testing.T) {
	n := NewNormalizer([]string{"foo"})

	got := n.Process("foo the bar")
	if _, ok := got["foo"]; ok {
		t.Fatalf("custom stop word not removed: %v", got)
	}
	// "the" is not in the custom set, so it survives.
	if _, ok := got["the"]; !ok {
		t.Fatalf("default stop words should not apply with custom set: %v", got)
	}
}

func TestProcessSplitsOnPunctuation(t *testing.T) {
	n := NewNormalizer(nil)

	got := n.Process("Trump-wins: 2024!")
	for _, w := range []string{"trump", "wins", "2024"} {
		if _, ok := got[w]; !ok {
			t.Errorf("missing %q in %v", w, got)
		}
	}
}
