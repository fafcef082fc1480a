package symspell

import "testing"

func TestContainsExactMatch(t *testing.T) {
	idx := Build([]string{"ABCDEFGHIJABCDE"})
	if !idx.Contains("ABCDEFGHIJABCDE", 3) {
		t.Fatalf("expected exact match to be found")
	}
}

func TestContainsWithinDistance(t *testing.T) {
	idx := Build([]string{"ABCDEFGHIJABCDE"})
	if !idx.Contains("ABCJEFGHIXABCJE", 3) {
		t.Fatalf("expected distance-3 neighbor to be found")
	}
}

func TestContainsRejectsFarWord(t *testing.T) {
	idx := Build([]string{"ABCDEFGHIJABCDE"})
	if idx.Contains("ZZZZZZZZZZZZZZZ", 3) {
		t.Fatalf("expected completely different word to be rejected")
	}
}

func TestGenerateDeletesExcludesOriginal(t *testing.T) {
	dels := generateDeletes("ABC", 1)
	for _, d := range dels {
		if d == "ABC" {
			t.Fatalf("generateDeletes must not include the original string")
		}
	}
	want := map[string]bool{"BC": true, "AC": true, "AB": true}
	if len(dels) != len(want) {
		t.Fatalf("got %d deletes, want %d: %v", len(dels), len(want), dels)
	}
	for _, d := range dels {
		if !want[d] {
			t.Fatalf("unexpected delete variant %q", d)
		}
	}
}

func TestLevenshteinKnownDistances(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"abc", "abc", 0},
		{"", "abc", 3},
		{"abc", "", 3},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Fatalf("levenshtein(%q,%q)=%d want %d", c.a, c.b, got, c.want)
		}
	}
}
