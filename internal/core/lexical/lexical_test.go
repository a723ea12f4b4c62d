package lexical

import (
	"slices"
	"testing"
)

func TestNormalizeCollapsesWhitespaceAndCompatForms(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  hand\t\tphone \n", want: "hand phone"},
		{in: "ｈａｎｄ　ｐｈｏｎｅ", want: "hand phone"},
		{in: "", want: ""},
		{in: "  ", want: ""},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"a  b", "ﬁne　day", "é \t x", " ́", "Let's   play\npocket-ball"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTokenizeKeepsInternalApostrophesAndHyphens(t *testing.T) {
	got := Tokenize("Let's play PC-bang tonight -- rock- 'n' roll")
	want := []string{"let's", "play", "pc-bang", "tonight", "rock", "n", "roll"}
	if !slices.Equal(got, want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
}

func TestContainsPhraseRespectsWordBoundaries(t *testing.T) {
	tests := []struct {
		text   string
		phrase string
		want   bool
	}{
		{text: "I want to buy a hand phone.", phrase: "hand phone", want: true},
		{text: "I want to buy a HAND PHONE", phrase: "hand phone", want: true},
		{text: "my handphone", phrase: "hand phone", want: false},
		{text: "smartphones", phrase: "phone", want: false},
		{text: "phone_case", phrase: "phone", want: false},
		{text: "(phone)", phrase: "phone", want: true},
		{text: "anything", phrase: "   ", want: false},
	}
	for _, tc := range tests {
		if got := ContainsPhrase(tc.text, tc.phrase); got != tc.want {
			t.Fatalf("ContainsPhrase(%q, %q) = %v, want %v", tc.text, tc.phrase, got, tc.want)
		}
	}
}

func TestReplacePhraseSkipsEmbeddedMatches(t *testing.T) {
	got := ReplacePhrase("Phone, phones and my PHONE", "phone", "cell")
	if got != "cell, phones and my cell" {
		t.Fatalf("ReplacePhrase() = %q", got)
	}
}

func TestReplacePhraseInsertsLiterally(t *testing.T) {
	got := ReplacePhrase("eye shopping", "eye shopping", `window $1 shopping`)
	if got != "window $1 shopping" {
		t.Fatalf("ReplacePhrase() = %q", got)
	}
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name   string
		bad    string
		source string
		want   string
		ok     bool
	}{
		{name: "whole phrase", bad: "hand phone", source: "I want to buy a hand phone", want: "hand phone", ok: true},
		{name: "whole phrase mid sentence", bad: "pocket ball", source: "Let's play pocket ball tonight", want: "pocket ball", ok: true},
		{name: "missing", bad: "xyz nonexistent", source: "I went shopping", ok: false},
		{name: "keeps canonical case on whole match", bad: "Hand  Phone", source: "my hand phone broke", want: "Hand Phone", ok: true},
		{name: "ngram fallback", bad: "go to the eye shopping", source: "we did eye shopping", want: "eye shopping", ok: true},
		{name: "unigram fallback", bad: "fighting spirit", source: "Fighting!", want: "fighting", ok: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			span, ok := Locate(tc.bad, tc.source, 0)
			if ok != tc.ok {
				t.Fatalf("Locate() ok = %v, want %v (span %+v)", ok, tc.ok, span)
			}
			if ok && span.Text != tc.want {
				t.Fatalf("Locate() text = %q, want %q", span.Text, tc.want)
			}
		})
	}
}

func TestLocateReportsTokenRange(t *testing.T) {
	span, ok := Locate("go to the eye shopping", "we did eye shopping", 4)
	if !ok {
		t.Fatalf("expected span")
	}
	if span.Start != 3 || span.End != 4 || span.Len() != 2 {
		t.Fatalf("unexpected span %+v", span)
	}
}

func TestLocatePrefersLongestNGram(t *testing.T) {
	span, ok := Locate("a b c", "x b c y a", 2)
	if !ok || span.Text != "b c" {
		t.Fatalf("expected bigram b c, got %+v ok=%v", span, ok)
	}
}

func TestExtractReplacement(t *testing.T) {
	tests := []struct {
		name string
		bad  string
		good string
		want string
		ok   bool
	}{
		{name: "noun modifier keeps head", bad: "hand phone", good: "cell phone", want: "cell phone", ok: true},
		{name: "single new word", bad: "pocket ball", good: "pool", want: "pool", ok: true},
		{name: "drops verbs", bad: "eye shopping", good: "go window shopping", want: "window shopping", ok: true},
		{name: "left neighbour", bad: "open car", good: "car convertible", want: "car convertible", ok: true},
		{name: "caps three words", bad: "x", good: "big fluffy warm soft blanket", want: "big fluffy warm", ok: true},
		{name: "only time words", bad: "morning call", good: "tomorrow morning", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractReplacement(tc.bad, tc.good, tc.bad)
			if ok != tc.ok {
				t.Fatalf("ExtractReplacement() ok = %v, want %v (got %q)", ok, tc.ok, got)
			}
			if got != tc.want {
				t.Fatalf("ExtractReplacement() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDiffInsertionFindsReplacedTokens(t *testing.T) {
	p := newPairTokens("skin scuba", "scuba diving gear")
	frag, ok := diffInsertion(p)
	if !ok {
		t.Fatalf("expected diff fragment")
	}
	if !slices.Equal(frag, []string{"gear"}) {
		t.Fatalf("diffInsertion() = %v", frag)
	}
}

func TestGroupRuns(t *testing.T) {
	got := groupRuns([]int{0, 1, 3, 5, 6, 7})
	want := [][2]int{{0, 1}, {3, 3}, {5, 7}}
	if !slices.Equal(got, want) {
		t.Fatalf("groupRuns() = %v, want %v", got, want)
	}
}

func TestLimitWords(t *testing.T) {
	if got := LimitWords("pool or billiards please", 3); got != "pool or billiards" {
		t.Fatalf("LimitWords() = %q", got)
	}
	if got := LimitWords("cell phone", 3); got != "cell phone" {
		t.Fatalf("LimitWords() = %q", got)
	}
}
