package exam

import (
	"encoding/json"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "What is 2+2?", want: "What is 2+2?"},
		{name: "literal backslash-n", in: `line one\nline two`, want: "line one\nline two"},
		{name: "br tag", in: "line one<br>line two", want: "line one\nline two"},
		{name: "doubled backslash", in: `C:\\Users\\exam`, want: `C:\Users\exam`},
		{name: "mixed", in: `a\nb<br>c\\d`, want: "a\nb\nc\\d"},
		{name: "empty", in: "", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeText(tc.in); got != tc.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCoerceOption(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain string", raw: `"Paris"`, want: "Paris"},
		{name: "object with text", raw: `{"text":"Paris"}`, want: "Paris"},
		{name: "object with extra keys", raw: `{"text":"Paris","weight":2}`, want: "Paris"},
		{name: "number falls back to raw", raw: `42`, want: "42"},
		{name: "object without text falls back", raw: `{"label":"Paris"}`, want: `{"label":"Paris"}`},
		{name: "boolean falls back", raw: `true`, want: "true"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CoerceOption(json.RawMessage(tc.raw)); got != tc.want {
				t.Errorf("CoerceOption(%s) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNewQuestionNormalizesAtIngestion(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`"止まる"`),
		json.RawMessage(`{"text":"go"}`),
		json.RawMessage(`3`),
	}

	q := NewQuestion("q1", "Grammar", `first\nsecond`, raw, 1, "")

	if q.Text != "first\nsecond" {
		t.Errorf("text = %q", q.Text)
	}
	want := []string{"止まる", "go", "3"}
	if len(q.Options) != len(want) {
		t.Fatalf("options = %v", q.Options)
	}
	for i, w := range want {
		if q.Options[i] != w {
			t.Errorf("options[%d] = %q, want %q", i, q.Options[i], w)
		}
	}
}

func TestOptionLetter(t *testing.T) {
	tests := []struct {
		idx  int
		want string
	}{
		{0, "A"}, {1, "B"}, {3, "D"}, {25, "Z"}, {-1, "?"}, {26, "?"},
	}
	for _, tc := range tests {
		if got := OptionLetter(tc.idx); got != tc.want {
			t.Errorf("OptionLetter(%d) = %s, want %s", tc.idx, got, tc.want)
		}
	}
}
