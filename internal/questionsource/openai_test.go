package questionsource

import (
	"errors"
	"strings"
	"testing"
)

func TestParseGenerated(t *testing.T) {
	valid := `{"questions":[
		{"question":"2+2?","options":["3","4","5","6"],"correct_option":1,"explanation":"basic sum"},
		{"question":"3*3?","options":["6","7","8","9"],"correct_option":3,"explanation":""}
	]}`

	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr string
	}{
		{name: "valid", raw: valid, want: 2},
		{name: "takes prefix when extra produced", raw: valid, want: 1},
		{name: "too few questions", raw: valid, want: 3, wantErr: "2 of 3"},
		{name: "not json", raw: "questions: none", want: 1, wantErr: "parse model output"},
		{name: "empty text", raw: `{"questions":[{"question":"  ","options":["a","b"],"correct_option":0}]}`,
			want: 1, wantErr: "empty text"},
		{name: "single option", raw: `{"questions":[{"question":"q","options":["a"],"correct_option":0}]}`,
			want: 1, wantErr: "1 options"},
		{name: "correct out of range", raw: `{"questions":[{"question":"q","options":["a","b"],"correct_option":2}]}`,
			want: 1, wantErr: "out of 2 options"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseGenerated("World History", tc.raw, tc.want)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("error = %v, want contains %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("questions = %d, want %d", len(got), tc.want)
			}
			for i, q := range got {
				if q.Subject != "World History" {
					t.Errorf("question %d subject = %q", i, q.Subject)
				}
				if q.ID == "" {
					t.Errorf("question %d has empty id", i)
				}
			}
		})
	}
}

func TestParseGeneratedShortfallIsInsufficient(t *testing.T) {
	_, err := parseGenerated("Math", `{"questions":[]}`, 5)
	if !errors.Is(err, ErrInsufficientQuestions) {
		t.Fatalf("want ErrInsufficientQuestions, got %v", err)
	}
}

func TestParseGeneratedCoercesObjectOptions(t *testing.T) {
	raw := `{"questions":[{"question":"pick","options":[{"text":"yes"},"no"],"correct_option":0}]}`

	got, err := parseGenerated("Civics", raw, 1)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got[0].Options[0] != "yes" || got[0].Options[1] != "no" {
		t.Errorf("options = %v", got[0].Options)
	}
}

func TestGenerationPromptMentionsContract(t *testing.T) {
	p := generationPrompt("Biology", "hard", 7)
	for _, needle := range []string{"7", "hard", "Biology", "correct_option", "zero-based"} {
		if !strings.Contains(p, needle) {
			t.Errorf("prompt missing %q", needle)
		}
	}
}
