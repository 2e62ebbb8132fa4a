package exam

import (
	"errors"
	"testing"
)

func TestScoreEmptyQuestionSet(t *testing.T) {
	if _, err := Score(nil, map[int]int{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestScoreAllUnanswered(t *testing.T) {
	res, err := Score(fixedQuestions(3), map[int]int{})
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	if res.CorrectCount != 0 {
		t.Errorf("correct = %d, want 0", res.CorrectCount)
	}
	if res.ScorePercent != 0 {
		t.Errorf("percent = %d, want 0", res.ScorePercent)
	}
	if res.Grade != "F" {
		t.Errorf("grade = %s, want F", res.Grade)
	}
	for _, qs := range res.PerQuestion {
		if qs.Selected != nil || qs.Correct {
			t.Errorf("question %d: unanswered scored as answered", qs.Index)
		}
	}
}

func TestScoreTwoSubjectBreakdown(t *testing.T) {
	questions := []Question{
		{Subject: "Math", Options: []string{"a", "b"}, CorrectOption: 0},
		{Subject: "Math", Options: []string{"a", "b"}, CorrectOption: 1},
		{Subject: "English", Options: []string{"a", "b"}, CorrectOption: 0},
		{Subject: "English", Options: []string{"a", "b"}, CorrectOption: 1},
	}
	answers := map[int]int{
		0: 0, // correct
		1: 0, // wrong
		2: 0, // correct
		3: 1, // correct
	}

	res, err := Score(questions, answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	if res.CorrectCount != 3 || res.ScorePercent != 75 {
		t.Fatalf("got %d correct / %d%%, want 3 / 75%%", res.CorrectCount, res.ScorePercent)
	}
	if res.Grade != "B" {
		t.Errorf("grade = %s, want B", res.Grade)
	}

	want := []SubjectScore{
		{Subject: "Math", Correct: 1, Total: 2, Percent: 50},
		{Subject: "English", Correct: 2, Total: 2, Percent: 100},
	}
	if len(res.PerSubject) != len(want) {
		t.Fatalf("per-subject groups = %d, want %d", len(res.PerSubject), len(want))
	}
	for i, w := range want {
		if res.PerSubject[i] != w {
			t.Errorf("subject[%d] = %+v, want %+v", i, res.PerSubject[i], w)
		}
	}
}

func TestScoreSubjectSumsMatchTotals(t *testing.T) {
	questions := []Question{
		{Subject: "Physics", Options: []string{"a", "b", "c"}, CorrectOption: 2},
		{Subject: "Biology", Options: []string{"a", "b", "c"}, CorrectOption: 0},
		{Subject: "Physics", Options: []string{"a", "b", "c"}, CorrectOption: 1},
		{Subject: "Chemistry", Options: []string{"a", "b", "c"}, CorrectOption: 0},
		{Subject: "Biology", Options: []string{"a", "b", "c"}, CorrectOption: 2},
	}
	answers := map[int]int{0: 2, 1: 1, 3: 0, 4: 2}

	res, err := Score(questions, answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	sumTotal, sumCorrect := 0, 0
	for _, s := range res.PerSubject {
		sumTotal += s.Total
		sumCorrect += s.Correct
	}
	if sumTotal != res.TotalQuestions {
		t.Errorf("subject totals sum = %d, want %d", sumTotal, res.TotalQuestions)
	}
	if sumCorrect != res.CorrectCount {
		t.Errorf("subject corrects sum = %d, want %d", sumCorrect, res.CorrectCount)
	}

	// First-seen subject order.
	order := []string{"Physics", "Biology", "Chemistry"}
	for i, s := range res.PerSubject {
		if s.Subject != order[i] {
			t.Errorf("subject order[%d] = %s, want %s", i, s.Subject, order[i])
		}
	}
}

func TestScoreOutOfRangeSelectionIsWrong(t *testing.T) {
	questions := fixedQuestions(2)
	answers := map[int]int{0: 99, 1: -3}

	res, err := Score(questions, answers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if res.CorrectCount != 0 {
		t.Errorf("out-of-range selections counted as correct: %d", res.CorrectCount)
	}
	for _, qs := range res.PerQuestion {
		if qs.Selected == nil {
			t.Errorf("question %d: selection lost", qs.Index)
		}
	}
}

func TestRoundPercentHalfUp(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 3, 0},
		{3, 3, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},  // 12.5 rounds up
		{3, 8, 38},  // 37.5 rounds up
		{1, 200, 1}, // 0.5 rounds up
		{1, 400, 0}, // 0.25 rounds down
	}
	for _, tc := range tests {
		if got := roundPercent(tc.correct, tc.total); got != tc.want {
			t.Errorf("roundPercent(%d, %d) = %d, want %d", tc.correct, tc.total, got, tc.want)
		}
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{100, "A"}, {80, "A"},
		{79, "B"}, {70, "B"},
		{69, "C"}, {60, "C"},
		{59, "D"}, {50, "D"},
		{49, "F"}, {0, "F"},
	}
	for _, tc := range tests {
		if got := GradeFor(tc.percent); got != tc.want {
			t.Errorf("GradeFor(%d) = %s, want %s", tc.percent, got, tc.want)
		}
	}
}
