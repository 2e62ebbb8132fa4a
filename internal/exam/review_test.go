package exam

import "testing"

func TestBuildReviewSynthesizesExplanation(t *testing.T) {
	questions := []Question{
		{Subject: "Test", Text: "pick one", Options: []string{"A", "B", "C"}, CorrectOption: 1},
	}

	res, err := Score(questions, map[int]int{})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	review := BuildReview(questions, res)

	if len(review) != 1 {
		t.Fatalf("entries = %d, want 1", len(review))
	}
	if got, want := review[0].Explanation, "The correct answer is B: B"; got != want {
		t.Errorf("explanation = %q, want %q", got, want)
	}
}

func TestBuildReviewKeepsProvidedExplanation(t *testing.T) {
	questions := []Question{
		{Subject: "Test", Text: "q", Options: []string{"x", "y"}, CorrectOption: 0,
			Explanation: "because x"},
	}

	res, _ := Score(questions, map[int]int{0: 0})
	review := BuildReview(questions, res)

	e := review[0]
	if e.Explanation != "because x" {
		t.Errorf("explanation = %q", e.Explanation)
	}
	if !e.IsCorrect {
		t.Error("correct answer not marked correct")
	}
	if e.SelectedText != "x" || e.CorrectText != "x" {
		t.Errorf("selected/correct text = %q/%q", e.SelectedText, e.CorrectText)
	}
}

func TestBuildReviewUnansweredAndOutOfRange(t *testing.T) {
	questions := []Question{
		{Subject: "Test", Text: "q0", Options: []string{"x", "y"}, CorrectOption: 0},
		{Subject: "Test", Text: "q1", Options: []string{"x", "y"}, CorrectOption: 1},
	}

	res, _ := Score(questions, map[int]int{1: 9})
	review := BuildReview(questions, res)

	if review[0].Selected != nil || review[0].SelectedText != "" {
		t.Errorf("unanswered entry has selection: %+v", review[0])
	}
	if review[1].Selected == nil {
		t.Fatal("out-of-range selection dropped from review")
	}
	if review[1].SelectedText != "" {
		t.Errorf("out-of-range selection has text %q", review[1].SelectedText)
	}
	if review[1].IsCorrect {
		t.Error("out-of-range selection marked correct")
	}
}
