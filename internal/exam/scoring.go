package exam

// SubjectScore is the per-subject slice of a scored attempt.
type SubjectScore struct {
	Subject string `json:"subject"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
}

// QuestionScore records the outcome of a single question.
type QuestionScore struct {
	Index    int  `json:"index"`
	Selected *int `json:"selected,omitempty"`
	Correct  bool `json:"correct"`
}

// Result is the scored form of a submitted session. Derived once, immutable
// thereafter.
type Result struct {
	TotalQuestions int             `json:"total_questions"`
	CorrectCount   int             `json:"correct_count"`
	ScorePercent   int             `json:"score_percent"`
	Grade          string          `json:"grade"`
	PerSubject     []SubjectScore  `json:"per_subject"`
	PerQuestion    []QuestionScore `json:"per_question"`
}

// Score grades a final (questions, answers) pair. A question is correct only
// when an answer is present and equals the correct option index; an absent
// answer is never correct. Subjects keep first-seen order.
func Score(questions []Question, answers map[int]int) (*Result, error) {
	if len(questions) == 0 {
		return nil, ErrInvalidInput
	}

	res := &Result{
		TotalQuestions: len(questions),
		PerQuestion:    make([]QuestionScore, 0, len(questions)),
	}

	subjectPos := make(map[string]int)

	for i, q := range questions {
		pos, seen := subjectPos[q.Subject]
		if !seen {
			pos = len(res.PerSubject)
			subjectPos[q.Subject] = pos
			res.PerSubject = append(res.PerSubject, SubjectScore{Subject: q.Subject})
		}
		res.PerSubject[pos].Total++

		qs := QuestionScore{Index: i}
		if sel, ok := answers[i]; ok {
			qs.Selected = &sel
			if sel == q.CorrectOption {
				qs.Correct = true
				res.CorrectCount++
				res.PerSubject[pos].Correct++
			}
		}
		res.PerQuestion = append(res.PerQuestion, qs)
	}

	res.ScorePercent = roundPercent(res.CorrectCount, res.TotalQuestions)
	res.Grade = GradeFor(res.ScorePercent)
	for i := range res.PerSubject {
		s := &res.PerSubject[i]
		s.Percent = roundPercent(s.Correct, s.Total)
	}

	return res, nil
}

// roundPercent computes round(100*correct/total) with half rounding up,
// in integer arithmetic. total must be positive.
func roundPercent(correct, total int) int {
	return (200*correct + total) / (2 * total)
}

// GradeFor maps a score percentage to its letter grade. The thresholds are
// fixed product behavior and must not change.
func GradeFor(percent int) string {
	switch {
	case percent >= 80:
		return "A"
	case percent >= 70:
		return "B"
	case percent >= 60:
		return "C"
	case percent >= 50:
		return "D"
	default:
		return "F"
	}
}
