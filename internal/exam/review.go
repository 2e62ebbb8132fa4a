package exam

import "fmt"

// ReviewEntry is one question in the post-submission review screen.
type ReviewEntry struct {
	Index        int      `json:"index"`
	Subject      string   `json:"subject"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	Selected     *int     `json:"selected,omitempty"`
	SelectedText string   `json:"selected_text,omitempty"`
	CorrectText  string   `json:"correct_text"`
	IsCorrect    bool     `json:"is_correct"`
	Explanation  string   `json:"explanation"`
}

// BuildReview shapes a scored result into its review form. Questions without
// an explanation get a synthesized one naming the correct option's letter and
// text ("The correct answer is B: ..."), matching long-standing product
// behavior.
func BuildReview(questions []Question, result *Result) []ReviewEntry {
	entries := make([]ReviewEntry, 0, len(questions))

	for i, q := range questions {
		qs := result.PerQuestion[i]

		entry := ReviewEntry{
			Index:       i,
			Subject:     q.Subject,
			Question:    q.Text,
			Options:     q.Options,
			Selected:    qs.Selected,
			CorrectText: q.Options[q.CorrectOption],
			IsCorrect:   qs.Correct,
			Explanation: q.Explanation,
		}

		if qs.Selected != nil {
			if sel := *qs.Selected; sel >= 0 && sel < len(q.Options) {
				entry.SelectedText = q.Options[sel]
			}
		}

		if entry.Explanation == "" {
			entry.Explanation = fmt.Sprintf("The correct answer is %s: %s",
				OptionLetter(q.CorrectOption), q.Options[q.CorrectOption])
		}

		entries = append(entries, entry)
	}

	return entries
}
