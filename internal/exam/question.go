package exam

import (
	"encoding/json"
	"strings"
)

// Question is a single multiple-choice question, fixed for the session's
// lifetime. Text and options are normalized at construction so the rest of
// the core only ever handles plain strings.
type Question struct {
	ID            string   `json:"id"`
	Subject       string   `json:"subject"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Explanation   string   `json:"explanation,omitempty"`
}

// textReplacer normalizes the escape artifacts question banks and LLM output
// tend to carry: a literal backslash-n, an HTML <br>, and doubled backslashes.
var textReplacer = strings.NewReplacer(
	`\n`, "\n",
	"<br>", "\n",
	`\\`, `\`,
)

// NormalizeText rewrites embedded markup/escape sequences in question text
// to plain newlines and backslashes.
func NormalizeText(s string) string {
	return textReplacer.Replace(s)
}

// CoerceOption converts a raw JSON option value to its display string.
// Rule: string passthrough, then object {"text": ...}, then the compact
// JSON itself as a last resort. Applied once at ingestion.
func CoerceOption(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Text != "" {
		return obj.Text
	}

	return string(bytesTrim(raw))
}

// NewQuestion builds a normalized Question from wire-shaped inputs.
func NewQuestion(id, subject, text string, rawOptions []json.RawMessage, correct int, explanation string) Question {
	opts := make([]string, len(rawOptions))
	for i, raw := range rawOptions {
		opts[i] = CoerceOption(raw)
	}
	return Question{
		ID:            id,
		Subject:       subject,
		Text:          NormalizeText(text),
		Options:       opts,
		CorrectOption: correct,
		Explanation:   NormalizeText(explanation),
	}
}

// OptionLetter returns the display letter for an option index: A, B, C, ...
func OptionLetter(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}

func bytesTrim(raw json.RawMessage) []byte {
	return []byte(strings.TrimSpace(string(raw)))
}
