package questionsource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/schoolsuite/cbt-backend/internal/exam"
)

// OpenAISource generates practice papers through an OpenAI-compatible chat
// API, one JSON-mode completion per subject.
type OpenAISource struct {
	api   *openai.Client
	model string
	log   zerolog.Logger
}

// NewOpenAISource creates an OpenAISource. baseURL may be empty for the
// default OpenAI endpoint, or point at any compatible server.
func NewOpenAISource(baseURL, apiKey, modelName string, log zerolog.Logger) *OpenAISource {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAISource{
		api:   openai.NewClientWithConfig(cfg),
		model: modelName,
		log:   log.With().Str("component", "openai_source").Logger(),
	}
}

// Generate requests each subject's questions and assembles the paper in
// request order.
func (s *OpenAISource) Generate(ctx context.Context, req Request) (*Paper, error) {
	paper := &Paper{}

	for _, spec := range req.Subjects {
		resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: generationPrompt(spec.Name, req.Difficulty, spec.Count)},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.7,
		})
		if err != nil {
			return nil, fmt.Errorf("generate %q: %w", spec.Name, err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("generate %q: model returned no choices", spec.Name)
		}

		raw := resp.Choices[0].Message.Content
		s.log.Debug().Str("subject", spec.Name).Int("bytes", len(raw)).Msg("Generation response")

		questions, err := parseGenerated(spec.Name, raw, spec.Count)
		if err != nil {
			return nil, fmt.Errorf("generate %q: %w", spec.Name, err)
		}

		paper.Questions = append(paper.Questions, questions...)
		paper.Subjects = append(paper.Subjects, spec.Name)
	}

	return paper, nil
}

// generatedQuestion is the wire shape the model is asked to emit. Options
// stay raw so the core's coercion rule applies uniformly.
type generatedQuestion struct {
	Text          string            `json:"question"`
	Options       []json.RawMessage `json:"options"`
	CorrectOption int               `json:"correct_option"`
	Explanation   string            `json:"explanation"`
}

type generatedPaper struct {
	Questions []generatedQuestion `json:"questions"`
}

// parseGenerated validates and normalizes one subject's model output.
func parseGenerated(subject, raw string, want int) ([]exam.Question, error) {
	var payload generatedPaper
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	if len(payload.Questions) < want {
		return nil, fmt.Errorf("model produced %d of %d questions: %w",
			len(payload.Questions), want, ErrInsufficientQuestions)
	}

	questions := make([]exam.Question, 0, want)
	for i, gq := range payload.Questions[:want] {
		if strings.TrimSpace(gq.Text) == "" {
			return nil, fmt.Errorf("question %d has empty text", i)
		}
		if len(gq.Options) < 2 {
			return nil, fmt.Errorf("question %d has %d options", i, len(gq.Options))
		}
		if gq.CorrectOption < 0 || gq.CorrectOption >= len(gq.Options) {
			return nil, fmt.Errorf("question %d correct option %d out of %d options",
				i, gq.CorrectOption, len(gq.Options))
		}
		id := fmt.Sprintf("%s-%d", strings.ToLower(strings.ReplaceAll(subject, " ", "-")), i)
		questions = append(questions,
			exam.NewQuestion(id, subject, gq.Text, gq.Options, gq.CorrectOption, gq.Explanation))
	}
	return questions, nil
}

func generationPrompt(subject, difficulty string, count int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an exam item writer for a secondary school. ")
	fmt.Fprintf(&sb, "Write exactly %d %s-level multiple-choice questions on the subject %q.\n\n", count, difficulty, subject)
	sb.WriteString("Respond with a single JSON object of the form:\n")
	sb.WriteString(`{"questions":[{"question":"...","options":["...","...","...","..."],` +
		`"correct_option":0,"explanation":"..."}]}` + "\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- exactly four options per question\n")
	sb.WriteString("- correct_option is the zero-based index into options\n")
	sb.WriteString("- explanation is one or two sentences justifying the answer\n")
	sb.WriteString("- no markdown, no text outside the JSON object\n")
	return sb.String()
}
