package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/schoolsuite/cbt-backend/internal/config"
	"github.com/schoolsuite/cbt-backend/internal/database"
	"github.com/schoolsuite/cbt-backend/internal/exam"
	"github.com/schoolsuite/cbt-backend/internal/logger"
	"github.com/schoolsuite/cbt-backend/internal/model"
	"github.com/schoolsuite/cbt-backend/internal/repository"
)

// seedQuestion is one entry of the seed file: a JSON array of questions
// with options as plain strings or {"text": ...} objects.
type seedQuestion struct {
	Subject       string          `json:"subject"`
	Difficulty    string          `json:"difficulty"`
	Text          string          `json:"text"`
	Options       json.RawMessage `json:"options"`
	CorrectOption int             `json:"correct_option"`
	Explanation   string          `json:"explanation"`
}

func main() {
	var file string
	flag.StringVar(&file, "file", "seed/questions.json", "Path to the question seed file")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	bankRepo := repository.NewBankRepository(pool)

	// ─── Read Seed File ────────────────────────────────────────────────
	data, err := os.ReadFile(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read seed file")
	}

	var seeds []seedQuestion
	if err := json.Unmarshal(data, &seeds); err != nil {
		log.Fatal().Err(err).Msg("Seed file is not a valid JSON array")
	}

	// ─── Insert ────────────────────────────────────────────────────────
	inserted := 0
	for i, s := range seeds {
		var rawOptions []json.RawMessage
		if err := json.Unmarshal(s.Options, &rawOptions); err != nil ||
			len(rawOptions) < 2 ||
			s.CorrectOption < 0 || s.CorrectOption >= len(rawOptions) {
			log.Warn().Int("index", i).Str("subject", s.Subject).Msg("Skipping malformed seed question")
			continue
		}
		empty := false
		for _, raw := range rawOptions {
			if exam.CoerceOption(raw) == "" {
				empty = true
				break
			}
		}
		if empty {
			log.Warn().Int("index", i).Msg("Skipping seed question with empty option")
			continue
		}

		row := &model.BankQuestion{
			Subject:       s.Subject,
			Difficulty:    s.Difficulty,
			Text:          s.Text,
			Options:       s.Options,
			CorrectOption: s.CorrectOption,
			Explanation:   s.Explanation,
		}
		if err := bankRepo.Create(ctx, row); err != nil {
			log.Error().Err(err).Int("index", i).Msg("Insert failed")
			continue
		}
		inserted++
	}

	fmt.Printf("Seeded %d of %d questions from %s\n", inserted, len(seeds), file)
}
