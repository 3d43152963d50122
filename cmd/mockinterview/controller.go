package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/pavelanni/mockinterview/internal/bank"
	"github.com/pavelanni/mockinterview/internal/llm"
	"github.com/pavelanni/mockinterview/internal/llm/prompts"
	"github.com/pavelanni/mockinterview/internal/model"
	"github.com/pavelanni/mockinterview/internal/resume"
	"github.com/pavelanni/mockinterview/internal/session"
	"github.com/pavelanni/mockinterview/internal/store"
)

func loadBank(path string) (*bank.Bank, error) {
	if path == "" {
		return bank.Default()
	}
	return bank.Load(path)
}

// newController wires a session controller from the command's settings.
func newController(ctx context.Context, v *viper.Viper, db *store.Store, observers ...session.Observer) (*session.Controller, error) {
	b, err := loadBank(v.GetString("catalog"))
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	cfg := session.Config{
		Bank:      b,
		Store:     db,
		Extractor: resume.NewMockExtractor(nil),
		Observers: observers,
		TierCounts: bank.TierCounts{
			model.DifficultyEasy:   v.GetInt("easy"),
			model.DifficultyMedium: v.GetInt("medium"),
			model.DifficultyHard:   v.GetInt("hard"),
		},
		PacingDelay:   v.GetDuration("pacing-delay"),
		InfoDelay:     v.GetDuration("info-delay"),
		ReviewTimeout: v.GetDuration("review-timeout"),
		Logger:        slog.Default().With("component", "session"),
	}

	if v.GetBool("review") {
		reviewer, err := newReviewer(ctx, v)
		if err != nil {
			return nil, err
		}
		cfg.Reviewer = reviewer
	}

	ctrl, err := session.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return ctrl, nil
}

func newReviewer(ctx context.Context, v *viper.Viper) (*llm.Client, error) {
	variant := strings.ToLower(strings.TrimSpace(v.GetString("prompt-variant")))
	if !prompts.IsValidVariant(variant) {
		slog.Warn("invalid prompt-variant, using standard", "variant", variant)
		variant = string(prompts.VariantStandard)
	}
	client, err := llm.New(v.GetString("llm-url"), v.GetString("llm-key"), v.GetString("llm-model"), prompts.Variant(variant))
	if err != nil {
		return nil, fmt.Errorf("create LLM client: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("LLM health check: %w", err)
	}
	slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))
	return client, nil
}
