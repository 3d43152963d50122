// Package llm asks an OpenAI-compatible model for advisory reviews of
// interview answers. Reviews never change the heuristic score.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pavelanni/mockinterview/internal/llm/prompts"
	"github.com/pavelanni/mockinterview/internal/model"
)

// ReviewResult is the JSON object the model is asked to return.
type ReviewResult struct {
	Comment string `json:"comment"`
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api     *openai.Client
	model   string
	variant prompts.Variant
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName string, variant prompts.Variant) (*Client, error) {
	if !prompts.IsValidVariant(string(variant)) {
		return nil, fmt.Errorf("invalid prompt variant %q", variant)
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		variant: variant,
	}, nil
}

// Review returns a short comment on the answer.
func (c *Client) Review(ctx context.Context, q model.Question, a model.AnswerRecord) (string, error) {
	prompt, err := prompts.BuildReviewPrompt(c.variant, q, a)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "question", q.ID, "raw", raw)

	var result ReviewResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return "", fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}
	return strings.TrimSpace(result.Comment), nil
}

// Ping checks that the API is reachable by listing models.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
