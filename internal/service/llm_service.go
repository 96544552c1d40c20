package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"superclaims/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// Generator produces a completion for a single user prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var ErrEmptyCompletion = errors.New("no response from LLM")

type LLMService struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	config *config.GigaChatConfig
	logger *zap.Logger
}

// buildSystemInstruction sets the assistant up as a claims document reader that only answers in JSON.
func buildSystemInstruction() string {
	return `You are a medical insurance claims document reader. You receive text extracted from hospital
documents (bills, discharge summaries, insurance ID cards) and answer strictly in the JSON format the
user asks for.

Rules:
- Answer with JSON only. No markdown, no commentary before or after the JSON.
- Copy values exactly as written in the document. Do not reformat dates, names or amounts.
- When a value is not present in the document use null. Never invent values.`
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}

	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = buildSystemInstruction()
	// Extraction must be reproducible.
	model.Temperature = 0.1

	logger.Info("GigaChat client initialized", zap.String("model", cfg.Model))

	return &LLMService{
		client: client,
		model:  model,
		config: cfg,
		logger: logger,
	}, nil
}

// Generate sends prompt as a single user message and returns the first choice.
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	s.logger.Debug("LLM completion received", zap.Int("length", len(content)))
	return content, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}

// extractJSONObject returns the outermost {...} in an LLM completion, with
// markdown code fences removed.
func extractJSONObject(content string) (string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("invalid response format: %s", truncate(content, 200))
	}
	return content[start : end+1], nil
}

func truncate(s string, n int) string {
	clipped := clipText(s, n)
	if clipped == s {
		return s
	}
	return clipped + "..."
}
