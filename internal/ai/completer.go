// Package ai wraps the chat-completion backend used for movie
// recommendations.
package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/m3rciful/moviebot/core/config"
	"github.com/m3rciful/moviebot/core/logger"
)

const logComponent = "ai"

// ErrEmptyCompletion is returned when the model answers with no choices.
var ErrEmptyCompletion = errors.New("ai: empty completion")

const systemPrompt = "Ты — кинокритик и эксперт по подбору фильмов. " +
	"Отвечай на русском языке, кратко и по делу."

// Completer produces one completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAI is a Completer backed by an OpenAI-compatible chat endpoint.
type OpenAI struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI builds a client from config. An empty base URL keeps the
// library default endpoint.
func NewOpenAI(cfg config.AIConfig) *OpenAI {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAI{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: timeout,
	}
}

// Complete sends the prompt as a single user message and returns the
// model's text answer.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		logger.Warn(ctx, logComponent, "completion.failed",
			slog.String("status", "error"),
			slog.String("model", o.model),
			slog.Duration("took", logger.Took(start)),
			slog.String("err", logger.SanitizeLimit(err.Error(), 200)),
		)
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	logger.Debug(ctx, logComponent, "completion.done",
		slog.String("status", "ok"),
		slog.String("model", o.model),
		slog.Duration("took", logger.Took(start)),
	)
	return resp.Choices[0].Message.Content, nil
}
