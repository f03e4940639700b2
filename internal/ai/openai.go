package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/domain"
)

// Config selects the OpenAI-compatible endpoint.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration // per attempt
	MaxRetries int
}

// OpenAIClient wraps the openai-go SDK with retry and logging.
type OpenAIClient struct {
	client     *openai.Client
	model      string
	logger     *zap.Logger
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
}

// NewOpenAIClient builds a client. SDK level retries are disabled so the attempt loop
// here owns backoff and logging.
func NewOpenAIClient(cfg Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("ai: api key and model are required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	return &OpenAIClient{
		client:     &client,
		model:      cfg.Model,
		logger:     logger,
		timeout:    timeout,
		maxRetries: retries,
		baseDelay:  time.Second,
	}, nil
}

// Complete sends one chat completion with retry on transient failures.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	startTime := time.Now()
	messages := buildMessages(req)
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(1<<uint(attempt-1))
			c.logger.Info("retrying model request",
				zap.String("task", req.Task),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return "", NewTransientError(fmt.Errorf("model request abandoned: %w", ctx.Err()))
			case <-time.After(delay):
			}
		}

		content, err := c.complete(ctx, req.Task, messages)
		if err == nil {
			c.logger.Info("model request completed",
				zap.String("task", req.Task),
				zap.Duration("processing_time", time.Since(startTime)),
				zap.Int("attempts", attempt+1),
			)
			return content, nil
		}

		lastErr = err
		if IsFatal(err) || ctx.Err() != nil {
			c.logger.Error("non-retryable model error",
				zap.String("task", req.Task),
				zap.Error(err),
				zap.Int("attempt", attempt+1),
			)
			break
		}
		c.logger.Warn("model request failed, will retry",
			zap.String("task", req.Task),
			zap.Error(err),
			zap.Int("attempt", attempt+1),
		)
	}

	c.logger.Error("model request failed after retries",
		zap.String("task", req.Task),
		zap.Error(lastErr),
		zap.Duration("total_time", time.Since(startTime)),
	)
	return "", fmt.Errorf("model request failed: %w", lastErr)
}

func (c *OpenAIClient) complete(ctx context.Context, task string, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestStart := time.Now()
	resp, err := c.client.Chat.Completions.New(attemptCtx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", NewTransientError(errors.New("no choices returned from model"))
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", NewTransientError(errors.New("empty content in model response"))
	}

	c.logger.Info("model token usage",
		zap.String("task", task),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("request_time", time.Since(requestStart)),
	)
	return content, nil
}

// classify splits SDK errors into transient and fatal. Rate limits, server errors and
// timeouts are transient; other 4xx responses and caller cancellation are fatal.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return NewFatalError(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTransientError(err)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests,
			apiErr.StatusCode == http.StatusRequestTimeout,
			apiErr.StatusCode >= http.StatusInternalServerError:
			return NewTransientError(err)
		default:
			return NewFatalError(err)
		}
	}
	return NewTransientError(err)
}

func buildMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.History {
		if m.Role == domain.ChatRoleModel {
			messages = append(messages, openai.AssistantMessage(m.Text))
		} else {
			messages = append(messages, openai.UserMessage(m.Text))
		}
	}
	if req.Prompt == "" && len(req.Images) == 0 {
		return messages
	}
	if len(req.Images) == 0 {
		return append(messages, openai.UserMessage(req.Prompt))
	}

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(req.Images)+1)
	if req.Prompt != "" {
		parts = append(parts, openai.TextContentPart(req.Prompt))
	}
	for _, img := range req.Images {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: img}))
	}
	return append(messages, openai.UserMessage(parts))
}
