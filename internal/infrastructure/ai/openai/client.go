// Package openai provides the chat completion adapter
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/transport"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

const serviceName = "completion API"

// ErrEmptyCompletion is returned when the model answers with no content
var ErrEmptyCompletion = stderrors.New("completion returned no content")

// Client implements outbound.CompletionClient against an OpenAI compatible API
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	retry   transport.RetryPolicy
	logger  *zap.Logger
}

// NewClient creates a new completion client. Without an API key every
// call fails with a not-configured error.
func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	retry := transport.DefaultRetryPolicy()
	if cfg.MaxRetries > 0 {
		retry.MaxAttempts = cfg.MaxRetries
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  transport.NewHTTPClient("openai", timeout),
		retry:   retry,
		logger:  logger.Named("openai"),
	}
	if c.apiKey == "" {
		c.logger.Warn("OpenAI API key not set, AI features are disabled")
	} else {
		c.logger.Info("OpenAI client initialized", zap.String("model", c.model))
	}
	return c
}

// WithRetryPolicy replaces the retry policy
func (c *Client) WithRetryPolicy(p transport.RetryPolicy) *Client {
	c.retry = p
	return c
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete sends one chat completion
func (c *Client) Complete(ctx context.Context, req outbound.CompletionRequest) (*outbound.CompletionResponse, error) {
	if c.apiKey == "" {
		return nil, errors.NewNotConfiguredError(serviceName)
	}

	body := chatCompletionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()
	resp, err := transport.Do(ctx, c.client, serviceName, c.retry,
		func(ctx context.Context) (*http.Request, error) {
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
			if err != nil {
				return nil, err
			}
			httpReq.Header.Set("Content-Type", "application/json")
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
			return httpReq, nil
		},
		func(err error, wait time.Duration) {
			c.logger.Warn("Retrying completion call", zap.Error(err), zap.Duration("wait", wait))
		},
	)
	if err != nil {
		return nil, err
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(resp.Body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyCompletion
	}

	c.logger.Info("Completion call successful",
		zap.String("model", chatResp.Model),
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens),
		zap.Duration("latency", time.Since(start)),
	)

	return &outbound.CompletionResponse{
		Content:          chatResp.Choices[0].Message.Content,
		Model:            chatResp.Model,
		FinishReason:     chatResp.Choices[0].FinishReason,
		PromptTokens:     chatResp.Usage.PromptTokens,
		CompletionTokens: chatResp.Usage.CompletionTokens,
	}, nil
}
